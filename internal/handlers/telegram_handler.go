package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
	"orbo/internal/pagination"
	"orbo/internal/services"
)

// TelegramHandler serves read access to the admin rights cache and chat migrations.
type TelegramHandler struct {
	adminCache services.AdminCacheServicer
	migrations services.ChatMigrationServicer
}

// NewTelegramHandler creates a new TelegramHandler.
func NewTelegramHandler(adminCache services.AdminCacheServicer, migrations services.ChatMigrationServicer) *TelegramHandler {
	return &TelegramHandler{adminCache: adminCache, migrations: migrations}
}

// ResolveChatResponse maps a possibly stale chat id to its current one.
type ResolveChatResponse struct {
	ChatID         int64 `json:"chat_id"`
	ResolvedChatID int64 `json:"resolved_chat_id"`
	Migrated       bool  `json:"migrated"`
}

// CheckAdmin reports whether a Telegram user administers a chat
// @Summary     Check cached admin rights
// @Description Answers from the admin rights cache; expired rows are reported as non-admin
// @Tags        telegram
// @Produce     json
// @Param       chat_id    path int true "Telegram chat ID"
// @Param       tg_user_id path int true "Telegram user ID"
// @Success     200 {object} services.AdminStatus
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /v1/telegram/chats/{chat_id}/admins/{tg_user_id} [get]
// @Security    BearerAuth
func (h *TelegramHandler) CheckAdmin(c *gin.Context) {
	chatID, err := parseTelegramID(c, "chat_id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	tgUserID, err := parseTelegramID(c, "tg_user_id")
	if err != nil || tgUserID < 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid tg_user_id"))
		return
	}

	status, err := h.adminCache.CheckAdmin(c.Request.Context(), chatID, tgUserID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ResolveChat follows recorded migrations to the chat's current id
// @Summary     Resolve chat id
// @Tags        telegram
// @Produce     json
// @Param       chat_id path int true "Telegram chat ID"
// @Success     200 {object} ResolveChatResponse
// @Failure     400 {object} ErrorResponse "Invalid id"
// @Router      /v1/telegram/chats/{chat_id}/resolve [get]
// @Security    BearerAuth
func (h *TelegramHandler) ResolveChat(c *gin.Context) {
	chatID, err := parseTelegramID(c, "chat_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	resolved, err := h.migrations.ResolveChatID(c.Request.Context(), chatID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveChatResponse{
		ChatID:         chatID,
		ResolvedChatID: resolved,
		Migrated:       resolved != chatID,
	})
}

// ListMigrations lists recorded chat migrations
// @Summary     List chat migrations
// @Tags        telegram
// @Produce     json
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size (max 100)"
// @Success     200 {object} object "Paginated migration log"
// @Failure     401 {object} ErrorResponse "Invalid cron secret"
// @Router      /v1/telegram/migrations [get]
// @Security    CronSecret
func (h *TelegramHandler) ListMigrations(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.migrations.ListMigrations(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

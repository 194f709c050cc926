package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
	"orbo/internal/services"
	"orbo/internal/validator"
)

// ChatIDList accepts chat ids written either as JSON numbers or as strings.
type ChatIDList []int64

// UnmarshalJSON implements json.Unmarshaler.
func (l *ChatIDList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("chatIds must be an array: %w", err)
	}

	out := make([]int64, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			s = string(item)
		}
		id, ok := validator.ParseTelegramID(s)
		if !ok {
			return fmt.Errorf("invalid chat id %s", item)
		}
		out = append(out, id)
	}
	*l = out
	return nil
}

// BackfillRequest is the payload of the orphan backfill endpoint.
type BackfillRequest struct {
	OrgID   string     `json:"orgId"`
	ChatIDs ChatIDList `json:"chatIds"`
	Force   bool       `json:"force"`
}

// BackfillResponse reports how many participants were created.
type BackfillResponse struct {
	OK                bool    `json:"ok"`
	OrgID             string  `json:"orgId"`
	ChatIDs           []int64 `json:"chatIds"`
	Inserted          int     `json:"inserted"`
	TotalParticipants int64   `json:"totalParticipants"`
}

// BackfillHandler serves the participant backfill endpoint.
type BackfillHandler struct {
	backfill      services.BackfillServicer
	organizations services.OrganizationServicer
}

// NewBackfillHandler creates a new BackfillHandler.
func NewBackfillHandler(backfill services.BackfillServicer, organizations services.OrganizationServicer) *BackfillHandler {
	return &BackfillHandler{backfill: backfill, organizations: organizations}
}

// BackfillOrphans creates participants for users active in the organization's chats
// @Summary     Backfill orphan participants
// @Description Creates a participant for every Telegram user seen in the given chats (or all bound chats) who has none in the organization
// @Tags        participants
// @Accept      json
// @Produce     json
// @Param       request body BackfillRequest true "Organization and optional chat ids"
// @Success     200 {object} BackfillResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member of the organization"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /participants/backfill-orphans [post]
// @Security    BearerAuth
func (h *BackfillHandler) BackfillOrphans(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.OrgID == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing orgId"))
		return
	}

	if _, err := h.organizations.RequireMembership(c.Request.Context(), req.OrgID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.backfill.Backfill(c.Request.Context(), services.BackfillRequest{
		OrgID:     req.OrgID,
		ChatIDs:   req.ChatIDs,
		Force:     req.Force,
		ActorID:   userID,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BackfillResponse{
		OK:                true,
		OrgID:             result.OrgID,
		ChatIDs:           result.ChatIDs,
		Inserted:          result.Inserted,
		TotalParticipants: result.TotalParticipants,
	})
}

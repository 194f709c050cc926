package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orbo/internal/services"
)

// CronHandler serves endpoints triggered by the scheduler.
type CronHandler struct {
	adminSync services.AdminSyncServicer
}

// NewCronHandler creates a new CronHandler.
func NewCronHandler(adminSync services.AdminSyncServicer) *CronHandler {
	return &CronHandler{adminSync: adminSync}
}

// SyncAdminRightsResponse is the result of a full admin-rights sweep.
type SyncAdminRightsResponse struct {
	Success                bool                     `json:"success"`
	DurationMS             int64                    `json:"duration_ms"`
	OrganizationsProcessed int                      `json:"organizations_processed"`
	Results                []services.OrgSyncResult `json:"results"`
}

// SyncAdminRights refreshes the admin rights cache for every organization
// @Summary     Sync Telegram admin rights
// @Description Re-reads the administrator list of every bound chat, migrating upgraded chats and deactivating chats the bot has left
// @Tags        cron
// @Produce     json
// @Success     200 {object} SyncAdminRightsResponse
// @Failure     401 {object} ErrorResponse "Invalid cron secret"
// @Failure     500 {object} ErrorResponse "Organizations could not be loaded"
// @Failure     503 {object} ErrorResponse "Not configured"
// @Router      /cron/sync-admin-rights [get]
// @Security    CronSecret
func (h *CronHandler) SyncAdminRights(c *gin.Context) {
	run, err := h.adminSync.SyncAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SyncAdminRightsResponse{
		Success:                true,
		DurationMS:             run.Duration.Milliseconds(),
		OrganizationsProcessed: len(run.Results),
		Results:                run.Results,
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
	"orbo/internal/pagination"
	"orbo/internal/services"
)

// ParticipantHandler handles participant CRM requests.
type ParticipantHandler struct {
	participants  services.ParticipantServicer
	organizations services.OrganizationServicer
}

// NewParticipantHandler creates a new ParticipantHandler.
func NewParticipantHandler(participants services.ParticipantServicer, organizations services.OrganizationServicer) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, organizations: organizations}
}

// MergeParticipantRequest names the participant that survives the merge.
type MergeParticipantRequest struct {
	TargetID string `json:"target_id" binding:"required,uuid"`
}

// authorize resolves the caller and checks their membership in :org_id.
func (h *ParticipantHandler) authorize(c *gin.Context) (orgID, userID string, ok bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return "", "", false
	}
	orgID = c.Param("org_id")
	if _, err := h.organizations.RequireMembership(c.Request.Context(), orgID, userID); err != nil {
		respondWithError(c, err)
		return "", "", false
	}
	return orgID, userID, true
}

// ListParticipants lists the organization's participants
// @Summary     List participants
// @Description Paginated list of participants that have not been merged into another record
// @Tags        participants
// @Produce     json
// @Param       org_id    path  string true  "Organization ID"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size (max 100)"
// @Success     200 {object} object "Paginated participants"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member of the organization"
// @Router      /v1/orgs/{org_id}/participants [get]
// @Security    BearerAuth
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	orgID, _, ok := h.authorize(c)
	if !ok {
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.participants.ListParticipants(c.Request.Context(), orgID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MergeParticipant folds a duplicate participant into another
// @Summary     Merge participants
// @Description Marks the path participant as merged into target_id and moves its chat links
// @Tags        participants
// @Accept      json
// @Produce     json
// @Param       org_id         path string                  true "Organization ID"
// @Param       participant_id path string                  true "Participant to merge away"
// @Param       request        body MergeParticipantRequest true "Surviving participant"
// @Success     200 {object} object "Surviving participant"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Participant not found"
// @Failure     409 {object} ErrorResponse "Already merged"
// @Router      /v1/orgs/{org_id}/participants/{participant_id}/merge [post]
// @Security    BearerAuth
func (h *ParticipantHandler) MergeParticipant(c *gin.Context) {
	orgID, userID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req MergeParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	target, err := h.participants.MergeParticipants(c.Request.Context(), orgID, c.Param("participant_id"), req.TargetID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participant": target})
}

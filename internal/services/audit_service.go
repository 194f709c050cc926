package services

import (
	"encoding/json"

	"orbo/internal/logger"
	"orbo/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(actorID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	var changesJSON datatypes.JSON
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = datatypes.JSON("{}")
		} else {
			changesJSON = datatypes.JSON(data)
		}
	}

	entry := &models.AuditLog{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"actor_id", actorID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

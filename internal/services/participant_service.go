package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "orbo/internal/errors"
	"orbo/internal/logger"
	"orbo/internal/models"
	"orbo/internal/pagination"
)

// participantService handles participant CRM operations.
type participantService struct {
	db    *gorm.DB
	audit AuditServicer
}

// NewParticipantService creates a new ParticipantServicer.
func NewParticipantService(db *gorm.DB, audit AuditServicer) ParticipantServicer {
	return &participantService{db: db, audit: audit}
}

// ListParticipants returns the organization's non-merged participants,
// most recently active first.
func (s *participantService) ListParticipants(ctx context.Context, orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Participant], error) {
	page.Defaults()
	base := s.db.WithContext(ctx).Model(&models.Participant{}).
		Scopes(models.NotMerged).
		Where("org_id = ?", orgID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var participants []models.Participant
	if err := base.Scopes(pagination.Paginate(page)).
		Order("last_activity_at DESC").
		Order("created_at DESC").
		Find(&participants).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(participants, page.Page, page.PageSize, total)
	return &resp, nil
}

// MergeParticipants folds source into target. The source row is kept with
// merged_into set; its chat links move to the target, and any identity
// fields the target lacks are taken from the source.
func (s *participantService) MergeParticipants(ctx context.Context, orgID, sourceID, targetID, actorID string) (*models.Participant, error) {
	if sourceID == targetID {
		return nil, apperrors.ErrSelfMerge
	}

	var target models.Participant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		source, err := loadMergeable(tx, orgID, sourceID)
		if err != nil {
			return err
		}
		t, err := loadMergeable(tx, orgID, targetID)
		if err != nil {
			return err
		}
		target = *t

		if err := tx.Model(&models.Participant{}).
			Where("id = ?", source.ID).
			Update("merged_into", models.MergedInto(target.ID)).Error; err != nil {
			return err
		}

		if err := tx.Where("participant_id = ? AND tg_group_id IN (?)", source.ID,
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.ParticipantGroup{}).Select("tg_group_id").Where("participant_id = ?", target.ID),
		).Delete(&models.ParticipantGroup{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ParticipantGroup{}).
			Where("participant_id = ?", source.ID).
			Update("participant_id", target.ID).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if target.IdentityID == nil && source.IdentityID != nil {
			updates["identity_id"] = *source.IdentityID
			target.IdentityID = source.IdentityID
		}
		if target.TgUserID == nil && source.TgUserID != nil {
			updates["tg_user_id"] = *source.TgUserID
			target.TgUserID = source.TgUserID
		}
		if source.LastActivityAt != nil && (target.LastActivityAt == nil || source.LastActivityAt.After(*target.LastActivityAt)) {
			updates["last_activity_at"] = *source.LastActivityAt
			target.LastActivityAt = source.LastActivityAt
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Participant{}).Where("id = ?", target.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Infow("participants merged", "org_id", orgID, "source_id", sourceID, "target_id", targetID)
	if s.audit != nil {
		s.audit.Log(actorID, "MERGE", "participant", targetID, "", map[string]interface{}{
			"source_id": sourceID,
			"target_id": targetID,
		})
	}
	return &target, nil
}

func loadMergeable(tx *gorm.DB, orgID, id string) (*models.Participant, error) {
	var p models.Participant
	if err := tx.Where("id = ? AND org_id = ?", id, orgID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrParticipantNotFound
		}
		return nil, err
	}
	if p.Merge.IsMerged() {
		return nil, apperrors.ErrParticipantMerged
	}
	return &p, nil
}

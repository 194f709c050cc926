package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "orbo/internal/errors"
	"orbo/internal/logger"
	"orbo/internal/models"
)

// membershipSyncService derives organization memberships from the admin
// rights cache of the organization's chats.
type membershipSyncService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMembershipSyncService creates a new MembershipSyncServicer.
func NewMembershipSyncService(db *gorm.DB) MembershipSyncServicer {
	return &membershipSyncService{db: db, now: time.Now}
}

// SyncTelegramAdmins grants admin membership to every platform user whose
// linked Telegram account administers one of the org's chats, and revokes
// telegram_admin memberships that no longer have a backing admin row.
// Manually granted roles are never touched.
func (s *membershipSyncService) SyncTelegramAdmins(ctx context.Context, orgID string) (*MembershipSyncResult, error) {
	result := &MembershipSyncResult{}
	now := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var adminUserIDs []string
		err := tx.Model(&models.UserTelegramAccount{}).
			Distinct("user_telegram_accounts.user_id").
			Joins("JOIN telegram_group_admins ON telegram_group_admins.tg_user_id = user_telegram_accounts.tg_user_id").
			Joins("JOIN org_telegram_groups ON org_telegram_groups.tg_chat_id = telegram_group_admins.tg_chat_id").
			Where("org_telegram_groups.org_id = ?", orgID).
			Where("telegram_group_admins.is_admin = ? AND telegram_group_admins.expires_at > ?", true, now).
			Pluck("user_telegram_accounts.user_id", &adminUserIDs).Error
		if err != nil {
			return err
		}

		admins := make(map[string]struct{}, len(adminUserIDs))
		for _, userID := range adminUserIDs {
			admins[userID] = struct{}{}

			var membership models.Membership
			err := tx.Where("org_id = ? AND user_id = ?", orgID, userID).First(&membership).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&models.Membership{
					OrgID:      orgID,
					UserID:     userID,
					Role:       models.MembershipRoleAdmin,
					RoleSource: models.RoleSourceTelegramAdmin,
				}).Error; err != nil {
					return err
				}
				result.Added++
			case err != nil:
				return err
			case membership.Role == models.MembershipRoleMember:
				if err := tx.Model(&membership).Updates(map[string]interface{}{
					"role":        models.MembershipRoleAdmin,
					"role_source": models.RoleSourceTelegramAdmin,
				}).Error; err != nil {
					return err
				}
				result.Added++
			}
		}

		var derived []models.Membership
		if err := tx.Where("org_id = ? AND role = ? AND role_source = ?",
			orgID, models.MembershipRoleAdmin, models.RoleSourceTelegramAdmin).
			Find(&derived).Error; err != nil {
			return err
		}
		for _, m := range derived {
			if _, ok := admins[m.UserID]; ok {
				continue
			}
			if err := tx.Delete(&models.Membership{}, "id = ?", m.ID).Error; err != nil {
				return err
			}
			result.Removed++
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if result.Added > 0 || result.Removed > 0 {
		logger.Get().Infow("telegram admin memberships synced",
			"org_id", orgID, "added", result.Added, "removed", result.Removed)
	}
	return result, nil
}

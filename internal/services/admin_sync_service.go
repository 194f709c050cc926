package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orbo/internal/config"
	apperrors "orbo/internal/errors"
	"orbo/internal/logger"
	"orbo/internal/models"
	"orbo/internal/telegram"
)

// deactivatedAdminTTL is how long a deactivated admin row stays "fresh".
const deactivatedAdminTTL = time.Second

// adminSyncService reconciles the admin rights cache with Telegram.
type adminSyncService struct {
	db          *gorm.DB
	telegram    TelegramClient
	migrations  ChatMigrationServicer
	memberships MembershipSyncServicer
	botID       int64
	adminTTL    time.Duration
	now         func() time.Time
}

// NewAdminSyncService creates a new AdminSyncServicer. client may be nil when
// no bot token is configured, in which case every sync fails with
// ErrTelegramDisabled.
func NewAdminSyncService(db *gorm.DB, client TelegramClient, migrations ChatMigrationServicer, memberships MembershipSyncServicer, cfg *config.Config) AdminSyncServicer {
	ttl := cfg.AdminCacheTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &adminSyncService{
		db:          db,
		telegram:    client,
		migrations:  migrations,
		memberships: memberships,
		botID:       cfg.TelegramBotID,
		adminTTL:    ttl,
		now:         time.Now,
	}
}

// SyncAll reconciles every organization that has at least one bound chat.
// Organizations and chats are processed sequentially. Only a failure to list
// organizations is returned; everything else is recorded per organization.
func (s *adminSyncService) SyncAll(ctx context.Context) (*SyncRunResult, error) {
	start := time.Now()
	if s.telegram == nil {
		return nil, apperrors.ErrTelegramDisabled
	}

	var orgs []models.Organization
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.OrgTelegramGroup{}).Select("org_id")).
		Order("created_at ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrOrganizationsUnavailable, err)
	}

	log := logger.Get()
	log.Infow("starting admin rights sync", "organizations", len(orgs))

	result := &SyncRunResult{Results: make([]OrgSyncResult, 0, len(orgs))}
	for i := range orgs {
		if ctx.Err() != nil {
			log.Warnw("admin rights sync interrupted", "error", ctx.Err(), "processed", len(result.Results))
			break
		}
		orgResult, err := s.reconcile(ctx, &orgs[i])
		if err != nil {
			log.Errorw("failed to reconcile organization", "org_id", orgs[i].ID, "error", err)
			orgResult.Errors = append(orgResult.Errors, ChatSyncError{Kind: telegram.KindOther, Message: err.Error()})
		}
		result.Results = append(result.Results, *orgResult)
	}

	result.Duration = time.Since(start)
	log.Infow("admin rights sync completed",
		"organizations", len(result.Results),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// ReconcileOrganization refreshes the admin cache for every active chat bound
// to one organization.
func (s *adminSyncService) ReconcileOrganization(ctx context.Context, orgID string) (*OrgSyncResult, error) {
	if s.telegram == nil {
		return nil, apperrors.ErrTelegramDisabled
	}

	var org models.Organization
	if err := s.db.WithContext(ctx).Where("id = ?", orgID).First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result, err := s.reconcile(ctx, &org)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// reconcile always returns a non-nil result, even alongside an error.
func (s *adminSyncService) reconcile(ctx context.Context, org *models.Organization) (*OrgSyncResult, error) {
	result := &OrgSyncResult{OrgID: org.ID, OrgName: org.Name}
	log := logger.Get().With("org_id", org.ID)

	var bindings []models.OrgTelegramGroup
	if err := s.db.WithContext(ctx).Where("org_id = ?", org.ID).Order("tg_chat_id").Find(&bindings).Error; err != nil {
		return result, err
	}
	result.TotalGroups = len(bindings)
	if len(bindings) == 0 {
		return result, nil
	}

	chatIDs := make([]int64, len(bindings))
	for i, b := range bindings {
		chatIDs[i] = b.TgChatID
	}

	var groups []models.TelegramGroup
	if err := s.db.WithContext(ctx).Where("tg_chat_id IN ?", chatIDs).Find(&groups).Error; err != nil {
		return result, err
	}
	byChat := make(map[int64]*models.TelegramGroup, len(groups))
	for i := range groups {
		byChat[groups[i].TgChatID] = &groups[i]
	}

	for _, chatID := range chatIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		group := byChat[chatID]
		if group != nil && group.BotStatus == models.BotStatusInactive {
			result.SkippedGroups++
			continue
		}
		s.syncChat(ctx, org.ID, chatID, result)
	}

	if result.UpdatedGroups > 0 && s.memberships != nil {
		synced, err := s.memberships.SyncTelegramAdmins(ctx, org.ID)
		if err != nil {
			log.Errorw("failed to sync memberships", "updated_groups", result.UpdatedGroups, "error", err)
			result.Errors = append(result.Errors, ChatSyncError{Kind: telegram.KindOther, Message: "membership sync failed: " + err.Error()})
		} else {
			log.Infow("memberships synced", "added", synced.Added, "removed", synced.Removed)
			result.MembershipsSynced = synced
		}
	}

	log.Infow("organization reconciled",
		"total_groups", result.TotalGroups,
		"updated_groups", result.UpdatedGroups,
		"failed_groups", result.FailedGroups,
		"migrated_groups", result.MigratedGroups,
		"inactivated_groups", result.InactivatedGroups,
	)
	return result, nil
}

func (s *adminSyncService) syncChat(ctx context.Context, orgID string, chatID int64, result *OrgSyncResult) {
	log := logger.Get().With("org_id", orgID, "chat_id", chatID)

	admins, err := s.telegram.GetChatAdministrators(ctx, chatID)
	if err != nil {
		apiErr := telegram.Classify(err)
		log.Warnw("failed to fetch chat administrators", "error_kind", apiErr.Kind, "error", apiErr.Message)

		switch apiErr.Kind {
		case telegram.KindSupergroupUpgrade:
			outcome, mErr := s.migrations.Migrate(ctx, MigrationRequest{
				OrgID:     orgID,
				OldChatID: chatID,
				NewChatID: apiErr.MigrateToChatID,
			})
			if mErr != nil {
				result.FailedGroups++
				result.Errors = append(result.Errors, ChatSyncError{ChatID: chatID, Kind: apiErr.Kind, Message: mErr.Error()})
				return
			}
			if !outcome.AlreadyMigrated {
				result.MigratedGroups++
			}
		case telegram.KindBotKicked, telegram.KindNotFound:
			if sErr := s.setBotStatus(ctx, chatID, models.BotStatusInactive); sErr != nil {
				log.Errorw("failed to mark group inactive", "error", sErr)
				result.FailedGroups++
				result.Errors = append(result.Errors, ChatSyncError{ChatID: chatID, Kind: apiErr.Kind, Message: sErr.Error()})
				return
			}
			result.InactivatedGroups++
		default:
			result.FailedGroups++
			result.Errors = append(result.Errors, ChatSyncError{ChatID: chatID, Kind: apiErr.Kind, Message: apiErr.Message})
		}
		return
	}

	if err := s.refreshAdmins(ctx, chatID, admins); err != nil {
		log.Errorw("failed to refresh admin cache", "error", err)
		result.FailedGroups++
		result.Errors = append(result.Errors, ChatSyncError{ChatID: chatID, Kind: telegram.KindOther, Message: err.Error()})
		return
	}
	log.Debugw("admin cache refreshed", "administrators", len(admins))
	result.UpdatedGroups++
}

// refreshAdmins deactivates every cached row for the chat and upserts the
// live administrator list in a single transaction.
func (s *adminSyncService) refreshAdmins(ctx context.Context, chatID int64, admins []telegram.ChatAdmin) error {
	now := s.now()

	rows := make([]models.TelegramGroupAdmin, 0, len(admins))
	seen := make(map[int64]bool, len(admins))
	for _, a := range admins {
		if a.UserID == 0 || seen[a.UserID] {
			continue
		}
		if a.IsBot && a.UserID != s.botID {
			continue
		}
		seen[a.UserID] = true
		rows = append(rows, models.TelegramGroupAdmin{
			TgChatID:           chatID,
			TgUserID:           a.UserID,
			IsAdmin:            true,
			IsOwner:            a.IsCreator(),
			CustomTitle:        a.CustomTitle,
			CanManageChat:      a.CanManageChat,
			CanDeleteMessages:  a.CanDeleteMessages,
			CanRestrictMembers: a.CanRestrictMembers,
			CanPromoteMembers:  a.CanPromoteMembers,
			CanChangeInfo:      a.CanChangeInfo,
			CanInviteUsers:     a.CanInviteUsers,
			CanPinMessages:     a.CanPinMessages,
			VerifiedAt:         now,
			ExpiresAt:          now.Add(s.adminTTL),
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TelegramGroupAdmin{}).
			Where("tg_chat_id = ?", chatID).
			Updates(map[string]interface{}{
				"is_admin":    false,
				"is_owner":    false,
				"verified_at": now,
				"expires_at":  now.Add(deactivatedAdminTTL),
			}).Error; err != nil {
			return err
		}

		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "tg_chat_id"}, {Name: "tg_user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"is_admin", "is_owner", "custom_title",
					"can_manage_chat", "can_delete_messages", "can_restrict_members",
					"can_promote_members", "can_change_info", "can_invite_users", "can_pin_messages",
					"verified_at", "expires_at", "updated_at",
				}),
			}).Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.TelegramGroup{}).
			Where("tg_chat_id = ?", chatID).
			Updates(map[string]interface{}{
				"bot_status":   models.BotStatusConnected,
				"last_sync_at": now,
			}).Error
	})
}

func (s *adminSyncService) setBotStatus(ctx context.Context, chatID int64, status models.BotStatus) error {
	return s.db.WithContext(ctx).
		Model(&models.TelegramGroup{}).
		Where("tg_chat_id = ?", chatID).
		Update("bot_status", status).Error
}

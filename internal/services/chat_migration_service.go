package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "orbo/internal/errors"
	"orbo/internal/events"
	"orbo/internal/logger"
	"orbo/internal/models"
	"orbo/internal/pagination"
)

// maxMigrationHops bounds how many migrated_to links ResolveChatID follows.
const maxMigrationHops = 8

// chatMigrationService moves a chat's local state to its supergroup id.
type chatMigrationService struct {
	db        *gorm.DB
	telegram  TelegramClient
	publisher events.Publisher
	now       func() time.Time
}

// NewChatMigrationService creates a new ChatMigrationServicer. client may be
// nil, in which case migrations need the new chat id up front.
func NewChatMigrationService(db *gorm.DB, client TelegramClient, publisher events.Publisher) ChatMigrationServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatMigrationService{db: db, telegram: client, publisher: publisher, now: time.Now}
}

// Migrate supersedes the old chat with its supergroup. It is idempotent: a
// pair that already has a migration log only has its old group re-marked
// inactive. When the new id cannot be determined the old group is flagged
// migration_needed and ErrMigrationUnknown is returned.
func (s *chatMigrationService) Migrate(ctx context.Context, req MigrationRequest) (*MigrationOutcome, error) {
	log := logger.Get().With("org_id", req.OrgID, "old_chat_id", req.OldChatID)

	newChatID := req.NewChatID
	if newChatID == 0 && s.telegram != nil {
		info, err := s.telegram.GetChat(ctx, req.OldChatID)
		if info != nil && info.MigratedToChatID != 0 {
			newChatID = info.MigratedToChatID
		} else if err != nil {
			log.Warnw("getChat did not report a supergroup id", "error", err)
		}
	}

	if newChatID == 0 || newChatID == req.OldChatID {
		log.Warnw("supergroup id unknown, flagging group for manual migration")
		if err := s.flagMigrationNeeded(ctx, req.OldChatID); err != nil {
			log.Errorw("failed to flag group", "error", err)
		}
		return nil, apperrors.ErrMigrationUnknown
	}

	outcome := &MigrationOutcome{OldChatID: req.OldChatID, NewChatID: newChatID}
	log = log.With("new_chat_id", newChatID)

	var existing models.ChatMigrationLog
	err := s.db.WithContext(ctx).
		Where("old_chat_id = ? AND new_chat_id = ?", req.OldChatID, newChatID).
		First(&existing).Error
	switch {
	case err == nil:
		outcome.AlreadyMigrated = true
		if err := s.supersede(s.db.WithContext(ctx), req.OldChatID, newChatID); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err)
		}
		log.Infow("chat already migrated")
		return outcome, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err)
	}

	var title string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldGroup models.TelegramGroup
		oldErr := tx.Where("tg_chat_id = ?", req.OldChatID).First(&oldGroup).Error
		if oldErr != nil && !errors.Is(oldErr, gorm.ErrRecordNotFound) {
			return oldErr
		}
		title = oldGroup.Title

		var newCount int64
		if err := tx.Model(&models.TelegramGroup{}).Where("tg_chat_id = ?", newChatID).Count(&newCount).Error; err != nil {
			return err
		}
		if newCount == 0 {
			oldID := req.OldChatID
			newGroup := &models.TelegramGroup{
				TgChatID:     newChatID,
				Title:        oldGroup.Title,
				BotStatus:    models.BotStatusConnected,
				MemberCount:  oldGroup.MemberCount,
				InviteLink:   oldGroup.InviteLink,
				MigratedFrom: &oldID,
			}
			if err := tx.Create(newGroup).Error; err != nil {
				return err
			}
			outcome.GroupCreated = true
		}

		if err := s.supersede(tx, req.OldChatID, newChatID); err != nil {
			return err
		}

		counts, err := migrateChatReferences(tx, req.OldChatID, newChatID)
		if err != nil {
			return err
		}
		outcome.References = *counts

		payload, err := json.Marshal(outcome)
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ChatMigrationLog{
			OldChatID: req.OldChatID,
			NewChatID: newChatID,
			Result:    datatypes.JSON(payload),
		}).Error
	})
	if err != nil {
		log.Errorw("chat migration failed", "error", err)
		if flagErr := s.flagMigrationNeeded(ctx, req.OldChatID); flagErr != nil {
			log.Errorw("failed to flag group", "error", flagErr)
		}
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err)
	}

	log.Infow("chat migrated",
		"group_created", outcome.GroupCreated,
		"bindings", outcome.References.Bindings,
		"admins", outcome.References.Admins,
		"participant_groups", outcome.References.ParticipantGroups,
		"activity_events", outcome.References.ActivityEvents,
	)

	if err := s.publisher.ChatMigrated(ctx, events.ChatMigratedEvent{
		OldChatID:  req.OldChatID,
		NewChatID:  newChatID,
		OrgID:      req.OrgID,
		Title:      title,
		MigratedAt: s.now(),
	}); err != nil {
		log.Warnw("failed to publish chat migration", "error", err)
	}

	return outcome, nil
}

// MigrateChatReferences repoints every table keyed by chat id from the old id
// to the new one in a single transaction.
func (s *chatMigrationService) MigrateChatReferences(ctx context.Context, oldChatID, newChatID int64) (*ReferenceCounts, error) {
	if oldChatID == 0 || newChatID == 0 || oldChatID == newChatID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "old and new chat ids must differ")
	}

	var counts *ReferenceCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		counts, err = migrateChatReferences(tx, oldChatID, newChatID)
		return err
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMigrationFailed, err)
	}
	return counts, nil
}

// ResolveChatID follows migrated_to links to the chat's current id.
func (s *chatMigrationService) ResolveChatID(ctx context.Context, chatID int64) (int64, error) {
	current := chatID
	for hop := 0; hop < maxMigrationHops; hop++ {
		var group models.TelegramGroup
		err := s.db.WithContext(ctx).Select("tg_chat_id", "migrated_to").Where("tg_chat_id = ?", current).First(&group).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return current, nil
			}
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if group.MigratedTo == nil || *group.MigratedTo == current {
			return current, nil
		}
		current = *group.MigratedTo
	}
	logger.Get().Warnw("migration chain too long", "chat_id", chatID, "stopped_at", current)
	return current, nil
}

// ListMigrations returns migration log entries, newest first.
func (s *chatMigrationService) ListMigrations(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMigrationLog], error) {
	page.Defaults()
	query := s.db.WithContext(ctx).Model(&models.ChatMigrationLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var logs []models.ChatMigrationLog
	if err := query.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(logs, page.Page, page.PageSize, total)
	return &resp, nil
}

// supersede marks the old group inactive and points it at the new chat.
func (s *chatMigrationService) supersede(db *gorm.DB, oldChatID, newChatID int64) error {
	return db.Model(&models.TelegramGroup{}).
		Where("tg_chat_id = ?", oldChatID).
		Updates(map[string]interface{}{
			"bot_status":  models.BotStatusInactive,
			"migrated_to": newChatID,
		}).Error
}

func (s *chatMigrationService) flagMigrationNeeded(ctx context.Context, chatID int64) error {
	return s.db.WithContext(ctx).
		Model(&models.TelegramGroup{}).
		Where("tg_chat_id = ? AND migrated_to IS NULL", chatID).
		Update("bot_status", models.BotStatusMigrationNeeded).Error
}

// migrateChatReferences must run inside a transaction. Rows whose new-id
// counterpart already exists are dropped rather than duplicated.
func migrateChatReferences(tx *gorm.DB, oldChatID, newChatID int64) (*ReferenceCounts, error) {
	counts := &ReferenceCounts{}

	dropped := tx.Where("tg_chat_id = ? AND org_id IN (?)", oldChatID,
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.OrgTelegramGroup{}).Select("org_id").Where("tg_chat_id = ?", newChatID),
	).Delete(&models.OrgTelegramGroup{})
	if dropped.Error != nil {
		return nil, dropped.Error
	}
	counts.Dropped += dropped.RowsAffected

	moved := tx.Model(&models.OrgTelegramGroup{}).Where("tg_chat_id = ?", oldChatID).Update("tg_chat_id", newChatID)
	if moved.Error != nil {
		return nil, moved.Error
	}
	counts.Bindings = moved.RowsAffected

	dropped = tx.Where("tg_chat_id = ? AND tg_user_id IN (?)", oldChatID,
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.TelegramGroupAdmin{}).Select("tg_user_id").Where("tg_chat_id = ?", newChatID),
	).Delete(&models.TelegramGroupAdmin{})
	if dropped.Error != nil {
		return nil, dropped.Error
	}
	counts.Dropped += dropped.RowsAffected

	moved = tx.Model(&models.TelegramGroupAdmin{}).Where("tg_chat_id = ?", oldChatID).Update("tg_chat_id", newChatID)
	if moved.Error != nil {
		return nil, moved.Error
	}
	counts.Admins = moved.RowsAffected

	dropped = tx.Where("tg_group_id = ? AND participant_id IN (?)", oldChatID,
		tx.Session(&gorm.Session{NewDB: true}).Model(&models.ParticipantGroup{}).Select("participant_id").Where("tg_group_id = ?", newChatID),
	).Delete(&models.ParticipantGroup{})
	if dropped.Error != nil {
		return nil, dropped.Error
	}
	counts.Dropped += dropped.RowsAffected

	moved = tx.Model(&models.ParticipantGroup{}).Where("tg_group_id = ?", oldChatID).Update("tg_group_id", newChatID)
	if moved.Error != nil {
		return nil, moved.Error
	}
	counts.ParticipantGroups = moved.RowsAffected

	moved = tx.Model(&models.TelegramActivityEvent{}).Where("tg_chat_id = ?", oldChatID).Update("tg_chat_id", newChatID)
	if moved.Error != nil {
		return nil, moved.Error
	}
	counts.ActivityEvents = moved.RowsAffected

	return counts, nil
}


package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "orbo/internal/errors"
	"orbo/internal/models"
)

type adminCacheService struct {
	db         *gorm.DB
	migrations ChatMigrationServicer
	now        func() time.Time
}

// NewAdminCacheService creates a new AdminCacheServicer.
func NewAdminCacheService(db *gorm.DB, migrations ChatMigrationServicer) AdminCacheServicer {
	return &adminCacheService{db: db, migrations: migrations, now: time.Now}
}

// CheckAdmin answers from the cache only. The chat id is first resolved
// through any recorded migrations; an expired or missing row means "not an
// admin".
func (s *adminCacheService) CheckAdmin(ctx context.Context, chatID, tgUserID int64) (*AdminStatus, error) {
	resolved, err := s.migrations.ResolveChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	status := &AdminStatus{ChatID: chatID, ResolvedChatID: resolved, TgUserID: tgUserID}

	var row models.TelegramGroupAdmin
	err = s.db.WithContext(ctx).
		Where("tg_chat_id = ? AND tg_user_id = ?", resolved, tgUserID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return status, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expires := row.ExpiresAt
	status.ExpiresAt = &expires
	if row.ActiveAt(s.now()) {
		status.IsAdmin = true
		status.IsOwner = row.IsOwner
	}
	return status, nil
}

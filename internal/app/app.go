// Package app wires configuration, storage, the Telegram client and the
// services together for the server and the CLI.
package app

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"orbo/internal/config"
	"orbo/internal/events"
	"orbo/internal/logger"
	"orbo/internal/services"
	"orbo/internal/telegram"
)

// Services is the set of services shared by every entrypoint.
type Services struct {
	Audit         services.AuditServicer
	Organizations services.OrganizationServicer
	Migrations    services.ChatMigrationServicer
	Memberships   services.MembershipSyncServicer
	AdminSync     services.AdminSyncServicer
	AdminCache    services.AdminCacheServicer
	Backfill      services.BackfillServicer
	Participants  services.ParticipantServicer

	publisher events.Publisher
}

// NewServices builds every service on top of db. A missing bot token is not
// an error: the Telegram-backed sync then reports itself as not configured.
func NewServices(db *gorm.DB, cfg *config.Config) (*Services, error) {
	client, err := newTelegramClient(cfg)
	if err != nil {
		return nil, err
	}
	publisher := events.NewPublisher(cfg)

	audit := services.NewAuditService(db)
	migrations := services.NewChatMigrationService(db, client, publisher)
	memberships := services.NewMembershipSyncService(db)

	return &Services{
		Audit:         audit,
		Organizations: services.NewOrganizationService(db),
		Migrations:    migrations,
		Memberships:   memberships,
		AdminSync:     services.NewAdminSyncService(db, client, migrations, memberships, cfg),
		AdminCache:    services.NewAdminCacheService(db, migrations),
		Backfill:      services.NewBackfillService(db, audit, publisher, cfg),
		Participants:  services.NewParticipantService(db, audit),
		publisher:     publisher,
	}, nil
}

// Close flushes the event publisher.
func (s *Services) Close() error {
	return s.publisher.Close()
}

// newTelegramClient returns a nil interface, not a typed nil, when no token
// is configured.
func newTelegramClient(cfg *config.Config) (services.TelegramClient, error) {
	client, err := telegram.NewClient(telegram.OptionsFromConfig(cfg))
	if errors.Is(err, telegram.ErrNoToken) {
		logger.Get().Warn("TELEGRAM_BOT_TOKEN not set, admin rights sync disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return client, nil
}

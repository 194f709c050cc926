// Package events publishes reconciliation outcomes for downstream consumers.
package events

import (
	"context"
	"time"
)

const (
	topicChatMigrated           = "telegram.chat.migrated"
	topicParticipantsBackfilled = "participants.backfilled"
)

// ChatMigratedEvent is emitted after a chat id migration is committed.
type ChatMigratedEvent struct {
	OldChatID  int64     `json:"old_chat_id"`
	NewChatID  int64     `json:"new_chat_id"`
	OrgID      string    `json:"org_id"`
	Title      string    `json:"title,omitempty"`
	MigratedAt time.Time `json:"migrated_at"`
}

// ParticipantsBackfilledEvent is emitted when a backfill created participants.
type ParticipantsBackfilledEvent struct {
	OrgID    string    `json:"org_id"`
	ChatIDs  []int64   `json:"chat_ids"`
	Inserted int       `json:"inserted"`
	RanAt    time.Time `json:"ran_at"`
}

// Publisher delivers domain events. Implementations must not block a
// reconciliation on delivery failure for longer than the caller's context.
type Publisher interface {
	ChatMigrated(ctx context.Context, event ChatMigratedEvent) error
	ParticipantsBackfilled(ctx context.Context, event ParticipantsBackfilledEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) ChatMigrated(context.Context, ChatMigratedEvent) error { return nil }

func (NopPublisher) ParticipantsBackfilled(context.Context, ParticipantsBackfilledEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

package models

import (
	"time"

	"orbo/internal/uuid"

	"gorm.io/gorm"
)

// TelegramActivityEvent is one entry of the chat activity log. IdentityID is
// filled in asynchronously, so older events may only carry TgUserID.
type TelegramActivityEvent struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	TgChatID   int64     `gorm:"not null;index:idx_activity_events_chat_created,priority:1" json:"tg_chat_id"`
	TgUserID   *int64    `gorm:"index" json:"tg_user_id,omitempty"`
	IdentityID *string   `gorm:"type:uuid;index" json:"identity_id,omitempty"`
	EventType  string    `gorm:"size:64;not null" json:"event_type"`
	CreatedAt  time.Time `gorm:"not null;index:idx_activity_events_chat_created,priority:2,sort:desc" json:"created_at"`
}

// BeforeCreate assigns an id to events written without one.
func (e *TelegramActivityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}

package models

import "time"

// BotStatus is the connection state of the bot in a bound chat.
type BotStatus string

const (
	BotStatusConnected       BotStatus = "connected"
	BotStatusInactive        BotStatus = "inactive"
	BotStatusMigrationNeeded BotStatus = "migration_needed"
)

// TelegramGroup represents a Telegram chat known to the platform. A chat that
// was upgraded to a supergroup keeps its row, marked inactive with MigratedTo
// set, and the supergroup gets a new row pointing back through MigratedFrom.
type TelegramGroup struct {
	Base
	TgChatID     int64      `gorm:"not null;uniqueIndex" json:"tg_chat_id"`
	Title        string     `json:"title"`
	BotStatus    BotStatus  `gorm:"not null;size:32" json:"bot_status"`
	MemberCount  int        `json:"member_count"`
	InviteLink   string     `json:"invite_link,omitempty"`
	MigratedFrom *int64     `json:"migrated_from,omitempty"`
	MigratedTo   *int64     `gorm:"index" json:"migrated_to,omitempty"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
}

// IsActive reports whether the reconciler should still poll this chat.
func (g *TelegramGroup) IsActive() bool {
	return g.BotStatus == BotStatusConnected && g.MigratedTo == nil
}

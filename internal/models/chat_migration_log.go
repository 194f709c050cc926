package models

import "gorm.io/datatypes"

// ChatMigrationLog records one completed chat id migration. The (old, new)
// pair is unique, so a repeated migration attempt is a no-op.
type ChatMigrationLog struct {
	Base
	OldChatID int64          `gorm:"not null;uniqueIndex:idx_chat_migration_logs_pair" json:"old_chat_id"`
	NewChatID int64          `gorm:"not null;uniqueIndex:idx_chat_migration_logs_pair;index" json:"new_chat_id"`
	Result    datatypes.JSON `json:"result"`
}

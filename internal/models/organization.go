package models

// Organization is a tenant of the platform.
type Organization struct {
	Base
	Name   string             `gorm:"not null" json:"name"`
	Groups []OrgTelegramGroup `gorm:"foreignKey:OrgID" json:"groups,omitempty"`
}

// OrgTelegramGroup binds a Telegram chat to an organization.
type OrgTelegramGroup struct {
	Base
	OrgID    string `gorm:"type:uuid;not null;uniqueIndex:idx_org_telegram_groups_org_chat" json:"org_id"`
	TgChatID int64  `gorm:"not null;uniqueIndex:idx_org_telegram_groups_org_chat;index" json:"tg_chat_id"`
}

package models

import "time"

// TelegramGroupAdmin is a cached administrator entry for one chat.
// Rows are refreshed in bulk by the admin sync and are only authoritative
// until ExpiresAt.
type TelegramGroupAdmin struct {
	Base
	TgChatID           int64     `gorm:"not null;uniqueIndex:idx_telegram_group_admins_chat_user" json:"tg_chat_id"`
	TgUserID           int64     `gorm:"not null;uniqueIndex:idx_telegram_group_admins_chat_user;index" json:"tg_user_id"`
	IsAdmin            bool      `gorm:"not null" json:"is_admin"`
	IsOwner            bool      `gorm:"not null" json:"is_owner"`
	CustomTitle        string    `json:"custom_title,omitempty"`
	CanManageChat      bool      `json:"can_manage_chat"`
	CanDeleteMessages  bool      `json:"can_delete_messages"`
	CanRestrictMembers bool      `json:"can_restrict_members"`
	CanPromoteMembers  bool      `json:"can_promote_members"`
	CanChangeInfo      bool      `json:"can_change_info"`
	CanInviteUsers     bool      `json:"can_invite_users"`
	CanPinMessages     bool      `json:"can_pin_messages"`
	VerifiedAt         time.Time `gorm:"not null" json:"verified_at"`
	ExpiresAt          time.Time `gorm:"not null;index" json:"expires_at"`
}

// ActiveAt reports whether the row grants admin rights at the given instant.
func (a *TelegramGroupAdmin) ActiveAt(now time.Time) bool {
	return a.IsAdmin && a.ExpiresAt.After(now)
}

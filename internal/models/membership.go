package models

// MembershipRole is a user's role within an organization.
type MembershipRole string

const (
	MembershipRoleOwner  MembershipRole = "owner"
	MembershipRoleAdmin  MembershipRole = "admin"
	MembershipRoleMember MembershipRole = "member"
)

// RoleSource records who granted a membership role.
type RoleSource string

const (
	RoleSourceManual        RoleSource = "manual"
	RoleSourceTelegramAdmin RoleSource = "telegram_admin"
)

// Membership grants a platform user access to an organization.
type Membership struct {
	Base
	OrgID      string         `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" json:"org_id"`
	UserID     string         `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user;index" json:"user_id"`
	Role       MembershipRole `gorm:"size:16;not null" json:"role"`
	RoleSource RoleSource     `gorm:"size:32;not null" json:"role_source"`
}

// UserTelegramAccount links a platform user to their verified Telegram account.
type UserTelegramAccount struct {
	Base
	UserID   string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TgUserID int64  `gorm:"not null;index" json:"tg_user_id"`
}

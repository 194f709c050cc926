package services

import (
	"context"
	"time"

	"orbo/internal/models"
	"orbo/internal/pagination"
	"orbo/internal/telegram"
)

// TelegramClient is the Bot API surface the reconcilers need.
type TelegramClient interface {
	GetChatAdministrators(ctx context.Context, chatID int64) ([]telegram.ChatAdmin, error)
	GetChat(ctx context.Context, chatID int64) (*telegram.ChatInfo, error)
}

// ChatSyncError describes one chat that could not be reconciled.
type ChatSyncError struct {
	ChatID  int64         `json:"chat_id"`
	Kind    telegram.Kind `json:"kind"`
	Message string        `json:"message"`
}

// OrgSyncResult is the outcome of reconciling one organization.
type OrgSyncResult struct {
	OrgID             string                `json:"org_id"`
	OrgName           string                `json:"org_name"`
	TotalGroups       int                   `json:"total_groups"`
	UpdatedGroups     int                   `json:"updated_groups"`
	SkippedGroups     int                   `json:"skipped_groups"`
	FailedGroups      int                   `json:"failed_groups"`
	MigratedGroups    int                   `json:"migrated_groups"`
	InactivatedGroups int                   `json:"inactivated_groups"`
	MembershipsSynced *MembershipSyncResult `json:"memberships_synced,omitempty"`
	Errors            []ChatSyncError       `json:"errors,omitempty"`
}

// SyncRunResult is the outcome of a full admin-rights sweep.
type SyncRunResult struct {
	Results  []OrgSyncResult `json:"results"`
	Duration time.Duration   `json:"-"`
}

// AdminSyncServicer defines the contract for the admin-rights reconciler.
type AdminSyncServicer interface {
	SyncAll(ctx context.Context) (*SyncRunResult, error)
	ReconcileOrganization(ctx context.Context, orgID string) (*OrgSyncResult, error)
}

// MigrationRequest asks for a chat to be moved to its supergroup id.
// NewChatID may be zero, in which case it is looked up via getChat.
type MigrationRequest struct {
	OrgID     string
	OldChatID int64
	NewChatID int64
}

// ReferenceCounts reports how many rows were repointed per table.
type ReferenceCounts struct {
	Bindings          int64 `json:"org_telegram_groups"`
	Admins            int64 `json:"telegram_group_admins"`
	ParticipantGroups int64 `json:"participant_groups"`
	ActivityEvents    int64 `json:"telegram_activity_events"`
	Dropped           int64 `json:"dropped_duplicates"`
}

// MigrationOutcome is the result of a chat migration.
type MigrationOutcome struct {
	OldChatID       int64           `json:"old_chat_id"`
	NewChatID       int64           `json:"new_chat_id"`
	AlreadyMigrated bool            `json:"already_migrated"`
	GroupCreated    bool            `json:"group_created"`
	References      ReferenceCounts `json:"references"`
}

// ChatMigrationServicer defines the contract for chat id migration.
type ChatMigrationServicer interface {
	Migrate(ctx context.Context, req MigrationRequest) (*MigrationOutcome, error)
	MigrateChatReferences(ctx context.Context, oldChatID, newChatID int64) (*ReferenceCounts, error)
	ResolveChatID(ctx context.Context, chatID int64) (int64, error)
	ListMigrations(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMigrationLog], error)
}

// MembershipSyncResult reports membership changes made from admin rights.
type MembershipSyncResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// MembershipSyncServicer defines the contract for deriving memberships from cached admin rights.
type MembershipSyncServicer interface {
	SyncTelegramAdmins(ctx context.Context, orgID string) (*MembershipSyncResult, error)
}

// AdminStatus is a cache-backed answer to "is this user an admin of this chat".
type AdminStatus struct {
	ChatID         int64      `json:"chat_id"`
	ResolvedChatID int64      `json:"resolved_chat_id"`
	TgUserID       int64      `json:"tg_user_id"`
	IsAdmin        bool       `json:"is_admin"`
	IsOwner        bool       `json:"is_owner"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// AdminCacheServicer defines the contract for reading the admin rights cache.
type AdminCacheServicer interface {
	CheckAdmin(ctx context.Context, chatID, tgUserID int64) (*AdminStatus, error)
}

// BackfillRequest identifies the organization and chats to backfill.
// An empty ChatIDs means every chat bound to the organization.
type BackfillRequest struct {
	OrgID     string
	ChatIDs   []int64
	Force     bool
	ActorID   string
	IPAddress string
}

// BackfillResult is the outcome of a participant backfill.
type BackfillResult struct {
	OrgID             string  `json:"orgId"`
	ChatIDs           []int64 `json:"chatIds"`
	Inserted          int     `json:"inserted"`
	TotalParticipants int64   `json:"totalParticipants"`
}

// BackfillServicer defines the contract for the participant backfill.
type BackfillServicer interface {
	Backfill(ctx context.Context, req BackfillRequest) (*BackfillResult, error)
}

// ParticipantServicer defines the contract for participant CRM operations.
type ParticipantServicer interface {
	ListParticipants(ctx context.Context, orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Participant], error)
	MergeParticipants(ctx context.Context, orgID, sourceID, targetID, actorID string) (*models.Participant, error)
}

// OrganizationServicer defines the contract for organization access checks.
type OrganizationServicer interface {
	RequireMembership(ctx context.Context, orgID, userID string) (*models.Membership, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actorID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"orbo/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestOrganization creates an organization with a unique name.
func CreateTestOrganization(t *testing.T, db *gorm.DB) *models.Organization {
	t.Helper()

	org := &models.Organization{Name: fmt.Sprintf("Test Org %d", nextID())}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateTestGroup registers a connected Telegram chat and binds it to the organization.
func CreateTestGroup(t *testing.T, db *gorm.DB, orgID string, chatID int64) *models.TelegramGroup {
	t.Helper()

	group := &models.TelegramGroup{
		TgChatID:    chatID,
		Title:       fmt.Sprintf("Test Group %d", nextID()),
		BotStatus:   models.BotStatusConnected,
		MemberCount: 42,
		InviteLink:  "https://t.me/+invite",
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}
	BindTestGroup(t, db, orgID, chatID)
	return group
}

// BindTestGroup binds an existing chat id to an organization.
func BindTestGroup(t *testing.T, db *gorm.DB, orgID string, chatID int64) *models.OrgTelegramGroup {
	t.Helper()

	binding := &models.OrgTelegramGroup{OrgID: orgID, TgChatID: chatID}
	if err := db.Create(binding).Error; err != nil {
		t.Fatalf("failed to bind test group: %v", err)
	}
	return binding
}

// CreateTestAdmin caches an admin row for a chat that expires after ttl.
func CreateTestAdmin(t *testing.T, db *gorm.DB, chatID, tgUserID int64, isOwner bool, ttl time.Duration) *models.TelegramGroupAdmin {
	t.Helper()

	now := time.Now()
	admin := &models.TelegramGroupAdmin{
		TgChatID:   chatID,
		TgUserID:   tgUserID,
		IsAdmin:    true,
		IsOwner:    isOwner,
		VerifiedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}
	return admin
}

// CreateTestIdentity creates a Telegram identity. An empty id lets the hook assign one.
func CreateTestIdentity(t *testing.T, db *gorm.DB, id string, tgUserID int64, username string) *models.TelegramIdentity {
	t.Helper()

	identity := &models.TelegramIdentity{
		Base:     models.Base{ID: id},
		TgUserID: tgUserID,
		Username: username,
	}
	if err := db.Create(identity).Error; err != nil {
		t.Fatalf("failed to create test identity: %v", err)
	}
	return identity
}

// CreateTestParticipant creates an active participant. identityID and tgUserID may be nil.
func CreateTestParticipant(t *testing.T, db *gorm.DB, orgID string, identityID *string, tgUserID *int64) *models.Participant {
	t.Helper()

	p := &models.Participant{
		OrgID:      orgID,
		IdentityID: identityID,
		TgUserID:   tgUserID,
		FullName:   fmt.Sprintf("Participant %d", nextID()),
		Source:     models.ParticipantSourceManual,
		Status:     models.ParticipantStatusActive,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("failed to create test participant: %v", err)
	}
	return p
}

// LinkTestParticipantGroup records that a participant was seen in a chat.
func LinkTestParticipantGroup(t *testing.T, db *gorm.DB, participantID string, chatID int64) *models.ParticipantGroup {
	t.Helper()

	link := &models.ParticipantGroup{ParticipantID: participantID, TgGroupID: chatID}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("failed to link participant group: %v", err)
	}
	return link
}

// CreateTestActivity writes an activity event. identityID and tgUserID may be nil.
func CreateTestActivity(t *testing.T, db *gorm.DB, chatID int64, identityID *string, tgUserID *int64, at time.Time) *models.TelegramActivityEvent {
	t.Helper()

	event := &models.TelegramActivityEvent{
		TgChatID:   chatID,
		IdentityID: identityID,
		TgUserID:   tgUserID,
		EventType:  "message",
		CreatedAt:  at,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test activity: %v", err)
	}
	return event
}

// CreateTestMembership grants a user a role in an organization.
func CreateTestMembership(t *testing.T, db *gorm.DB, orgID, userID string, role models.MembershipRole, source models.RoleSource) *models.Membership {
	t.Helper()

	m := &models.Membership{OrgID: orgID, UserID: userID, Role: role, RoleSource: source}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// LinkTestTelegramAccount links a platform user to a Telegram user id.
func LinkTestTelegramAccount(t *testing.T, db *gorm.DB, userID string, tgUserID int64) *models.UserTelegramAccount {
	t.Helper()

	account := &models.UserTelegramAccount{UserID: userID, TgUserID: tgUserID}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to link test telegram account: %v", err)
	}
	return account
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

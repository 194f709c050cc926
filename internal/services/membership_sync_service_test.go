package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"orbo/internal/models"
	"orbo/internal/testutil"
	"orbo/internal/uuid"
)

func membershipOf(t *testing.T, db *gorm.DB, orgID, userID string) *models.Membership {
	t.Helper()
	var m models.Membership
	err := db.Where("org_id = ? AND user_id = ?", orgID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		t.Fatalf("failed to load membership: %v", err)
	}
	return &m
}

func TestSyncTelegramAdmins(t *testing.T) {
	t.Run("grants_admin_to_linked_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		testutil.CreateTestGroup(t, db, org.ID, -1001)
		testutil.CreateTestAdmin(t, db, -1001, 1, true, time.Hour)
		testutil.CreateTestAdmin(t, db, -1001, 2, false, time.Hour)

		linked := uuid.New()
		testutil.LinkTestTelegramAccount(t, db, linked, 1)

		svc := NewMembershipSyncService(db)
		res, err := svc.SyncTelegramAdmins(context.Background(), org.ID)
		testutil.AssertNoError(t, err)

		if res.Added != 1 || res.Removed != 0 {
			t.Errorf("expected 1 added, got %+v", res)
		}
		m := membershipOf(t, db, org.ID, linked)
		if m == nil || m.Role != models.MembershipRoleAdmin || m.RoleSource != models.RoleSourceTelegramAdmin {
			t.Errorf("unexpected membership: %+v", m)
		}

		// A second pass is a no-op.
		res, err = svc.SyncTelegramAdmins(context.Background(), org.ID)
		testutil.AssertNoError(t, err)
		if res.Added != 0 || res.Removed != 0 {
			t.Errorf("expected no changes on second pass, got %+v", res)
		}
	})

	t.Run("upgrades_members_and_keeps_manual_roles", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		testutil.CreateTestGroup(t, db, org.ID, -1001)
		testutil.CreateTestAdmin(t, db, -1001, 1, false, time.Hour)
		testutil.CreateTestAdmin(t, db, -1001, 2, false, time.Hour)

		member, owner := uuid.New(), uuid.New()
		testutil.LinkTestTelegramAccount(t, db, member, 1)
		testutil.LinkTestTelegramAccount(t, db, owner, 2)
		testutil.CreateTestMembership(t, db, org.ID, member, models.MembershipRoleMember, models.RoleSourceManual)
		testutil.CreateTestMembership(t, db, org.ID, owner, models.MembershipRoleOwner, models.RoleSourceManual)

		svc := NewMembershipSyncService(db)
		res, err := svc.SyncTelegramAdmins(context.Background(), org.ID)
		testutil.AssertNoError(t, err)

		if res.Added != 1 {
			t.Errorf("expected 1 upgrade, got %+v", res)
		}
		if m := membershipOf(t, db, org.ID, member); m.Role != models.MembershipRoleAdmin {
			t.Errorf("expected member upgraded to admin, got %s", m.Role)
		}
		if m := membershipOf(t, db, org.ID, owner); m.Role != models.MembershipRoleOwner || m.RoleSource != models.RoleSourceManual {
			t.Errorf("expected owner untouched, got %+v", m)
		}
	})

	t.Run("revokes_when_admin_rights_lapse", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		testutil.CreateTestGroup(t, db, org.ID, -1001)
		testutil.CreateTestAdmin(t, db, -1001, 1, false, -time.Minute)

		former, manual := uuid.New(), uuid.New()
		testutil.LinkTestTelegramAccount(t, db, former, 1)
		testutil.CreateTestMembership(t, db, org.ID, former, models.MembershipRoleAdmin, models.RoleSourceTelegramAdmin)
		testutil.CreateTestMembership(t, db, org.ID, manual, models.MembershipRoleAdmin, models.RoleSourceManual)

		svc := NewMembershipSyncService(db)
		res, err := svc.SyncTelegramAdmins(context.Background(), org.ID)
		testutil.AssertNoError(t, err)

		if res.Removed != 1 || res.Added != 0 {
			t.Errorf("expected 1 removed, got %+v", res)
		}
		if membershipOf(t, db, org.ID, former) != nil {
			t.Error("expected derived membership to be removed")
		}
		if membershipOf(t, db, org.ID, manual) == nil {
			t.Error("expected manual admin to be kept")
		}
	})

	t.Run("ignores_other_orgs_chats", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		other := testutil.CreateTestOrganization(t, db)
		testutil.CreateTestGroup(t, db, other.ID, -2001)
		testutil.CreateTestAdmin(t, db, -2001, 1, true, time.Hour)
		testutil.LinkTestTelegramAccount(t, db, uuid.New(), 1)

		svc := NewMembershipSyncService(db)
		res, err := svc.SyncTelegramAdmins(context.Background(), org.ID)
		testutil.AssertNoError(t, err)
		if res.Added != 0 {
			t.Errorf("expected no memberships, got %+v", res)
		}
	})
}

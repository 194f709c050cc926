package services

import (
	"context"
	"testing"

	"orbo/internal/models"
	"orbo/internal/testutil"
)

func TestRequireMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewOrganizationService(db)
	org := testutil.CreateTestOrganization(t, db)
	testutil.CreateTestMembership(t, db, org.ID, "user-1", models.MembershipRoleMember, models.RoleSourceManual)

	t.Run("member", func(t *testing.T) {
		m, err := svc.RequireMembership(context.Background(), org.ID, "user-1")
		testutil.AssertNoError(t, err)
		if m.Role != models.MembershipRoleMember {
			t.Errorf("role = %s, want member", m.Role)
		}
	})

	t.Run("not_a_member", func(t *testing.T) {
		_, err := svc.RequireMembership(context.Background(), org.ID, "user-2")
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing_org", func(t *testing.T) {
		_, err := svc.RequireMembership(context.Background(), "", "user-1")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_user", func(t *testing.T) {
		_, err := svc.RequireMembership(context.Background(), org.ID, "")
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

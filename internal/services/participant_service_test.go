package services

import (
	"context"
	"testing"
	"time"

	"orbo/internal/models"
	"orbo/internal/pagination"
	"orbo/internal/testutil"
)

func TestListParticipants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	org := testutil.CreateTestOrganization(t, db)
	other := testutil.CreateTestOrganization(t, db)
	a := testutil.CreateTestParticipant(t, db, org.ID, nil, testutil.Ptr(int64(1)))
	b := testutil.CreateTestParticipant(t, db, org.ID, nil, testutil.Ptr(int64(2)))
	testutil.CreateTestParticipant(t, db, other.ID, nil, testutil.Ptr(int64(3)))
	db.Model(&models.Participant{}).Where("id = ?", b.ID).Update("merged_into", models.MergedInto(a.ID))

	svc := NewParticipantService(db, nil)
	page, err := svc.ListParticipants(context.Background(), org.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if page.TotalItems != 1 || len(page.Data) != 1 || page.Data[0].ID != a.ID {
		t.Errorf("expected only the non-merged participant, got %+v", page)
	}
	if page.Page != 1 || page.PageSize != 20 {
		t.Errorf("expected default paging, got page=%d size=%d", page.Page, page.PageSize)
	}
}

func TestMergeParticipants(t *testing.T) {
	t.Run("moves_links_and_fills_identity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		ident := testutil.CreateTestIdentity(t, db, "", 1, "")
		target := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)
		source := testutil.CreateTestParticipant(t, db, org.ID, &ident.ID, testutil.Ptr(int64(1)))
		recent := time.Now()
		db.Model(&models.Participant{}).Where("id = ?", source.ID).Update("last_activity_at", recent)
		testutil.LinkTestParticipantGroup(t, db, source.ID, -1001)
		testutil.LinkTestParticipantGroup(t, db, source.ID, -1002)
		testutil.LinkTestParticipantGroup(t, db, target.ID, -1002)

		svc := NewParticipantService(db, NewAuditService(db))
		merged, err := svc.MergeParticipants(context.Background(), org.ID, source.ID, target.ID, "actor")
		testutil.AssertNoError(t, err)

		if merged.IdentityID == nil || *merged.IdentityID != ident.ID {
			t.Errorf("expected identity to move to target, got %v", merged.IdentityID)
		}
		if merged.TgUserID == nil || *merged.TgUserID != 1 {
			t.Errorf("expected tg user to move to target, got %v", merged.TgUserID)
		}

		var reloaded models.Participant
		db.First(&reloaded, "id = ?", source.ID)
		if got, ok := reloaded.Merge.Target(); !ok || got != target.ID {
			t.Errorf("expected source merged into target, got %q", got)
		}

		var links []models.ParticipantGroup
		db.Where("participant_id = ?", target.ID).Find(&links)
		if len(links) != 2 {
			t.Errorf("expected target to own 2 chat links, got %d", len(links))
		}
		var sourceLinks int64
		db.Model(&models.ParticipantGroup{}).Where("participant_id = ?", source.ID).Count(&sourceLinks)
		if sourceLinks != 0 {
			t.Errorf("expected no links left on source, got %d", sourceLinks)
		}

		var audits int64
		db.Model(&models.AuditLog{}).Where("action = ?", "MERGE").Count(&audits)
		if audits != 1 {
			t.Errorf("expected 1 audit entry, got %d", audits)
		}
	})

	t.Run("self_merge", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		p := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)

		svc := NewParticipantService(db, nil)
		_, err := svc.MergeParticipants(context.Background(), org.ID, p.ID, p.ID, "actor")
		testutil.AssertAppError(t, err, "SELF_MERGE")
	})

	t.Run("already_merged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		a := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)
		b := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)
		c := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)

		svc := NewParticipantService(db, nil)
		_, err := svc.MergeParticipants(context.Background(), org.ID, a.ID, b.ID, "actor")
		testutil.AssertNoError(t, err)

		_, err = svc.MergeParticipants(context.Background(), org.ID, c.ID, a.ID, "actor")
		testutil.AssertAppError(t, err, "PARTICIPANT_MERGED")
	})

	t.Run("cross_org", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		org := testutil.CreateTestOrganization(t, db)
		other := testutil.CreateTestOrganization(t, db)
		a := testutil.CreateTestParticipant(t, db, org.ID, nil, nil)
		b := testutil.CreateTestParticipant(t, db, other.ID, nil, nil)

		svc := NewParticipantService(db, nil)
		_, err := svc.MergeParticipants(context.Background(), org.ID, a.ID, b.ID, "actor")
		testutil.AssertAppError(t, err, "PARTICIPANT_NOT_FOUND")
	})
}

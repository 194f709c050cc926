package app

import (
	"context"
	"testing"

	"orbo/internal/config"
	"orbo/internal/services"
	"orbo/internal/testutil"
)

func TestNewServices_WithoutBotToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svcs, err := NewServices(db, &config.Config{BackfillEventLimit: 10})
	testutil.AssertNoError(t, err)
	defer svcs.Close()

	_, err = svcs.AdminSync.SyncAll(context.Background())
	testutil.AssertAppError(t, err, "TELEGRAM_NOT_CONFIGURED")

	org := testutil.CreateTestOrganization(t, db)
	res, err := svcs.Backfill.Backfill(context.Background(), backfillRequest(org.ID))
	testutil.AssertNoError(t, err)
	if res.Inserted != 0 {
		t.Errorf("expected nothing inserted, got %d", res.Inserted)
	}
}

func TestNewServices_WithBotToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svcs, err := NewServices(db, &config.Config{TelegramBotToken: "123:abc", TelegramAPIURL: "http://127.0.0.1:0"})
	testutil.AssertNoError(t, err)
	defer svcs.Close()

	run, err := svcs.AdminSync.SyncAll(context.Background())
	testutil.AssertNoError(t, err)
	if len(run.Results) != 0 {
		t.Errorf("expected no organizations, got %d", len(run.Results))
	}
}

func backfillRequest(orgID string) services.BackfillRequest {
	return services.BackfillRequest{OrgID: orgID}
}

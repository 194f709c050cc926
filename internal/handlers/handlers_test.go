package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"orbo/internal/middleware"
	"orbo/internal/models"
	"orbo/internal/pagination"
	"orbo/internal/services"
	"orbo/internal/validator"
)

const testUserID = "0190a5d2-7c1e-7000-8000-0000000000aa"

// --- mock services ---

type mockAdminSyncService struct {
	syncAllFn   func(ctx context.Context) (*services.SyncRunResult, error)
	reconcileFn func(ctx context.Context, orgID string) (*services.OrgSyncResult, error)
}

func (m *mockAdminSyncService) SyncAll(ctx context.Context) (*services.SyncRunResult, error) {
	if m.syncAllFn != nil {
		return m.syncAllFn(ctx)
	}
	return &services.SyncRunResult{}, nil
}

func (m *mockAdminSyncService) ReconcileOrganization(ctx context.Context, orgID string) (*services.OrgSyncResult, error) {
	if m.reconcileFn != nil {
		return m.reconcileFn(ctx, orgID)
	}
	return &services.OrgSyncResult{OrgID: orgID}, nil
}

type mockOrganizationService struct {
	requireMembershipFn func(ctx context.Context, orgID, userID string) (*models.Membership, error)
}

func (m *mockOrganizationService) RequireMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	if m.requireMembershipFn != nil {
		return m.requireMembershipFn(ctx, orgID, userID)
	}
	return &models.Membership{OrgID: orgID, UserID: userID, Role: models.MembershipRoleAdmin}, nil
}

type mockBackfillService struct {
	backfillFn func(ctx context.Context, req services.BackfillRequest) (*services.BackfillResult, error)
}

func (m *mockBackfillService) Backfill(ctx context.Context, req services.BackfillRequest) (*services.BackfillResult, error) {
	if m.backfillFn != nil {
		return m.backfillFn(ctx, req)
	}
	return &services.BackfillResult{OrgID: req.OrgID, ChatIDs: req.ChatIDs}, nil
}

type mockParticipantService struct {
	listFn  func(ctx context.Context, orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Participant], error)
	mergeFn func(ctx context.Context, orgID, sourceID, targetID, actorID string) (*models.Participant, error)
}

func (m *mockParticipantService) ListParticipants(ctx context.Context, orgID string, page pagination.PageRequest) (*pagination.PageResponse[models.Participant], error) {
	if m.listFn != nil {
		return m.listFn(ctx, orgID, page)
	}
	resp := pagination.NewPageResponse[models.Participant](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockParticipantService) MergeParticipants(ctx context.Context, orgID, sourceID, targetID, actorID string) (*models.Participant, error) {
	if m.mergeFn != nil {
		return m.mergeFn(ctx, orgID, sourceID, targetID, actorID)
	}
	return &models.Participant{}, nil
}

type mockAdminCacheService struct {
	checkAdminFn func(ctx context.Context, chatID, tgUserID int64) (*services.AdminStatus, error)
}

func (m *mockAdminCacheService) CheckAdmin(ctx context.Context, chatID, tgUserID int64) (*services.AdminStatus, error) {
	if m.checkAdminFn != nil {
		return m.checkAdminFn(ctx, chatID, tgUserID)
	}
	return &services.AdminStatus{ChatID: chatID, ResolvedChatID: chatID, TgUserID: tgUserID}, nil
}

type mockChatMigrationService struct {
	resolveFn func(ctx context.Context, chatID int64) (int64, error)
	listFn    func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMigrationLog], error)
}

func (m *mockChatMigrationService) Migrate(_ context.Context, req services.MigrationRequest) (*services.MigrationOutcome, error) {
	return &services.MigrationOutcome{OldChatID: req.OldChatID, NewChatID: req.NewChatID}, nil
}

func (m *mockChatMigrationService) MigrateChatReferences(_ context.Context, _, _ int64) (*services.ReferenceCounts, error) {
	return &services.ReferenceCounts{}, nil
}

func (m *mockChatMigrationService) ResolveChatID(ctx context.Context, chatID int64) (int64, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, chatID)
	}
	return chatID, nil
}

func (m *mockChatMigrationService) ListMigrations(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.ChatMigrationLog], error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	resp := pagination.NewPageResponse[models.ChatMigrationLog](nil, 1, 20, 0)
	return &resp, nil
}

var (
	_ services.AdminSyncServicer     = (*mockAdminSyncService)(nil)
	_ services.OrganizationServicer  = (*mockOrganizationService)(nil)
	_ services.BackfillServicer      = (*mockBackfillService)(nil)
	_ services.ParticipantServicer   = (*mockParticipantService)(nil)
	_ services.AdminCacheServicer    = (*mockAdminCacheService)(nil)
	_ services.ChatMigrationServicer = (*mockChatMigrationService)(nil)
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// newTestRouter mounts the error middleware that renders respondWithError.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler(), mw)
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "user_id": c.GetString("userID")})
	})
	return r
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if code, _ := errObj["code"].(string); code != want {
		t.Errorf("error code = %q, want %q", code, want)
	}
}

func TestCronAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		secret        string
		authorization string
		wantStatus    int
		wantErrorCode string
	}{
		{
			name:          "valid_secret",
			secret:        "cron-secret",
			authorization: "Bearer cron-secret",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "wrong_secret",
			secret:        "cron-secret",
			authorization: "Bearer nope",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CRON_SECRET",
		},
		{
			name:          "missing_header",
			secret:        "cron-secret",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CRON_SECRET",
		},
		{
			name:          "bare_secret_without_scheme",
			secret:        "cron-secret",
			authorization: "Basic cron-secret",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CRON_SECRET",
		},
		{
			name:          "partial_match_rejected",
			secret:        "cron-secret",
			authorization: "Bearer cron",
			wantStatus:    http.StatusUnauthorized,
			wantErrorCode: "INVALID_CRON_SECRET",
		},
		{
			name:          "not_configured",
			secret:        "",
			authorization: "Bearer anything",
			wantStatus:    http.StatusServiceUnavailable,
			wantErrorCode: "CRON_NOT_CONFIGURED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(setupRouter(CronAuthMiddleware(tt.secret)), tt.authorization)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				assertErrorCode(t, rec, tt.wantErrorCode)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

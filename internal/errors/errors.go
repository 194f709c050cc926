// Package errors provides custom error types for the Orbo API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized      = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden         = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrCronNotConfigured = &AppError{Code: "CRON_NOT_CONFIGURED", Message: "Scheduled endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidCronSecret = &AppError{Code: "INVALID_CRON_SECRET", Message: "Unauthorized", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Organization errors.
var (
	ErrOrganizationsUnavailable = &AppError{Code: "ORGANIZATIONS_UNAVAILABLE", Message: "Failed to fetch organizations", StatusCode: http.StatusInternalServerError}
	ErrOrganizationNotFound     = &AppError{Code: "ORGANIZATION_NOT_FOUND", Message: "Organization not found", StatusCode: http.StatusNotFound}
)

// Participant errors.
var (
	ErrParticipantNotFound = &AppError{Code: "PARTICIPANT_NOT_FOUND", Message: "Participant not found", StatusCode: http.StatusNotFound}
	ErrParticipantMerged   = &AppError{Code: "PARTICIPANT_MERGED", Message: "Participant has already been merged", StatusCode: http.StatusConflict}
	ErrSelfMerge           = &AppError{Code: "SELF_MERGE", Message: "A participant cannot be merged into itself", StatusCode: http.StatusBadRequest}
	ErrBackfillFailed      = &AppError{Code: "BACKFILL_FAILED", Message: "Failed to backfill participants", StatusCode: http.StatusInternalServerError}
)

// Telegram errors.
var (
	ErrGroupNotFound    = &AppError{Code: "GROUP_NOT_FOUND", Message: "Telegram group not found", StatusCode: http.StatusNotFound}
	ErrMigrationFailed  = &AppError{Code: "MIGRATION_FAILED", Message: "Chat migration failed", StatusCode: http.StatusInternalServerError}
	ErrMigrationUnknown = &AppError{Code: "MIGRATION_TARGET_UNKNOWN", Message: "New chat id could not be determined", StatusCode: http.StatusConflict}
	ErrTelegramDisabled = &AppError{Code: "TELEGRAM_NOT_CONFIGURED", Message: "Telegram bot token is not configured", StatusCode: http.StatusServiceUnavailable}
)

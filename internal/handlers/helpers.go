package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
	"orbo/internal/middleware"
	"orbo/internal/validator"
)

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parseTelegramID parses a chat or user id path parameter.
func parseTelegramID(c *gin.Context, param string) (int64, error) {
	id, ok := validator.ParseTelegramID(c.Param(param))
	if !ok {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError hands err to middleware.ErrorHandler, which renders the
// JSON error body.
func respondWithError(c *gin.Context, err error) {
	middleware.Fail(c, err)
}

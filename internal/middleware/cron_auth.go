package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
)

// CronAuthMiddleware guards scheduler-triggered endpoints with a shared
// secret sent as "Authorization: Bearer <secret>". An empty secret disables
// the endpoints entirely.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			Fail(c, apperrors.ErrCronNotConfigured)
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			Fail(c, apperrors.ErrInvalidCronSecret)
			return
		}
		c.Next()
	}
}


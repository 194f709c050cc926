package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "orbo/internal/errors"
	"orbo/internal/logger"
)

// Fail records err on the context and stops the chain. ErrorHandler renders
// it once the handlers return.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler renders the last error recorded with Fail as
// {"error": {"code", "message"}}. Non-AppErrors become INTERNAL_ERROR so
// details never reach the client; wrapped internals are logged with the
// request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := logger.Get().With(
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)

		appErr := apperrors.ErrInternalServer
		var target *apperrors.AppError
		if errors.As(err, &target) {
			appErr = target
			if appErr.Internal != nil {
				log.Errorw("request failed", "code", appErr.Code, "internal", appErr.Internal.Error())
			}
		} else {
			log.Errorw("unexpected error", "error", err.Error())
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}

package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "finloan/internal/errors"
)

// PipelineAuthMiddleware guards the scheduler-facing pipeline endpoints
// with a shared X-API-Key. An empty configured key disables them.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWith(c, apperrors.ErrPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWith(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/sponsorship-backoffice/internal/constants"
	"github.com/yukikurage/sponsorship-backoffice/internal/logger"
)

// RequestID reuses the caller's X-Request-ID or generates one. Must run
// before the logging middleware.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		c.Set(logger.RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Header(constants.HeaderRequestID, requestID)
		c.Next()
	}
}

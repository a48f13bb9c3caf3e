package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guildroster/roster_backend/utils"
	"github.com/sirupsen/logrus"
)

const correlationHeader = "x-correlation-id"

// CorrelationMiddleware attaches one id per request, taken from the header when given.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(correlationHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header(correlationHeader, cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	}
}

// RequestLogger writes one entry per request: debug for normal responses,
// error for gin errors and 5xx.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		entry := logger.WithFields(logrus.Fields{
			"method":         c.Request.Method,
			"path":           c.FullPath(),
			"status":         status,
			"latency_ms":     time.Since(start).Milliseconds(),
			"correlation_id": cid,
		})
		switch {
		case len(c.Errors) > 0:
			entry.Error(c.Errors.String())
		case status >= 500:
			entry.Error("request failed")
		default:
			entry.Debug("request")
		}
	}
}

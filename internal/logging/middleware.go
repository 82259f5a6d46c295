package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/constants"
)

// RequestLogger tags each request with a request id and logs it once when
// the handler chain completes.
func RequestLogger(entry *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(constants.HeaderRequestID, requestID)

		c.Next()

		fields := logrus.Fields{
			"request_id":  requestID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_ip":   c.ClientIP(),
		}
		if userID, ok := c.Get(constants.ContextKeyUserID); ok {
			fields["user_id"] = userID
		}

		logEntry := entry.WithFields(fields)
		if len(c.Errors) > 0 {
			logEntry.WithField("errors", c.Errors.String()).Error("request failed")
			return
		}
		logEntry.Info("request completed")
	}
}

// FromContext returns entry annotated with the request id of c, if any.
func FromContext(c *gin.Context, entry *logrus.Entry) *logrus.Entry {
	if id, ok := c.Get(constants.ContextKeyRequestID); ok {
		return entry.WithField("request_id", id)
	}
	return entry
}

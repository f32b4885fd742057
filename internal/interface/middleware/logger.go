package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one access-log line per request. Query strings and
// headers are left out so tokens never reach the log.
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.GetString(ctxRealIP),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(ctxRequestID),
			"panic":      recovered,
		}).Error("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": http.StatusText(http.StatusInternalServerError)})
	})
}

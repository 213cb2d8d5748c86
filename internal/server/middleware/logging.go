package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"leafscan/internal/logger"
)

// WithRequestLog logs one line per request.
func WithRequestLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
			"bytes":   c.Writer.Size(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields)
		default:
			log.Info("request", fields)
		}
	}
}

// WithRecovery turns panics into 500 responses and logs them.
func WithRecovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", logger.Fields{"path": c.Request.URL.Path, "panic": rec})
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"course-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// healthPaths are polled by orchestrators and only logged when they fail.
var healthPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// Logger writes one structured line per request. Domain failures recorded
// with c.Error are attached so 4xx lines carry the reason.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		if healthPaths[c.Request.URL.Path] && status < http.StatusInternalServerError {
			return
		}

		fields := logrus.Fields{
			"status_code": status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
			"route":       c.FullPath(),
			"request_id":  c.GetString("request_id"),
		}
		if principal, ok := GetPrincipal(c); ok {
			fields["user_id"] = principal.UserID
			fields["role"] = principal.Role
		}
		if key := c.GetString("idempotency_key"); key != "" {
			fields["idempotency_key"] = key
		}
		if len(c.Errors) > 0 {
			fields["error"] = strings.Join(c.Errors.Errors(), "; ")
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Request completed with server error")
		case status >= http.StatusBadRequest:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}
	}
}

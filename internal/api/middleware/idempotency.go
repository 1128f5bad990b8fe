package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"course-marketplace/internal/domain"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
)

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a request repeats a known
// Idempotency-Key. Requests without the header pass through untouched.
// Responses are stored unless the handler failed with a 5xx.
func Idempotency(svc serviceInterfaces.IdempotencyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || svc == nil {
			c.Next()
			return
		}
		c.Set("idempotency_key", key)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Message: "Invalid request format", Code: "invalid_body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		principalID := ""
		if principal, ok := GetPrincipal(c); ok {
			principalID = principal.UserID
		}
		requestData := string(body)

		record, duplicate, err := svc.CheckDuplicateRequest(c.Request.Context(), key, principalID, requestData)
		if err != nil {
			var de *domain.Error
			if errors.As(err, &de) && de.Kind == domain.KindConflict {
				abortWith(c, http.StatusConflict, de)
				return
			}
			// The store being down must not block registrations.
			logger.WithField("idempotency_key", key).Warnf("Idempotency check failed: %v", err)
			c.Next()
			return
		}
		if duplicate {
			c.Header(ReplayedHeader, "true")
			c.Data(record.StatusCode, "application/json; charset=utf-8", []byte(record.ResponseData))
			c.Abort()
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		if err := svc.StoreProcessedRequest(c.Request.Context(), key, principalID, requestData, writer.body.Bytes(), status); err != nil {
			logger.WithField("idempotency_key", key).Warnf("Failed to store idempotent response: %v", err)
		}
	}
}

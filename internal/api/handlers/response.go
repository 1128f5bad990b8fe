package handlers

import (
	"errors"
	"net/http"

	"course-marketplace/internal/domain"
	"course-marketplace/pkg/logger"
	"course-marketplace/pkg/validator"

	"github.com/gin-gonic/gin"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// StatusFor maps a domain error kind to an HTTP status code.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a failure envelope. Internal errors never leak
// their cause to the client.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("internal server error", err)
	}

	status := StatusFor(de.Kind)
	message := de.Message
	if status == http.StatusInternalServerError {
		logger.WithField("request_id", c.GetString("request_id")).Errorf("Request failed: %v", err)
		message = "internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
		Code:    de.Reason,
	})
}

// bindJSON binds and validates the request body. It writes the 400
// response itself and reports false on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Invalid request format",
			Code:    "invalid_body",
			Errors:  err.Error(),
		})
		return false
	}

	if err := validator.ValidateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Message: "Validation failed",
			Code:    "validation_failed",
			Errors:  validator.FormatValidationError(err),
		})
		return false
	}
	return true
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	"course-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func abortWith(c *gin.Context, status int, err *domain.Error) {
	c.AbortWithStatusJSON(status, errorBody{Success: false, Message: err.Message, Code: err.Reason})
}

// UserLookup loads the current record of a token subject.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate parses an optional Bearer token. A missing header leaves the
// request anonymous; a malformed or expired token is rejected. Role and
// status are taken from the stored user, not from the token claims.
func Authenticate(tokens interfaces.TokenService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, raw, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			abortWith(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}

		principal, err := tokens.ParseAccessToken(strings.TrimSpace(raw))
		if err != nil {
			abortWith(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}

		user, err := users.GetUser(c.Request.Context(), principal.UserID)
		if err != nil {
			if domain.KindOf(err) == domain.KindInternal {
				logger.Error("Failed to load user %s: %v", principal.UserID, err)
				abortWith(c, http.StatusInternalServerError, domain.Internal("failed to load user", err))
				return
			}
			abortWith(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}
		if user.Status != domain.StatusActive {
			abortWith(c, http.StatusForbidden, domain.ErrAccountInactive)
			return
		}

		c.Set(principalKey, &interfaces.Principal{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			abortWith(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWith(c, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}
		if principal.Role != domain.RoleAdmin {
			abortWith(c, http.StatusForbidden, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, if any.
func GetPrincipal(c *gin.Context) (*interfaces.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*interfaces.Principal)
	return principal, ok && principal != nil
}

// IsSelfOrAdmin reports whether the caller is the given user or an admin.
func IsSelfOrAdmin(c *gin.Context, userID string) bool {
	principal, ok := GetPrincipal(c)
	if !ok {
		return false
	}
	return principal.Role == domain.RoleAdmin || principal.UserID == userID
}

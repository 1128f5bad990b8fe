package interfaces

import (
	"time"

	"course-marketplace/internal/domain"
)

type PasswordHasher interface {
	Hash(password []byte) ([]byte, error)
	Compare(hash, password []byte) error
}

// Principal is the authenticated caller extracted from a token.
type Principal struct {
	UserID string
	Role   domain.Role
}

type TokenService interface {
	GenerateAccessToken(userID string, role domain.Role) (token string, expiresAt time.Time, err error)
	ParseAccessToken(token string) (*Principal, error)
}

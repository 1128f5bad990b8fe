package security

import (
	"errors"
	"testing"
	"time"

	"course-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("secret1"))
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", string(hash))

	assert.NoError(t, h.Compare(hash, []byte("secret1")))
	assert.Error(t, h.Compare(hash, []byte("secret2")))
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, "course-marketplace")
	id := domain.NewID()

	token, expiresAt, err := svc.GenerateAccessToken(id, domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	principal, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, principal.UserID)
	assert.Equal(t, domain.RoleAdmin, principal.Role)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour, "course-marketplace")
	verifier := NewJWTService("secret-b", time.Hour, "course-marketplace")

	token, _, err := issuer.GenerateAccessToken(domain.NewID(), domain.RoleStudent)
	require.NoError(t, err)

	_, err = verifier.ParseAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, "course-marketplace")

	token, _, err := svc.GenerateAccessToken(domain.NewID(), domain.RoleStudent)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

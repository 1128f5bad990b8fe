package interfaces

import (
	"context"
	"errors"
	"time"
)

var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

// IdempotencyRecord is a processed request stored under its Idempotency-Key.
type IdempotencyRecord struct {
	Key          string    `json:"key"`
	PrincipalID  string    `json:"principal_id"`
	RequestHash  string    `json:"request_hash"`
	ResponseData string    `json:"response_data"`
	StatusCode   int       `json:"status_code"`
	ProcessedAt  time.Time `json:"processed_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (r *IdempotencyRecord) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

type IdempotencyRepository interface {
	Create(ctx context.Context, record *IdempotencyRecord) error
	GetByKey(ctx context.Context, key string) (*IdempotencyRecord, error)
	Delete(ctx context.Context, key string) error
}

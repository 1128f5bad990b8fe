package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"
)

const (
	DefaultIdempotencyTTL = 24 * time.Hour
)

var ErrIdempotencyKeyReused = domain.Conflict("idempotency_key_reused", "idempotency key already used with different request data")

var _ serviceInterfaces.IdempotencyService = (*IdempotencyService)(nil)

type IdempotencyService struct {
	idempotencyRepo interfaces.IdempotencyRepository
	ttl             time.Duration
}

func NewIdempotencyService(idempotencyRepo interfaces.IdempotencyRepository, ttl time.Duration) *IdempotencyService {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyService{
		idempotencyRepo: idempotencyRepo,
		ttl:             ttl,
	}
}

// CheckDuplicateRequest reports a stored response for key. The same key with
// a different request body is a conflict.
func (s *IdempotencyService) CheckDuplicateRequest(ctx context.Context, key, principalID string, requestData any) (*interfaces.IdempotencyRecord, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	existingKey, err := s.idempotencyRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrIdempotencyKeyNotFound) {
			return nil, false, nil
		}
		logger.Error("Failed to check idempotency key: %v", err)
		return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	if existingKey.IsExpired() {
		if err := s.idempotencyRepo.Delete(ctx, key); err != nil {
			logger.Warn("Failed to delete expired idempotency key %s: %v", key, err)
		}
		return nil, false, nil
	}

	if existingKey.RequestHash != s.generateRequestHash(principalID, requestData) {
		logger.Warn("Idempotency key %s used with different request data", key)
		return nil, false, ErrIdempotencyKeyReused
	}

	logger.Info("Duplicate request detected for idempotency key: %s", key)
	return existingKey, true, nil
}

func (s *IdempotencyService) StoreProcessedRequest(ctx context.Context, key, principalID string, requestData any, responseData []byte, statusCode int) error {
	if key == "" {
		return nil
	}

	now := time.Now()
	record := &interfaces.IdempotencyRecord{
		Key:          key,
		PrincipalID:  principalID,
		RequestHash:  s.generateRequestHash(principalID, requestData),
		ResponseData: string(responseData),
		StatusCode:   statusCode,
		ProcessedAt:  now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.idempotencyRepo.Create(ctx, record); err != nil {
		logger.Error("Failed to store idempotency key %s: %v", key, err)
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	logger.Info("Stored idempotency key: %s", key)
	return nil
}

func (s *IdempotencyService) generateRequestHash(principalID string, requestData any) string {
	data := map[string]any{
		"principal_id": principalID,
		"request_data": requestData,
	}

	jsonData, _ := json.Marshal(data)
	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:])
}

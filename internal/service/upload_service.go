package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"

	"github.com/google/uuid"
)

var _ serviceInterfaces.UploadService = (*UploadService)(nil)

type UploadService struct {
	storage interfaces.ObjectStorage
}

// NewUploadService accepts a nil storage; uploads then fail with a
// precondition error.
func NewUploadService(storage interfaces.ObjectStorage) *UploadService {
	return &UploadService{storage: storage}
}

// UploadImage stores an image under a random name and returns its public URL.
func (s *UploadService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.ErrUnsupportedMedia
	}
	if s.storage == nil {
		return "", domain.ErrStorageUnavailable
	}

	objectPath := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	url, err := s.storage.Upload(ctx, objectPath, body, contentType)
	if err != nil {
		logger.Error("Failed to upload %s: %v", filename, err)
		return "", domain.Internal("failed to upload image", err)
	}

	logger.Info("Uploaded image %s", objectPath)
	return url, nil
}

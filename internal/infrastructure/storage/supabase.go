package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	interfaces "course-marketplace/internal/interfaces/infrastructure"

	storage "github.com/supabase-community/storage-go"
)

type SupabaseConfig struct {
	URL    string
	Key    string
	Bucket string
	Folder string
}

// SupabaseStorage uploads blobs to a public Supabase bucket.
type SupabaseStorage struct {
	client  *storage.Client
	baseURL string
	bucket  string
	folder  string
}

func NewSupabaseStorage(cfg SupabaseConfig) (*SupabaseStorage, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	baseURL := strings.TrimRight(cfg.URL, "/")
	return &SupabaseStorage{
		client:  storage.NewClient(baseURL+"/storage/v1", cfg.Key, nil),
		baseURL: baseURL,
		bucket:  cfg.Bucket,
		folder:  cfg.Folder,
	}, nil
}

// Upload stores body under <folder>/<objectPath> and returns its public URL.
func (s *SupabaseStorage) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fullPath := path.Join(s.folder, objectPath)
	opts := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := s.client.UploadFile(s.bucket, fullPath, body, opts); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fullPath, err)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, fullPath), nil
}

var _ interfaces.ObjectStorage = (*SupabaseStorage)(nil)

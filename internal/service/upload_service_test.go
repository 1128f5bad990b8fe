package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"course-marketplace/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string]string
	err     error
}

func (s *memoryStorage) Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[objectPath] = string(data)
	return "https://cdn.example.com/" + objectPath, nil
}

func TestUploadImage(t *testing.T) {
	storage := &memoryStorage{objects: map[string]string{}}
	svc := NewUploadService(storage)

	url, err := svc.UploadImage(context.Background(), "Avatar.PNG", "image/png", strings.NewReader("pixels"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	require.Len(t, storage.objects, 1)
	for _, data := range storage.objects {
		assert.Equal(t, "pixels", data)
	}
}

func TestUploadImage_Rejections(t *testing.T) {
	ctx := context.Background()

	_, err := NewUploadService(&memoryStorage{objects: map[string]string{}}).
		UploadImage(ctx, "notes.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedMedia)

	_, err = NewUploadService(nil).UploadImage(ctx, "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	_, err = NewUploadService(&memoryStorage{err: errors.New("bucket gone")}).
		UploadImage(ctx, "a.png", "image/png", strings.NewReader("x"))
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

package interfaces

import (
	"context"
	"io"

	"course-marketplace/internal/domain"
)

// ObjectStorage stores a blob and returns its public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, body io.Reader, contentType string) (string, error)
}

// RosterExporter renders the registrations of a course as a document.
type RosterExporter interface {
	ContentType() string
	Extension() string
	Export(course *domain.Course, rows []*domain.RegistrationWithStudent) ([]byte, error)
}

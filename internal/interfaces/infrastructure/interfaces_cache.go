package interfaces

import (
	"context"
	"errors"
	"time"

	"course-marketplace/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// CourseCache keeps read-through copies of course documents. Any write that
// changes a course, occupancy included, must invalidate its entry.
type CourseCache interface {
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	SetCourse(ctx context.Context, course *domain.Course, ttl time.Duration) error
	InvalidateCourse(ctx context.Context, ids ...string) error
	Health(ctx context.Context) error
	Close() error
}

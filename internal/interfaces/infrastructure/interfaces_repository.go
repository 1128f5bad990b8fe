package interfaces

import (
	"context"
	"errors"

	"course-marketplace/internal/domain"
)

// ErrDuplicateKey is returned by Create and UpdateByID when a unique index
// rejects the write.
var ErrDuplicateKey = errors.New("duplicate key")

// Lookups return (nil, nil) when no record matches. Find results are
// ordered newest-first by creation time.

type UserFilter struct {
	IDs       []string
	Email     string
	Role      domain.Role
	Status    domain.Status
	ExcludeID string
}

type CourseFilter struct {
	IDs      []string
	Creator  *domain.CreatorRef
	Category domain.Category
	Status   domain.Status
}

type InstructorFilter struct {
	UserID   string
	WorkArea string
	Status   domain.Status
}

type SchoolFilter struct {
	OwnerID string
	Status  domain.Status
}

type RegistrationFilter struct {
	StudentID string
	CourseID  string
	Status    domain.RegistrationStatus
	// HoldingSeat restricts to registrations that occupy a seat.
	HoldingSeat bool
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	Find(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, filter UserFilter) (bool, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	FindOne(ctx context.Context, filter CourseFilter) (*domain.Course, error)
	Find(ctx context.Context, filter CourseFilter) ([]*domain.Course, error)
	Create(ctx context.Context, course *domain.Course) error
	UpdateByID(ctx context.Context, id string, update domain.CourseUpdate) (*domain.Course, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	Exists(ctx context.Context, filter CourseFilter) (bool, error)
	Count(ctx context.Context, filter CourseFilter) (int64, error)

	// ReserveSeat increments current_participants iff the course is active
	// and below its capacity. It reports false when the condition fails.
	ReserveSeat(ctx context.Context, id string) (bool, error)
	// ReleaseSeat decrements current_participants iff it is positive.
	ReleaseSeat(ctx context.Context, id string) (bool, error)
	// SetCapacity writes max_participants iff current_participants does not
	// exceed it. It reports false when the course is missing or the
	// condition fails.
	SetCapacity(ctx context.Context, id string, capacity int) (bool, error)
}

type InstructorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Instructor, error)
	FindOne(ctx context.Context, filter InstructorFilter) (*domain.Instructor, error)
	Find(ctx context.Context, filter InstructorFilter) ([]*domain.Instructor, error)
	Create(ctx context.Context, instructor *domain.Instructor) error
	UpdateByID(ctx context.Context, id string, update domain.InstructorUpdate) (*domain.Instructor, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, filter InstructorFilter) (bool, error)
}

type SchoolRepository interface {
	GetByID(ctx context.Context, id string) (*domain.School, error)
	FindOne(ctx context.Context, filter SchoolFilter) (*domain.School, error)
	Find(ctx context.Context, filter SchoolFilter) ([]*domain.School, error)
	Create(ctx context.Context, school *domain.School) error
	UpdateByID(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Exists(ctx context.Context, filter SchoolFilter) (bool, error)
}

type RegistrationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	FindOne(ctx context.Context, filter RegistrationFilter) (*domain.Registration, error)
	Find(ctx context.Context, filter RegistrationFilter) ([]*domain.Registration, error)
	Create(ctx context.Context, registration *domain.Registration) error
	Exists(ctx context.Context, filter RegistrationFilter) (bool, error)
	Count(ctx context.Context, filter RegistrationFilter) (int64, error)

	// UpdateStatus moves the registration from one status to another. It
	// returns nil when no registration with that id is in status from.
	UpdateStatus(ctx context.Context, id string, from, to domain.RegistrationStatus) (*domain.Registration, error)
	// DeleteByID removes the registration iff it is still in status. It
	// reports false when nothing matched.
	DeleteByID(ctx context.Context, id string, status domain.RegistrationStatus) (bool, error)
}

// Gateway bundles the repositories of one backend.
type Gateway interface {
	Users() UserRepository
	Courses() CourseRepository
	Instructors() InstructorRepository
	Schools() SchoolRepository
	Registrations() RegistrationRepository

	// WithTransaction runs fn against a gateway bound to one transaction.
	// The ctx passed to fn must be used for every call made through tx.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Gateway) error) error
	// Transactional reports whether WithTransaction rolls back on error.
	Transactional() bool

	Ping(ctx context.Context) error
	Close() error
}

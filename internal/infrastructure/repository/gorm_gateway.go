package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

var _ interfaces.Gateway = (*GormGateway)(nil)

// GormGateway implements the gateway on a relational database through GORM.
type GormGateway struct {
	db *gorm.DB
}

func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{db: db}
}

func (g *GormGateway) Users() interfaces.UserRepository {
	return NewUserRepository(g.db)
}

func (g *GormGateway) Courses() interfaces.CourseRepository {
	return NewCourseRepository(g.db)
}

func (g *GormGateway) Instructors() interfaces.InstructorRepository {
	return NewInstructorRepository(g.db)
}

func (g *GormGateway) Schools() interfaces.SchoolRepository {
	return NewSchoolRepository(g.db)
}

func (g *GormGateway) Registrations() interfaces.RegistrationRepository {
	return NewRegistrationRepository(g.db)
}

func (g *GormGateway) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormGateway{db: tx})
	})
}

func (g *GormGateway) Transactional() bool { return true }

func (g *GormGateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (g *GormGateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const newestFirstOrder = "created_at DESC, id DESC"

// translateError maps driver-specific unique violations to ErrDuplicateKey.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", interfaces.ErrDuplicateKey, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", interfaces.ErrDuplicateKey, err)
	}
	return err
}

// first runs q.First and folds ErrRecordNotFound into a nil result.
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// RegistrationRepository implements RegistrationRepository using GORM
type RegistrationRepository struct {
	db *gorm.DB
}

// NewRegistrationRepository creates a new GORM registration repository
func NewRegistrationRepository(db *gorm.DB) interfaces.RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

func applyRegistrationFilter(q *gorm.DB, f interfaces.RegistrationFilter) *gorm.DB {
	if f.StudentID != "" {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.CourseID != "" {
		q = q.Where("course_id = ?", f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.HoldingSeat {
		q = q.Where("status <> ?", domain.RegistrationCancelled)
	}
	return q
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	return first[domain.Registration](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *RegistrationRepository) FindOne(ctx context.Context, filter interfaces.RegistrationFilter) (*domain.Registration, error) {
	q := applyRegistrationFilter(r.db.WithContext(ctx).Model(&domain.Registration{}), filter)
	return first[domain.Registration](q.Order(newestFirstOrder))
}

// Find retrieves registrations newest-first
func (r *RegistrationRepository) Find(ctx context.Context, filter interfaces.RegistrationFilter) ([]*domain.Registration, error) {
	var registrations []*domain.Registration
	q := applyRegistrationFilter(r.db.WithContext(ctx).Model(&domain.Registration{}), filter)
	if err := q.Order(newestFirstOrder).Find(&registrations).Error; err != nil {
		return nil, err
	}
	return registrations, nil
}

// Create inserts a registration; the (student_id, course_id) unique index
// rejects duplicates.
func (r *RegistrationRepository) Create(ctx context.Context, registration *domain.Registration) error {
	return translateError(r.db.WithContext(ctx).Create(registration).Error)
}

// UpdateStatus is a conditional UPDATE; a concurrent writer holding the row
// makes it re-check the status predicate once that writer commits.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RegistrationStatus) (*domain.Registration, error) {
	res := r.db.WithContext(ctx).Model(&domain.Registration{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *RegistrationRepository) DeleteByID(ctx context.Context, id string, status domain.RegistrationStatus) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND status = ?", id, status).Delete(&domain.Registration{})
	return res.RowsAffected > 0, res.Error
}

func (r *RegistrationRepository) Exists(ctx context.Context, filter interfaces.RegistrationFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *RegistrationRepository) Count(ctx context.Context, filter interfaces.RegistrationFilter) (int64, error) {
	var n int64
	err := applyRegistrationFilter(r.db.WithContext(ctx).Model(&domain.Registration{}), filter).Count(&n).Error
	return n, err
}

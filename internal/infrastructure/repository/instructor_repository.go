package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// InstructorRepository implements InstructorRepository using GORM
type InstructorRepository struct {
	db *gorm.DB
}

func NewInstructorRepository(db *gorm.DB) interfaces.InstructorRepository {
	return &InstructorRepository{db: db}
}

func applyInstructorFilter(q *gorm.DB, f interfaces.InstructorFilter) *gorm.DB {
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.WorkArea != "" {
		q = q.Where("work_area = ?", f.WorkArea)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *InstructorRepository) GetByID(ctx context.Context, id string) (*domain.Instructor, error) {
	return first[domain.Instructor](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *InstructorRepository) FindOne(ctx context.Context, filter interfaces.InstructorFilter) (*domain.Instructor, error) {
	q := applyInstructorFilter(r.db.WithContext(ctx).Model(&domain.Instructor{}), filter)
	return first[domain.Instructor](q.Order(newestFirstOrder))
}

func (r *InstructorRepository) Find(ctx context.Context, filter interfaces.InstructorFilter) ([]*domain.Instructor, error) {
	var instructors []*domain.Instructor
	q := applyInstructorFilter(r.db.WithContext(ctx).Model(&domain.Instructor{}), filter)
	if err := q.Order(newestFirstOrder).Find(&instructors).Error; err != nil {
		return nil, err
	}
	return instructors, nil
}

func (r *InstructorRepository) Create(ctx context.Context, instructor *domain.Instructor) error {
	return translateError(r.db.WithContext(ctx).Create(instructor).Error)
}

func (r *InstructorRepository) UpdateByID(ctx context.Context, id string, update domain.InstructorUpdate) (*domain.Instructor, error) {
	fields := update.Fields()
	fields["updated_at"] = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&domain.Instructor{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *InstructorRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Instructor{})
	return res.RowsAffected > 0, res.Error
}

func (r *InstructorRepository) Exists(ctx context.Context, filter interfaces.InstructorFilter) (bool, error) {
	var n int64
	err := applyInstructorFilter(r.db.WithContext(ctx).Model(&domain.Instructor{}), filter).Count(&n).Error
	return n > 0, err
}

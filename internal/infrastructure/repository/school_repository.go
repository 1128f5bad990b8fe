package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// SchoolRepository implements SchoolRepository using GORM
type SchoolRepository struct {
	db *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) interfaces.SchoolRepository {
	return &SchoolRepository{db: db}
}

func applySchoolFilter(q *gorm.DB, f interfaces.SchoolFilter) *gorm.DB {
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *SchoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	return first[domain.School](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *SchoolRepository) FindOne(ctx context.Context, filter interfaces.SchoolFilter) (*domain.School, error) {
	q := applySchoolFilter(r.db.WithContext(ctx).Model(&domain.School{}), filter)
	return first[domain.School](q.Order(newestFirstOrder))
}

func (r *SchoolRepository) Find(ctx context.Context, filter interfaces.SchoolFilter) ([]*domain.School, error) {
	var schools []*domain.School
	q := applySchoolFilter(r.db.WithContext(ctx).Model(&domain.School{}), filter)
	if err := q.Order(newestFirstOrder).Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *SchoolRepository) Create(ctx context.Context, school *domain.School) error {
	return translateError(r.db.WithContext(ctx).Create(school).Error)
}

func (r *SchoolRepository) UpdateByID(ctx context.Context, id string, update domain.SchoolUpdate) (*domain.School, error) {
	fields := update.Fields()
	fields["updated_at"] = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&domain.School{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *SchoolRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.School{})
	return res.RowsAffected > 0, res.Error
}

func (r *SchoolRepository) Exists(ctx context.Context, filter interfaces.SchoolFilter) (bool, error) {
	var n int64
	err := applySchoolFilter(r.db.WithContext(ctx).Model(&domain.School{}), filter).Count(&n).Error
	return n > 0, err
}

package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// UserRepository implements UserRepository using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) interfaces.UserRepository {
	return &UserRepository{db: db}
}

func applyUserFilter(q *gorm.DB, f interfaces.UserFilter) *gorm.DB {
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ExcludeID != "" {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	return q
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return first[domain.User](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *UserRepository) FindOne(ctx context.Context, filter interfaces.UserFilter) (*domain.User, error) {
	q := applyUserFilter(r.db.WithContext(ctx).Model(&domain.User{}), filter)
	return first[domain.User](q.Order(newestFirstOrder))
}

func (r *UserRepository) Find(ctx context.Context, filter interfaces.UserFilter) ([]*domain.User, error) {
	var users []*domain.User
	q := applyUserFilter(r.db.WithContext(ctx).Model(&domain.User{}), filter)
	if err := q.Order(newestFirstOrder).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	fields := update.Fields()
	fields["updated_at"] = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) Exists(ctx context.Context, filter interfaces.UserFilter) (bool, error) {
	var n int64
	err := applyUserFilter(r.db.WithContext(ctx).Model(&domain.User{}), filter).Count(&n).Error
	return n > 0, err
}

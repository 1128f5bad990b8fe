package repository

import (
	"context"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"gorm.io/gorm"
)

// CourseRepository implements CourseRepository using GORM
type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) interfaces.CourseRepository {
	return &CourseRepository{db: db}
}

func applyCourseFilter(q *gorm.DB, f interfaces.CourseFilter) *gorm.DB {
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.Creator != nil {
		q = q.Where("creator_id = ? AND creator_type = ?", f.Creator.ID, f.Creator.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	return first[domain.Course](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *CourseRepository) FindOne(ctx context.Context, filter interfaces.CourseFilter) (*domain.Course, error) {
	q := applyCourseFilter(r.db.WithContext(ctx).Model(&domain.Course{}), filter)
	return first[domain.Course](q.Order(newestFirstOrder))
}

func (r *CourseRepository) Find(ctx context.Context, filter interfaces.CourseFilter) ([]*domain.Course, error) {
	var courses []*domain.Course
	q := applyCourseFilter(r.db.WithContext(ctx).Model(&domain.Course{}), filter)
	if err := q.Order(newestFirstOrder).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	return translateError(r.db.WithContext(ctx).Create(course).Error)
}

func (r *CourseRepository) UpdateByID(ctx context.Context, id string, update domain.CourseUpdate) (*domain.Course, error) {
	fields := update.Fields()
	fields["updated_at"] = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Course{})
	return res.RowsAffected > 0, res.Error
}

func (r *CourseRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&domain.Course{})
	return res.RowsAffected, res.Error
}

func (r *CourseRepository) Exists(ctx context.Context, filter interfaces.CourseFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *CourseRepository) Count(ctx context.Context, filter interfaces.CourseFilter) (int64, error) {
	var n int64
	err := applyCourseFilter(r.db.WithContext(ctx).Model(&domain.Course{}), filter).Count(&n).Error
	return n, err
}

// ReserveSeat is a single conditional UPDATE; the row lock taken by the
// update serializes concurrent reservations on the same course.
func (r *CourseRepository) ReserveSeat(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Course{}).
		Where("id = ? AND status = ?", id, domain.StatusActive).
		Where("(max_participants IS NULL OR current_participants < max_participants)").
		Updates(map[string]any{
			"current_participants": gorm.Expr("current_participants + ?", 1),
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CourseRepository) ReleaseSeat(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Course{}).
		Where("id = ? AND current_participants > 0", id).
		Updates(map[string]any{
			"current_participants": gorm.Expr("current_participants - ?", 1),
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CourseRepository) SetCapacity(ctx context.Context, id string, capacity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Course{}).
		Where("id = ? AND current_participants <= ?", id, capacity).
		Updates(map[string]any{"max_participants": capacity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

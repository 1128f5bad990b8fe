package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"

	"github.com/go-redis/redis/v8"
)

const courseKeyPrefix = "course:details:"

// NewRedisClient opens the shared Redis connection used by the course cache
// and the idempotency store.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{
		client: client,
	}
}

func courseKey(id string) string {
	return courseKeyPrefix + id
}

func (r *RedisCache) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	val, err := r.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get course details: %w", err)
	}

	var course domain.Course
	if err := json.Unmarshal(val, &course); err != nil {
		return nil, fmt.Errorf("failed to unmarshal course details: %w", err)
	}

	return &course, nil
}

func (r *RedisCache) SetCourse(ctx context.Context, course *domain.Course, ttl time.Duration) error {
	jsonData, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("failed to marshal course details: %w", err)
	}

	err = r.client.Set(ctx, courseKey(course.ID), jsonData, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set course details: %w", err)
	}

	return nil
}

func (r *RedisCache) InvalidateCourse(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = courseKey(id)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete course keys: %w", err)
	}

	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ interfaces.CourseCache = (*RedisCache)(nil)

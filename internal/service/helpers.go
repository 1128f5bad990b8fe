package service

import (
	"context"
	"strings"
	"time"

	interfaces "course-marketplace/internal/interfaces/infrastructure"
	"course-marketplace/pkg/logger"
)

// publish emits an event after the write it describes has committed. A
// failed publish is logged and never fails the request.
func publish(ctx context.Context, publisher interfaces.EventPublisher, topic string, event any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn("Failed to publish %s: %v", topic, err)
	}
}

func invalidateCourses(ctx context.Context, cache interfaces.CourseCache, ids ...string) {
	if cache == nil || len(ids) == 0 {
		return
	}
	if err := cache.InvalidateCourse(ctx, ids...); err != nil {
		logger.Warn("Failed to invalidate cached courses %v: %v", ids, err)
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

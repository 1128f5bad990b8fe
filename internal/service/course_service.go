package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"
)

const CourseDetailsTTL = 2 * time.Minute

var _ serviceInterfaces.CourseService = (*CourseService)(nil)

type CourseService struct {
	gateway     interfaces.Gateway
	publisher   interfaces.EventPublisher
	courseCache interfaces.CourseCache
}

func NewCourseService(gateway interfaces.Gateway, publisher interfaces.EventPublisher, courseCache interfaces.CourseCache) *CourseService {
	return &CourseService{
		gateway:     gateway,
		publisher:   publisher,
		courseCache: courseCache,
	}
}

func validateCourseRequest(req *domain.CreateCourseRequest) error {
	if req == nil || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" ||
		req.Price == nil || req.Category == "" || strings.TrimSpace(req.TargetAudience) == "" ||
		req.Creator.ID == "" || req.Creator.Type == "" {
		return domain.ErrMissingFields
	}
	if *req.Price < 0 {
		return domain.ErrInvalidPrice
	}
	if !req.Category.Valid() {
		return domain.ErrInvalidCategory
	}
	if !req.Creator.Type.Valid() {
		return domain.ErrInvalidCreatorType
	}
	if !domain.IsValidID(req.Creator.ID) {
		return domain.ErrInvalidID
	}
	if req.MaxParticipants != nil && *req.MaxParticipants < 1 {
		return domain.ErrInvalidCapacity
	}
	if req.Status != "" && !req.Status.Valid() {
		return domain.ErrInvalidState
	}
	return nil
}

// checkCreator resolves the creator profile and requires it to be active.
func (s *CourseService) checkCreator(ctx context.Context, creator domain.CreatorRef) error {
	var status domain.Status
	switch creator.Type {
	case domain.CreatorInstructor:
		instructor, err := s.gateway.Instructors().GetByID(ctx, creator.ID)
		if err != nil {
			return domain.Internal("failed to get instructor", err)
		}
		if instructor == nil {
			return domain.ErrInstructorNotFound
		}
		status = instructor.Status
	case domain.CreatorSchool:
		school, err := s.gateway.Schools().GetByID(ctx, creator.ID)
		if err != nil {
			return domain.Internal("failed to get school", err)
		}
		if school == nil {
			return domain.ErrSchoolNotFound
		}
		status = school.Status
	default:
		return domain.ErrInvalidCreatorType
	}

	if status != domain.StatusActive {
		return domain.ErrCreatorInactive
	}
	return nil
}

func (s *CourseService) CreateCourse(ctx context.Context, req *domain.CreateCourseRequest) (*domain.Course, error) {
	if err := validateCourseRequest(req); err != nil {
		return nil, err
	}
	logger.Info("Creating course %q for %s %s", req.Title, req.Creator.Type, req.Creator.ID)

	if err := s.checkCreator(ctx, req.Creator); err != nil {
		return nil, err
	}

	course := domain.NewCourse(req)
	if err := s.gateway.Courses().Create(ctx, course); err != nil {
		logger.Error("Failed to create course: %v", err)
		return nil, domain.Internal("failed to create course", err)
	}

	logger.Info("Course created successfully with ID: %s", course.ID)
	return course, nil
}

// GetCourse reads through the course cache when one is configured.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	if s.courseCache != nil {
		cached, err := s.courseCache.GetCourse(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			logger.Warn("Course cache read failed for %s: %v", id, err)
		}
	}

	course, err := s.gateway.Courses().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get course", err)
	}
	if course == nil {
		return nil, domain.ErrCourseNotFound
	}

	if s.courseCache != nil {
		if err := s.courseCache.SetCourse(ctx, course, CourseDetailsTTL); err != nil {
			logger.Warn("Failed to cache course %s: %v", id, err)
		}
	}
	return course, nil
}

func (s *CourseService) ListCourses(ctx context.Context, query serviceInterfaces.CourseQuery) ([]*domain.Course, error) {
	filter := interfaces.CourseFilter{}

	if query.Category != "" {
		if !query.Category.Valid() {
			return nil, domain.ErrInvalidCategory
		}
		filter.Category = query.Category
	}
	if query.Status != "" {
		if !query.Status.Valid() {
			return nil, domain.ErrInvalidState
		}
		filter.Status = query.Status
	}
	if query.CreatorID != "" || query.CreatorType != "" {
		if !domain.IsValidID(query.CreatorID) {
			return nil, domain.ErrInvalidID
		}
		if !query.CreatorType.Valid() {
			return nil, domain.ErrInvalidCreatorType
		}
		filter.Creator = &domain.CreatorRef{ID: query.CreatorID, Type: query.CreatorType}
	}

	courses, err := s.gateway.Courses().Find(ctx, filter)
	if err != nil {
		return nil, domain.Internal("failed to list courses", err)
	}
	return courses, nil
}

// UpdateCourse ignores id, creator, slug and current participants.
func (s *CourseService) UpdateCourse(ctx context.Context, id string, req *domain.UpdateCourseRequest) (*domain.Course, error) {
	logger.Info("Updating course with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if req == nil || req.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	update := domain.CourseUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Category:        req.Category,
		TargetAudience:  req.TargetAudience,
		Image:           req.Image,
		Status:          req.Status,
		MaxParticipants: req.MaxParticipants,
	}

	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, domain.ErrMissingFields
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if update.Category != nil && !update.Category.Valid() {
		return nil, domain.ErrInvalidCategory
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, domain.ErrInvalidState
	}
	if update.MaxParticipants != nil && *update.MaxParticipants < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	current, err := s.gateway.Courses().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get course", err)
	}
	if current == nil {
		return nil, domain.ErrCourseNotFound
	}
	if update.IsEmpty() {
		return current, nil
	}

	var updated *domain.Course
	err = s.gateway.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
		rest := update
		if update.MaxParticipants != nil {
			// conditional on the live counter, not on the read above
			ok, err := tx.Courses().SetCapacity(ctx, id, *update.MaxParticipants)
			if err != nil {
				return domain.Internal("failed to update capacity", err)
			}
			if !ok {
				if c, err := tx.Courses().GetByID(ctx, id); err == nil && c == nil {
					return domain.ErrCourseNotFound
				}
				return domain.ErrCapacityBelowOccupancy
			}
			rest.MaxParticipants = nil
		}

		var err error
		if rest.IsEmpty() {
			updated, err = tx.Courses().GetByID(ctx, id)
		} else {
			updated, err = tx.Courses().UpdateByID(ctx, id, rest)
		}
		if err != nil {
			return domain.Internal("failed to update course", err)
		}
		if updated == nil {
			return domain.ErrCourseNotFound
		}
		return nil
	})
	if err != nil {
		logger.Warn("Course %s not updated: %v", id, err)
		return nil, err
	}

	invalidateCourses(ctx, s.courseCache, id)
	return updated, nil
}

// DeleteCourse deactivates a course that still has registrations.
func (s *CourseService) DeleteCourse(ctx context.Context, id string) (*domain.DeleteResult, error) {
	logger.Info("Deleting course with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	course, err := s.gateway.Courses().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get course", err)
	}
	if course == nil {
		return nil, domain.ErrCourseNotFound
	}

	hasRegistrations, err := s.gateway.Registrations().Exists(ctx, interfaces.RegistrationFilter{CourseID: id})
	if err != nil {
		return nil, domain.Internal("failed to check course registrations", err)
	}

	defer invalidateCourses(ctx, s.courseCache, id)

	if hasRegistrations {
		inactive := domain.StatusInactive
		if _, err := s.gateway.Courses().UpdateByID(ctx, id, domain.CourseUpdate{Status: &inactive}); err != nil {
			return nil, domain.Internal("failed to deactivate course", err)
		}
		logger.Info("Course %s has registrations, deactivated instead of deleted", id)
		return domain.Deactivated(id, "course has registrations"), nil
	}

	if _, err := s.gateway.Courses().DeleteByID(ctx, id); err != nil {
		return nil, domain.Internal("failed to delete course", err)
	}
	return domain.Removed(id), nil
}

// ResetCourses replaces the whole catalogue. Every entry is validated before
// anything is removed; creator profiles are not resolved so fixtures can be
// loaded into an empty database.
func (s *CourseService) ResetCourses(ctx context.Context, reqs []*domain.CreateCourseRequest) ([]*domain.Course, error) {
	logger.Info("Resetting course catalogue with %d courses", len(reqs))

	courses := make([]*domain.Course, 0, len(reqs))
	for _, req := range reqs {
		if err := validateCourseRequest(req); err != nil {
			return nil, err
		}
		courses = append(courses, domain.NewCourse(req))
	}

	previous, err := s.gateway.Courses().Find(ctx, interfaces.CourseFilter{})
	if err != nil {
		return nil, domain.Internal("failed to list courses", err)
	}

	err = s.gateway.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
		removed, err := tx.Courses().DeleteAll(ctx)
		if err != nil {
			return domain.Internal("failed to delete courses", err)
		}
		logger.Info("Removed %d courses", removed)

		for _, course := range courses {
			if err := tx.Courses().Create(ctx, course); err != nil {
				return domain.Internal("failed to insert course", err)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to reset courses: %v", err)
		return nil, err
	}

	ids := make([]string, 0, len(previous))
	for _, c := range previous {
		ids = append(ids, c.ID)
	}
	invalidateCourses(ctx, s.courseCache, ids...)

	return courses, nil
}

// ReconcileOccupancy recounts the seats held on every course and rewrites
// counters that drifted.
func (s *CourseService) ReconcileOccupancy(ctx context.Context) (*serviceInterfaces.ReconcileReport, error) {
	courses, err := s.gateway.Courses().Find(ctx, interfaces.CourseFilter{})
	if err != nil {
		return nil, domain.Internal("failed to list courses", err)
	}

	report := &serviceInterfaces.ReconcileReport{Corrected: []domain.OccupancyEvent{}}
	for _, course := range courses {
		held, err := s.gateway.Registrations().Count(ctx, interfaces.RegistrationFilter{
			CourseID:    course.ID,
			HoldingSeat: true,
		})
		if err != nil {
			return nil, domain.Internal("failed to count registrations", err)
		}
		report.Checked++

		if int(held) == course.CurrentParticipants {
			continue
		}

		count := int(held)
		if _, err := s.gateway.Courses().UpdateByID(ctx, course.ID, domain.CourseUpdate{CurrentParticipants: &count}); err != nil {
			return nil, domain.Internal("failed to correct occupancy", err)
		}

		event := domain.OccupancyEvent{
			CourseID:   course.ID,
			Previous:   course.CurrentParticipants,
			Current:    count,
			OccurredAt: time.Now().UTC(),
		}
		report.Corrected = append(report.Corrected, event)

		logger.Warn("Corrected occupancy of course %s from %d to %d", course.ID, course.CurrentParticipants, count)
		invalidateCourses(ctx, s.courseCache, course.ID)
		publish(ctx, s.publisher, domain.TopicCourseOccupancyCorrected, event)
	}

	return report, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"
)

var _ serviceInterfaces.RegistrationService = (*RegistrationService)(nil)

type RegistrationService struct {
	gateway     interfaces.Gateway
	publisher   interfaces.EventPublisher
	exporter    interfaces.RosterExporter
	courseCache interfaces.CourseCache
}

// NewRegistrationService builds the admission workflow. publisher, exporter
// and courseCache may be nil.
func NewRegistrationService(
	gateway interfaces.Gateway,
	publisher interfaces.EventPublisher,
	exporter interfaces.RosterExporter,
	courseCache interfaces.CourseCache,
) *RegistrationService {
	return &RegistrationService{
		gateway:     gateway,
		publisher:   publisher,
		exporter:    exporter,
		courseCache: courseCache,
	}
}

// CreateRegistration admits a student to a course. Checks run in a fixed
// order and the first failure wins; the seat is then taken with a single
// conditional write so concurrent requests cannot overshoot capacity.
func (s *RegistrationService) CreateRegistration(ctx context.Context, studentID, courseID string) (*domain.Registration, error) {
	logger.Info("Processing registration for student %s on course %s", studentID, courseID)

	if studentID == "" || courseID == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.IsValidID(studentID) || !domain.IsValidID(courseID) {
		return nil, domain.ErrInvalidID
	}

	student, err := s.gateway.Users().GetByID(ctx, studentID)
	if err != nil {
		logger.Error("Failed to get student %s: %v", studentID, err)
		return nil, domain.Internal("failed to get user", err)
	}
	if student == nil {
		return nil, domain.ErrUserNotFound
	}

	course, err := s.gateway.Courses().GetByID(ctx, courseID)
	if err != nil {
		logger.Error("Failed to get course %s: %v", courseID, err)
		return nil, domain.Internal("failed to get course", err)
	}
	if course == nil {
		return nil, domain.ErrCourseNotFound
	}

	registered, err := s.gateway.Registrations().Exists(ctx, interfaces.RegistrationFilter{
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		return nil, domain.Internal("failed to check existing registration", err)
	}
	if registered {
		return nil, domain.ErrDuplicateRegistration
	}

	if !course.IsActive() {
		return nil, domain.ErrCourseInactive
	}
	if !course.HasCapacity() {
		return nil, domain.ErrCourseFull
	}

	registration := domain.NewRegistration(studentID, courseID)

	err = s.gateway.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
		if err := reserveSeat(ctx, tx, courseID); err != nil {
			return err
		}

		if err := tx.Registrations().Create(ctx, registration); err != nil {
			if !tx.Transactional() {
				releaseSeat(ctx, tx, courseID)
			}
			if errors.Is(err, interfaces.ErrDuplicateKey) {
				return domain.ErrDuplicateRegistration
			}
			logger.Error("Failed to create registration record: %v", err)
			return domain.Internal("failed to create registration", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateCourses(ctx, s.courseCache, courseID)
	publish(ctx, s.publisher, domain.TopicRegistrationCreated, domain.RegistrationEvent{
		RegistrationID: registration.ID,
		StudentID:      studentID,
		CourseID:       courseID,
		Status:         registration.Status,
		OccurredAt:     time.Now().UTC(),
	})

	logger.Info("Registration %s created for student %s on course %s", registration.ID, studentID, courseID)
	return registration, nil
}

// reserveSeat takes one seat or explains why the course cannot give one.
func reserveSeat(ctx context.Context, tx interfaces.Gateway, courseID string) error {
	ok, err := tx.Courses().ReserveSeat(ctx, courseID)
	if err != nil {
		logger.Error("Failed to reserve seat on course %s: %v", courseID, err)
		return domain.Internal("failed to reserve seat", err)
	}
	if ok {
		return nil
	}

	course, err := tx.Courses().GetByID(ctx, courseID)
	if err != nil {
		return domain.Internal("failed to get course", err)
	}
	if course == nil {
		return domain.ErrCourseNotFound
	}
	if !course.IsActive() {
		return domain.ErrCourseInactive
	}
	return domain.ErrCourseFull
}

// releaseSeat is best effort; a failure leaves drift for the reconcile job.
func releaseSeat(ctx context.Context, tx interfaces.Gateway, courseID string) {
	if _, err := tx.Courses().ReleaseSeat(ctx, courseID); err != nil {
		logger.Error("Failed to release seat on course %s: %v", courseID, err)
	}
}

func (s *RegistrationService) GetRegistrationsByStudent(ctx context.Context, studentID string) ([]*domain.RegistrationWithCourse, error) {
	if !domain.IsValidID(studentID) {
		return nil, domain.ErrInvalidID
	}

	registrations, err := s.gateway.Registrations().Find(ctx, interfaces.RegistrationFilter{StudentID: studentID})
	if err != nil {
		return nil, domain.Internal("failed to get registrations", err)
	}

	courseIDs := make([]string, 0, len(registrations))
	for _, r := range registrations {
		courseIDs = append(courseIDs, r.CourseID)
	}
	courses, err := s.gateway.Courses().Find(ctx, interfaces.CourseFilter{IDs: courseIDs})
	if err != nil {
		return nil, domain.Internal("failed to get courses", err)
	}
	byID := make(map[string]*domain.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	out := make([]*domain.RegistrationWithCourse, 0, len(registrations))
	for _, r := range registrations {
		out = append(out, &domain.RegistrationWithCourse{Registration: *r, Course: byID[r.CourseID]})
	}
	return out, nil
}

func (s *RegistrationService) GetRegistrationsByCourse(ctx context.Context, courseID string) ([]*domain.RegistrationWithStudent, error) {
	if !domain.IsValidID(courseID) {
		return nil, domain.ErrInvalidID
	}

	registrations, err := s.gateway.Registrations().Find(ctx, interfaces.RegistrationFilter{CourseID: courseID})
	if err != nil {
		return nil, domain.Internal("failed to get registrations", err)
	}

	studentIDs := make([]string, 0, len(registrations))
	for _, r := range registrations {
		studentIDs = append(studentIDs, r.StudentID)
	}
	students, err := s.gateway.Users().Find(ctx, interfaces.UserFilter{IDs: studentIDs})
	if err != nil {
		return nil, domain.Internal("failed to get students", err)
	}
	byID := make(map[string]*domain.User, len(students))
	for _, u := range students {
		byID[u.ID] = u.Public()
	}

	out := make([]*domain.RegistrationWithStudent, 0, len(registrations))
	for _, r := range registrations {
		out = append(out, &domain.RegistrationWithStudent{Registration: *r, Student: byID[r.StudentID]})
	}
	return out, nil
}

// statusAttempts bounds how often a status change or delete re-reads a
// registration that another request changed first.
const statusAttempts = 3

// errStatusMoved reports that the conditional write found a different status.
var errStatusMoved = errors.New("registration status moved")

// UpdateRegistrationStatus allows any transition. Leaving Cancelled takes a
// seat again and entering it gives the seat back.
func (s *RegistrationService) UpdateRegistrationStatus(ctx context.Context, id string, status domain.RegistrationStatus) (*domain.Registration, error) {
	logger.Info("Updating registration %s to status %s", id, status)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	for attempt := 1; attempt <= statusAttempts; attempt++ {
		existing, err := s.gateway.Registrations().GetByID(ctx, id)
		if err != nil {
			return nil, domain.Internal("failed to get registration", err)
		}
		if existing == nil {
			return nil, domain.ErrRegistrationNotFound
		}

		updated, err := s.moveStatus(ctx, existing, status)
		if errors.Is(err, errStatusMoved) {
			logger.Warn("Registration %s changed during update (attempt %d)", id, attempt)
			continue
		}
		if err != nil {
			return nil, err
		}

		if existing.Status.HoldsSeat() != status.HoldsSeat() {
			invalidateCourses(ctx, s.courseCache, existing.CourseID)
		}
		publish(ctx, s.publisher, domain.TopicRegistrationStatusChanged, domain.RegistrationEvent{
			RegistrationID: updated.ID,
			StudentID:      updated.StudentID,
			CourseID:       updated.CourseID,
			Status:         updated.Status,
			PreviousStatus: existing.Status,
			OccurredAt:     time.Now().UTC(),
		})
		return updated, nil
	}
	return nil, domain.ErrConcurrentUpdate
}

// moveStatus writes existing.Status -> status and adjusts the course seat
// count only when that exact transition was applied.
func (s *RegistrationService) moveStatus(ctx context.Context, existing *domain.Registration, status domain.RegistrationStatus) (*domain.Registration, error) {
	takesSeat := !existing.Status.HoldsSeat() && status.HoldsSeat()
	freesSeat := existing.Status.HoldsSeat() && !status.HoldsSeat()

	var updated *domain.Registration
	err := s.gateway.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
		// Without a rollback the seat is taken first, so a lost race only
		// has a seat to give back.
		seatFirst := takesSeat && !tx.Transactional()
		if seatFirst {
			if err := reserveSeat(ctx, tx, existing.CourseID); err != nil {
				return err
			}
		}

		var err error
		updated, err = tx.Registrations().UpdateStatus(ctx, existing.ID, existing.Status, status)
		if err != nil || updated == nil {
			if seatFirst {
				releaseSeat(ctx, tx, existing.CourseID)
			}
			if err != nil {
				return domain.Internal("failed to update registration", err)
			}
			return errStatusMoved
		}

		if takesSeat && !seatFirst {
			if err := reserveSeat(ctx, tx, existing.CourseID); err != nil {
				return err
			}
		}
		if freesSeat {
			if _, err := tx.Courses().ReleaseSeat(ctx, existing.CourseID); err != nil {
				return domain.Internal("failed to release seat", err)
			}
		}
		return nil
	})
	return updated, err
}

// DeleteRegistration removes the record and frees its seat if it held one.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, id string) error {
	logger.Info("Deleting registration %s", id)

	if !domain.IsValidID(id) {
		return domain.ErrInvalidID
	}

	for attempt := 1; attempt <= statusAttempts; attempt++ {
		existing, err := s.gateway.Registrations().GetByID(ctx, id)
		if err != nil {
			return domain.Internal("failed to get registration", err)
		}
		if existing == nil {
			return domain.ErrRegistrationNotFound
		}

		err = s.gateway.WithTransaction(ctx, func(ctx context.Context, tx interfaces.Gateway) error {
			deleted, err := tx.Registrations().DeleteByID(ctx, id, existing.Status)
			if err != nil {
				return domain.Internal("failed to delete registration", err)
			}
			if !deleted {
				return errStatusMoved
			}

			if existing.Status.HoldsSeat() {
				if _, err := tx.Courses().ReleaseSeat(ctx, existing.CourseID); err != nil {
					return domain.Internal("failed to release seat", err)
				}
			}
			return nil
		})
		if errors.Is(err, errStatusMoved) {
			logger.Warn("Registration %s changed during delete (attempt %d)", id, attempt)
			continue
		}
		if err != nil {
			return err
		}

		if existing.Status.HoldsSeat() {
			invalidateCourses(ctx, s.courseCache, existing.CourseID)
		}
		publish(ctx, s.publisher, domain.TopicRegistrationDeleted, domain.RegistrationEvent{
			RegistrationID: existing.ID,
			StudentID:      existing.StudentID,
			CourseID:       existing.CourseID,
			Status:         domain.RegistrationCancelled,
			PreviousStatus: existing.Status,
			OccurredAt:     time.Now().UTC(),
		})

		logger.Info("Registration %s deleted", id)
		return nil
	}
	return domain.ErrConcurrentUpdate
}

// ExportRoster renders the course registrations with the configured exporter.
func (s *RegistrationService) ExportRoster(ctx context.Context, courseID string) (*serviceInterfaces.RosterFile, error) {
	if !domain.IsValidID(courseID) {
		return nil, domain.ErrInvalidID
	}
	if s.exporter == nil {
		return nil, domain.Internal("roster export is not configured", nil)
	}

	course, err := s.gateway.Courses().GetByID(ctx, courseID)
	if err != nil {
		return nil, domain.Internal("failed to get course", err)
	}
	if course == nil {
		return nil, domain.ErrCourseNotFound
	}

	rows, err := s.GetRegistrationsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Export(course, rows)
	if err != nil {
		logger.Error("Failed to export roster for course %s: %v", courseID, err)
		return nil, domain.Internal("failed to export roster", err)
	}

	name := course.Slug
	if name == "" {
		name = course.ID
	}
	return &serviceInterfaces.RosterFile{
		Name:        name + "-roster" + s.exporter.Extension(),
		ContentType: s.exporter.ContentType(),
		Data:        data,
	}, nil
}

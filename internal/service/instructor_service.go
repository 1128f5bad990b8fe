package service

import (
	"context"
	"errors"
	"strings"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"

	"gorm.io/datatypes"
)

var _ serviceInterfaces.InstructorService = (*InstructorService)(nil)

type InstructorService struct {
	gateway interfaces.Gateway
}

func NewInstructorService(gateway interfaces.Gateway) *InstructorService {
	return &InstructorService{gateway: gateway}
}

// CreateInstructor attaches an instructor profile to a user whose role is
// Instructor. Name and phone default to the user's own.
func (s *InstructorService) CreateInstructor(ctx context.Context, req *domain.CreateInstructorRequest) (*domain.Instructor, error) {
	if req == nil || req.UserID == "" || strings.TrimSpace(req.WorkArea) == "" {
		return nil, domain.ErrMissingFields
	}
	logger.Info("Creating instructor profile for user %s", req.UserID)

	if !domain.IsValidID(req.UserID) {
		return nil, domain.ErrInvalidID
	}
	if req.Phone != "" && !domain.IsValidPhone(req.Phone) {
		return nil, domain.ErrInvalidPhone
	}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		return nil, domain.ErrInvalidHourlyRate
	}

	user, err := s.gateway.Users().GetByID(ctx, req.UserID)
	if err != nil {
		return nil, domain.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.Role != domain.RoleInstructor {
		return nil, domain.ErrWrongRole
	}

	exists, err := s.gateway.Instructors().Exists(ctx, interfaces.InstructorFilter{UserID: req.UserID})
	if err != nil {
		return nil, domain.Internal("failed to check instructor profile", err)
	}
	if exists {
		return nil, domain.ErrProfileExists
	}

	now := nowUTC()
	instructor := &domain.Instructor{
		ID:           domain.NewID(),
		UserID:       req.UserID,
		FullName:     firstNonEmpty(req.FullName, user.FullName),
		Phone:        firstNonEmpty(req.Phone, user.Phone),
		Experience:   req.Experience,
		Certificates: datatypes.JSONSlice[string](append([]string{}, req.Certificates...)),
		WorkArea:     strings.TrimSpace(req.WorkArea),
		HourlyRate:   req.HourlyRate,
		Image:        req.Image,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.gateway.Instructors().Create(ctx, instructor); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, domain.ErrProfileExists
		}
		logger.Error("Failed to create instructor: %v", err)
		return nil, domain.Internal("failed to create instructor", err)
	}

	logger.Info("Instructor created successfully with ID: %s", instructor.ID)
	return instructor, nil
}

func (s *InstructorService) GetInstructor(ctx context.Context, id string) (*domain.Instructor, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	instructor, err := s.gateway.Instructors().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get instructor", err)
	}
	if instructor == nil {
		return nil, domain.ErrInstructorNotFound
	}
	return instructor, nil
}

func (s *InstructorService) GetInstructorByUser(ctx context.Context, userID string) (*domain.Instructor, error) {
	if !domain.IsValidID(userID) {
		return nil, domain.ErrInvalidID
	}
	instructor, err := s.gateway.Instructors().FindOne(ctx, interfaces.InstructorFilter{UserID: userID})
	if err != nil {
		return nil, domain.Internal("failed to get instructor", err)
	}
	if instructor == nil {
		return nil, domain.ErrInstructorNotFound
	}
	return instructor, nil
}

func (s *InstructorService) ListInstructors(ctx context.Context) ([]*domain.Instructor, error) {
	instructors, err := s.gateway.Instructors().Find(ctx, interfaces.InstructorFilter{})
	if err != nil {
		return nil, domain.Internal("failed to list instructors", err)
	}
	return instructors, nil
}

// UpdateInstructor ignores id and user_id.
func (s *InstructorService) UpdateInstructor(ctx context.Context, id string, req *domain.UpdateInstructorRequest) (*domain.Instructor, error) {
	logger.Info("Updating instructor with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if req == nil || req.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	update := domain.InstructorUpdate{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Experience:   req.Experience,
		Certificates: req.Certificates,
		WorkArea:     req.WorkArea,
		HourlyRate:   req.HourlyRate,
		Image:        req.Image,
	}

	if update.Phone != nil && !domain.IsValidPhone(*update.Phone) {
		return nil, domain.ErrInvalidPhone
	}
	if update.HourlyRate != nil && *update.HourlyRate < 0 {
		return nil, domain.ErrInvalidHourlyRate
	}
	if update.WorkArea != nil && strings.TrimSpace(*update.WorkArea) == "" {
		return nil, domain.ErrMissingFields
	}

	if update.IsEmpty() {
		return s.GetInstructor(ctx, id)
	}

	instructor, err := s.gateway.Instructors().UpdateByID(ctx, id, update)
	if err != nil {
		logger.Error("Failed to update instructor: %v", err)
		return nil, domain.Internal("failed to update instructor", err)
	}
	if instructor == nil {
		return nil, domain.ErrInstructorNotFound
	}
	return instructor, nil
}

// DeleteInstructor deactivates an instructor that still has courses.
func (s *InstructorService) DeleteInstructor(ctx context.Context, id string) (*domain.DeleteResult, error) {
	logger.Info("Deleting instructor with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	instructor, err := s.gateway.Instructors().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get instructor", err)
	}
	if instructor == nil {
		return nil, domain.ErrInstructorNotFound
	}

	has, err := hasCourses(ctx, s.gateway, id, domain.CreatorInstructor)
	if err != nil {
		return nil, err
	}
	if has {
		inactive := domain.StatusInactive
		if _, err := s.gateway.Instructors().UpdateByID(ctx, id, domain.InstructorUpdate{Status: &inactive}); err != nil {
			return nil, domain.Internal("failed to deactivate instructor", err)
		}
		return domain.Deactivated(id, "instructor has courses"), nil
	}

	if _, err := s.gateway.Instructors().DeleteByID(ctx, id); err != nil {
		return nil, domain.Internal("failed to delete instructor", err)
	}
	return domain.Removed(id), nil
}

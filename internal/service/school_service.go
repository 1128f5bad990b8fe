package service

import (
	"context"
	"errors"
	"strings"

	"course-marketplace/internal/domain"
	interfaces "course-marketplace/internal/interfaces/infrastructure"
	serviceInterfaces "course-marketplace/internal/interfaces/service"
	"course-marketplace/pkg/logger"
)

var _ serviceInterfaces.SchoolService = (*SchoolService)(nil)

type SchoolService struct {
	gateway interfaces.Gateway
}

func NewSchoolService(gateway interfaces.Gateway) *SchoolService {
	return &SchoolService{gateway: gateway}
}

// CreateSchool attaches a school profile to an owner whose role is School.
func (s *SchoolService) CreateSchool(ctx context.Context, req *domain.CreateSchoolRequest) (*domain.School, error) {
	if req == nil || req.OwnerID == "" || strings.TrimSpace(req.Name) == "" {
		return nil, domain.ErrMissingFields
	}
	logger.Info("Creating school %q for owner %s", req.Name, req.OwnerID)

	if !domain.IsValidID(req.OwnerID) {
		return nil, domain.ErrInvalidID
	}
	if req.ContactPhone != "" && !domain.IsValidPhone(req.ContactPhone) {
		return nil, domain.ErrInvalidPhone
	}

	owner, err := s.gateway.Users().GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, domain.Internal("failed to get owner", err)
	}
	if owner == nil {
		return nil, domain.ErrUserNotFound
	}
	if owner.Role != domain.RoleSchool {
		return nil, domain.ErrWrongRole
	}

	exists, err := s.gateway.Schools().Exists(ctx, interfaces.SchoolFilter{OwnerID: req.OwnerID})
	if err != nil {
		return nil, domain.Internal("failed to check school profile", err)
	}
	if exists {
		return nil, domain.ErrProfileExists
	}

	now := nowUTC()
	school := &domain.School{
		ID:           domain.NewID(),
		OwnerID:      req.OwnerID,
		Name:         strings.TrimSpace(req.Name),
		Location:     req.Location,
		Description:  req.Description,
		Logo:         req.Logo,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Image:        req.Image,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.gateway.Schools().Create(ctx, school); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, domain.ErrProfileExists
		}
		logger.Error("Failed to create school: %v", err)
		return nil, domain.Internal("failed to create school", err)
	}

	logger.Info("School created successfully with ID: %s", school.ID)
	return school, nil
}

func (s *SchoolService) GetSchool(ctx context.Context, id string) (*domain.School, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	school, err := s.gateway.Schools().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get school", err)
	}
	if school == nil {
		return nil, domain.ErrSchoolNotFound
	}
	return school, nil
}

func (s *SchoolService) GetSchoolByOwner(ctx context.Context, ownerID string) (*domain.School, error) {
	if !domain.IsValidID(ownerID) {
		return nil, domain.ErrInvalidID
	}
	school, err := s.gateway.Schools().FindOne(ctx, interfaces.SchoolFilter{OwnerID: ownerID})
	if err != nil {
		return nil, domain.Internal("failed to get school", err)
	}
	if school == nil {
		return nil, domain.ErrSchoolNotFound
	}
	return school, nil
}

func (s *SchoolService) ListSchools(ctx context.Context) ([]*domain.School, error) {
	schools, err := s.gateway.Schools().Find(ctx, interfaces.SchoolFilter{})
	if err != nil {
		return nil, domain.Internal("failed to list schools", err)
	}
	return schools, nil
}

// UpdateSchool ignores id and owner_id.
func (s *SchoolService) UpdateSchool(ctx context.Context, id string, req *domain.UpdateSchoolRequest) (*domain.School, error) {
	logger.Info("Updating school with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if req == nil || req.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	update := domain.SchoolUpdate{
		Name:         req.Name,
		Location:     req.Location,
		Description:  req.Description,
		Logo:         req.Logo,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Image:        req.Image,
	}

	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, domain.ErrMissingFields
	}
	if update.ContactPhone != nil && *update.ContactPhone != "" && !domain.IsValidPhone(*update.ContactPhone) {
		return nil, domain.ErrInvalidPhone
	}

	if update.IsEmpty() {
		return s.GetSchool(ctx, id)
	}

	school, err := s.gateway.Schools().UpdateByID(ctx, id, update)
	if err != nil {
		logger.Error("Failed to update school: %v", err)
		return nil, domain.Internal("failed to update school", err)
	}
	if school == nil {
		return nil, domain.ErrSchoolNotFound
	}
	return school, nil
}

// DeleteSchool deactivates a school that still has courses.
func (s *SchoolService) DeleteSchool(ctx context.Context, id string) (*domain.DeleteResult, error) {
	logger.Info("Deleting school with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	school, err := s.gateway.Schools().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get school", err)
	}
	if school == nil {
		return nil, domain.ErrSchoolNotFound
	}

	has, err := hasCourses(ctx, s.gateway, id, domain.CreatorSchool)
	if err != nil {
		return nil, err
	}
	if has {
		inactive := domain.StatusInactive
		if _, err := s.gateway.Schools().UpdateByID(ctx, id, domain.SchoolUpdate{Status: &inactive}); err != nil {
			return nil, domain.Internal("failed to deactivate school", err)
		}
		return domain.Deactivated(id, "school has courses"), nil
	}

	if _, err := s.gateway.Schools().DeleteByID(ctx, id); err != nil {
		return nil, domain.Internal("failed to delete school", err)
	}
	return domain.Removed(id), nil
}

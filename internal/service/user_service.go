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

var _ serviceInterfaces.UserService = (*userService)(nil)

// userService implements the UserService interface
type userService struct {
	gateway interfaces.Gateway
	hasher  interfaces.PasswordHasher
	tokens  interfaces.TokenService
}

// NewUserService creates a new user service
func NewUserService(gateway interfaces.Gateway, hasher interfaces.PasswordHasher, tokens interfaces.TokenService) serviceInterfaces.UserService {
	return &userService{
		gateway: gateway,
		hasher:  hasher,
		tokens:  tokens,
	}
}

// SignUp creates a new account. Admin accounts cannot be self-registered.
func (s *userService) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.User, error) {
	if req == nil || strings.TrimSpace(req.FullName) == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	email := domain.NormalizeEmail(req.Email)
	logger.Info("Creating user with email: %s", email)

	if !domain.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if !domain.IsValidPhone(req.Phone) {
		return nil, domain.ErrInvalidPhone
	}
	if len(req.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	taken, err := s.gateway.Users().Exists(ctx, interfaces.UserFilter{Email: email})
	if err != nil {
		return nil, domain.Internal("failed to check email", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	role := req.Role
	if role == "" {
		role = domain.RoleStudent
	}
	if !role.Valid() || role == domain.RoleAdmin {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.hasher.Hash([]byte(req.Password))
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}

	user := domain.NewUser(strings.TrimSpace(req.FullName), email, req.Phone, string(hash), role)
	if err := s.gateway.Users().Create(ctx, user); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		logger.Error("Failed to create user: %v", err)
		return nil, domain.Internal("failed to create user", err)
	}

	logger.Info("User created successfully with ID: %s", user.ID)
	return user.Public(), nil
}

func (s *userService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	email := domain.NormalizeEmail(req.Email)
	if !domain.IsValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	user, err := s.gateway.Users().FindOne(ctx, interfaces.UserFilter{Email: email})
	if err != nil {
		return nil, domain.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Debug("Password mismatch for user %s", user.ID)
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.StatusActive {
		return nil, domain.ErrAccountInactive
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, domain.Internal("failed to issue token", err)
	}

	return &domain.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	logger.Info("Changing password for user %s", userID)

	if !domain.IsValidID(userID) {
		return domain.ErrInvalidID
	}
	if req == nil || req.OldPassword == "" || req.NewPassword == "" {
		return domain.ErrMissingFields
	}
	if len(req.NewPassword) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	user, err := s.gateway.Users().GetByID(ctx, userID)
	if err != nil {
		return domain.Internal("failed to get user", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if err := s.hasher.Compare([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash([]byte(req.NewPassword))
	if err != nil {
		return domain.Internal("failed to hash password", err)
	}
	encoded := string(hash)
	updated, err := s.gateway.Users().UpdateByID(ctx, userID, domain.UserUpdate{PasswordHash: &encoded})
	if err != nil {
		return domain.Internal("failed to update password", err)
	}
	if updated == nil {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	logger.Debug("Getting user with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	user, err := s.gateway.Users().GetByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user: %v", err)
		return nil, domain.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	return user.Public(), nil
}

// ListUsers returns every user, newest first
func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.gateway.Users().Find(ctx, interfaces.UserFilter{})
	if err != nil {
		logger.Error("Failed to list users: %v", err)
		return nil, domain.Internal("failed to list users", err)
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// UpdateUser merges profile fields. Id, password, role and status are
// dropped from the payload; they have dedicated operations.
func (s *userService) UpdateUser(ctx context.Context, id string, req *domain.UpdateUserRequest) (*domain.User, error) {
	logger.Info("Updating user with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if req == nil || req.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	update := domain.UserUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
	}

	if update.FullName != nil && strings.TrimSpace(*update.FullName) == "" {
		return nil, domain.ErrMissingFields
	}

	if req.Email != nil {
		email := domain.NormalizeEmail(*req.Email)
		if !domain.IsValidEmail(email) {
			return nil, domain.ErrInvalidEmail
		}

		taken, err := s.gateway.Users().Exists(ctx, interfaces.UserFilter{Email: email, ExcludeID: id})
		if err != nil {
			return nil, domain.Internal("failed to check email", err)
		}
		if taken {
			return nil, domain.ErrEmailTaken
		}
		update.Email = &email
	}

	if update.Phone != nil && !domain.IsValidPhone(*update.Phone) {
		return nil, domain.ErrInvalidPhone
	}

	if update.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	user, err := s.gateway.Users().UpdateByID(ctx, id, update)
	if err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		logger.Error("Failed to update user: %v", err)
		return nil, domain.Internal("failed to update user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	logger.Info("User updated successfully with ID: %s", user.ID)
	return user.Public(), nil
}

func (s *userService) ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	logger.Info("Changing role of user %s to %s", id, role)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.gateway.Users().UpdateByID(ctx, id, domain.UserUpdate{Role: &role})
	if err != nil {
		return nil, domain.Internal("failed to change role", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user.Public(), nil
}

// DeleteUser removes a user without dependents. A user with registrations,
// or whose instructor or school profile created courses, is deactivated.
func (s *userService) DeleteUser(ctx context.Context, id string) (*domain.DeleteResult, error) {
	logger.Info("Deleting user with ID: %s", id)

	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	user, err := s.gateway.Users().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	reason, err := s.dependentsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason != "" {
		inactive := domain.StatusInactive
		if _, err := s.gateway.Users().UpdateByID(ctx, id, domain.UserUpdate{Status: &inactive}); err != nil {
			return nil, domain.Internal("failed to deactivate user", err)
		}
		logger.Info("User %s deactivated: %s", id, reason)
		return domain.Deactivated(id, reason), nil
	}

	if _, err := s.gateway.Users().DeleteByID(ctx, id); err != nil {
		logger.Error("Failed to delete user: %v", err)
		return nil, domain.Internal("failed to delete user", err)
	}

	logger.Info("User deleted successfully with ID: %s", id)
	return domain.Removed(id), nil
}

// dependentsOf returns why the user cannot be removed, or "" if it can.
func (s *userService) dependentsOf(ctx context.Context, userID string) (string, error) {
	hasRegistrations, err := s.gateway.Registrations().Exists(ctx, interfaces.RegistrationFilter{StudentID: userID})
	if err != nil {
		return "", domain.Internal("failed to check registrations", err)
	}
	if hasRegistrations {
		return "user has registrations", nil
	}

	instructor, err := s.gateway.Instructors().FindOne(ctx, interfaces.InstructorFilter{UserID: userID})
	if err != nil {
		return "", domain.Internal("failed to get instructor profile", err)
	}
	if instructor != nil {
		has, err := hasCourses(ctx, s.gateway, instructor.ID, domain.CreatorInstructor)
		if err != nil {
			return "", err
		}
		if has {
			return "instructor has courses", nil
		}
	}

	school, err := s.gateway.Schools().FindOne(ctx, interfaces.SchoolFilter{OwnerID: userID})
	if err != nil {
		return "", domain.Internal("failed to get school profile", err)
	}
	if school != nil {
		has, err := hasCourses(ctx, s.gateway, school.ID, domain.CreatorSchool)
		if err != nil {
			return "", err
		}
		if has {
			return "school has courses", nil
		}
	}

	return "", nil
}

func hasCourses(ctx context.Context, gateway interfaces.Gateway, creatorID string, creatorType domain.CreatorType) (bool, error) {
	has, err := gateway.Courses().Exists(ctx, interfaces.CourseFilter{
		Creator: &domain.CreatorRef{ID: creatorID, Type: creatorType},
	})
	if err != nil {
		return false, domain.Internal("failed to check courses", err)
	}
	return has, nil
}

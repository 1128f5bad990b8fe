package domain

import (
	"strings"
	"time"
)

// User is an identity record. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id" gorm:"type:varchar(24);primaryKey" bson:"_id"`
	FullName     string    `json:"full_name" gorm:"not null" bson:"full_name"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	Phone        string    `json:"phone" gorm:"not null" bson:"phone"`
	PasswordHash string    `json:"-" gorm:"not null" bson:"password_hash"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:Student" bson:"role"`
	Status       Status    `json:"status" gorm:"type:varchar(16);not null;default:Active" bson:"status"`
	CreatedAt    time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (User) TableName() string { return "users" }

// Public returns a copy without secret fields.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

func NewUser(fullName, email, phone, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	if role == "" {
		role = RoleStudent
	}
	return &User{
		ID:           NewID(),
		FullName:     fullName,
		Email:        NormalizeEmail(email),
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate carries the mutable user fields; nil means unchanged.
type UserUpdate struct {
	FullName     *string
	Email        *string
	Phone        *string
	PasswordHash *string
	Role         *Role
	Status       *Status
}

func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Phone == nil &&
		u.PasswordHash == nil && u.Role == nil && u.Status == nil
}

// Fields maps the set fields to their column / document keys.
func (u UserUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.FullName != nil {
		f["full_name"] = *u.FullName
	}
	if u.Email != nil {
		f["email"] = *u.Email
	}
	if u.Phone != nil {
		f["phone"] = *u.Phone
	}
	if u.PasswordHash != nil {
		f["password_hash"] = *u.PasswordHash
	}
	if u.Role != nil {
		f["role"] = *u.Role
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	return f
}

func (u UserUpdate) Apply(user *User) {
	if u.FullName != nil {
		user.FullName = *u.FullName
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.Phone != nil {
		user.Phone = *u.Phone
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.Status != nil {
		user.Status = *u.Status
	}
}

// SignUpRequest represents the request to create an account
type SignUpRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UpdateUserRequest represents a profile update. Id, password, role and
// status are accepted on the wire and ignored.
type UpdateUserRequest struct {
	ID       *string `json:"id,omitempty"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

type ChangeRoleRequest struct {
	Role Role `json:"role" validate:"required"`
}

func (r UpdateUserRequest) IsEmpty() bool {
	return r.ID == nil && r.FullName == nil && r.Email == nil && r.Phone == nil &&
		r.Password == nil && r.Role == nil && r.Status == nil
}

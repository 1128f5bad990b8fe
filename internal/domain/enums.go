package domain

import "regexp"

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleSchool     Role = "School"
	RoleAdmin      Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleSchool, RoleAdmin:
		return true
	}
	return false
}

// Status is shared by users, profiles and courses.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// RegistrationStatus represents the status of a registration
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "Pending"
	RegistrationPaid      RegistrationStatus = "Paid"
	RegistrationCancelled RegistrationStatus = "Cancelled"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationPaid, RegistrationCancelled:
		return true
	}
	return false
}

// HoldsSeat reports whether a registration in this status occupies a course seat.
func (s RegistrationStatus) HoldsSeat() bool {
	return s != RegistrationCancelled
}

// Category classifies courses.
type Category string

const (
	CategoryLearning Category = "Learning"
	CategoryTraining Category = "Training"
	CategoryTherapy  Category = "Therapy"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLearning, CategoryTraining, CategoryTherapy:
		return true
	}
	return false
}

// CreatorType tags which profile kind created a course.
type CreatorType string

const (
	CreatorInstructor CreatorType = "Instructor"
	CreatorSchool     CreatorType = "School"
)

func (t CreatorType) Valid() bool {
	return t == CreatorInstructor || t == CreatorSchool
}

const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^05\d{8}$`)
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPhone accepts the local mobile format: 05 followed by eight digits.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

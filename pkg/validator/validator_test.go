package validator

import (
	"testing"

	"course-marketplace/internal/domain"
)

type sample struct {
	ID     string                    `json:"id" validate:"required,objectid"`
	Phone  string                    `json:"phone" validate:"omitempty,phone"`
	Email  string                    `json:"email" validate:"omitempty,emailaddr"`
	Role   domain.Role               `json:"role" validate:"omitempty,role"`
	Status domain.RegistrationStatus `json:"status" validate:"omitempty,regstatus"`
}

func TestValidateStruct_DomainTags(t *testing.T) {
	ok := sample{
		ID:     "64b7f0c2a1b2c3d4e5f60718",
		Phone:  "0521234567",
		Email:  "dana@example.com",
		Role:   domain.RoleInstructor,
		Status: domain.RegistrationPaid,
	}
	if err := ValidateStruct(&ok); err != nil {
		t.Fatalf("Expected valid struct, got %v", err)
	}

	bad := sample{
		ID:     "64B7F0C2A1B2C3D4E5F60718",
		Phone:  "0721234567",
		Email:  "not-an-email",
		Role:   "Owner",
		Status: "refunded",
	}
	err := ValidateStruct(&bad)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	formatted := FormatValidationError(err)
	if len(formatted) != 5 {
		t.Fatalf("Expected 5 field errors, got %d: %+v", len(formatted), formatted)
	}

	tags := map[string]string{}
	for _, fe := range formatted {
		tags[fe.Field] = fe.Tag
	}
	expected := map[string]string{
		"id":     "objectid",
		"phone":  "phone",
		"email":  "emailaddr",
		"role":   "role",
		"status": "regstatus",
	}
	for field, tag := range expected {
		if tags[field] != tag {
			t.Errorf("Expected %s to fail on %s, got %q", field, tag, tags[field])
		}
	}
}

func TestFormatValidationError_NonValidationError(t *testing.T) {
	if got := FormatValidationError(domain.ErrInvalidID); len(got) != 0 {
		t.Errorf("Expected no formatted errors, got %+v", got)
	}
}

package validator

import (
	"errors"
	"fmt"
	"strings"

	"course-marketplace/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	registerDomainTags(validate)
}

// registerDomainTags binds the domain format checks to struct tags.
func registerDomainTags(v *validator.Validate) {
	stringRule := func(fn func(string) bool) validator.Func {
		return func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}
	}

	_ = v.RegisterValidation("objectid", stringRule(domain.IsValidID))
	_ = v.RegisterValidation("phone", stringRule(domain.IsValidPhone))
	_ = v.RegisterValidation("emailaddr", stringRule(domain.IsValidEmail))
	_ = v.RegisterValidation("role", stringRule(func(s string) bool { return domain.Role(s).Valid() }))
	_ = v.RegisterValidation("category", stringRule(func(s string) bool { return domain.Category(s).Valid() }))
	_ = v.RegisterValidation("creatortype", stringRule(func(s string) bool { return domain.CreatorType(s).Valid() }))
	_ = v.RegisterValidation("regstatus", stringRule(func(s string) bool { return domain.RegistrationStatus(s).Valid() }))
}

// GetValidator returns the validator instance
func GetValidator() *validator.Validate {
	return validate
}

// ValidateStruct validates a struct
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatValidationError formats validation errors into a readable format
func FormatValidationError(err error) []ValidationError {
	var out []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			out = append(out, ValidationError{
				Field:   strings.ToLower(fieldError.Field()),
				Tag:     fieldError.Tag(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return out
}

func getErrorMessage(fieldError validator.FieldError) string {
	field := strings.ToLower(fieldError.Field())

	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email", "emailaddr":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fieldError.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
	case "objectid":
		return fmt.Sprintf("%s must be a 24 character hex identifier", field)
	case "phone":
		return fmt.Sprintf("%s must be a local mobile number (05XXXXXXXX)", field)
	case "role":
		return fmt.Sprintf("%s must be one of: Student Instructor School Admin", field)
	case "category":
		return fmt.Sprintf("%s must be one of: Learning Training Therapy", field)
	case "creatortype":
		return fmt.Sprintf("%s must be one of: Instructor School", field)
	case "regstatus":
		return fmt.Sprintf("%s must be one of: Pending Paid Cancelled", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

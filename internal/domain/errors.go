package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure independently of its message.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidArgument
	KindNotFound
	KindConflict
	KindPreconditionFailed
	KindUnauthorized
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is the typed error returned by services. Reason narrows the kind
// (for example "course_full" under KindPreconditionFailed).
type Error struct {
	Kind    ErrorKind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, and by reason when the target has one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

func NewError(kind ErrorKind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func InvalidArgument(reason, message string) *Error {
	return &Error{Kind: KindInvalidArgument, Reason: reason, Message: message}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Reason: entity, Message: entity + " not found"}
}

func Conflict(reason, message string) *Error {
	return &Error{Kind: KindConflict, Reason: reason, Message: message}
}

func PreconditionFailed(reason, message string) *Error {
	return &Error{Kind: KindPreconditionFailed, Reason: reason, Message: message}
}

// Internal wraps an infrastructure failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Reason: "internal", Message: message, Err: err}
}

// KindOf extracts the kind of err. Untyped errors are internal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ReasonOf extracts the reason of err, empty for untyped errors.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

var (
	ErrInvalidID          = InvalidArgument("invalid_id", "invalid identifier")
	ErrEmptyUpdate        = InvalidArgument("empty_update", "no data to update")
	ErrMissingFields      = InvalidArgument("missing_fields", "missing required fields")
	ErrInvalidEmail       = InvalidArgument("invalid_email", "invalid email format")
	ErrInvalidPhone       = InvalidArgument("invalid_phone", "invalid phone number")
	ErrPasswordTooShort   = InvalidArgument("weak_password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	ErrInvalidRole        = InvalidArgument("invalid_role", "invalid role")
	ErrInvalidStatus      = InvalidArgument("invalid_status", "invalid registration status")
	ErrInvalidCategory    = InvalidArgument("invalid_category", "invalid course category")
	ErrInvalidCreatorType = InvalidArgument("invalid_creator_type", "invalid creator type")
	ErrInvalidPrice       = InvalidArgument("invalid_price", "price must be a non-negative number")
	ErrInvalidCapacity    = InvalidArgument("invalid_capacity", "max participants must be at least 1")
	ErrInvalidHourlyRate  = InvalidArgument("invalid_hourly_rate", "hourly rate must be a non-negative number")
	ErrInvalidState       = InvalidArgument("invalid_state", "status must be Active or Inactive")
	ErrUnsupportedMedia   = InvalidArgument("unsupported_media", "only image uploads are accepted")

	ErrUserNotFound         = NotFound("user")
	ErrCourseNotFound       = NotFound("course")
	ErrInstructorNotFound   = NotFound("instructor")
	ErrSchoolNotFound       = NotFound("school")
	ErrRegistrationNotFound = NotFound("registration")

	ErrDuplicateRegistration = Conflict("duplicate", "student is already registered to this course")
	ErrEmailTaken            = Conflict("email_taken", "email is already in use")
	ErrProfileExists         = Conflict("profile_exists", "profile already exists for this user")
	ErrConcurrentUpdate      = Conflict("concurrent_update", "registration was changed by another request, retry")

	ErrCourseInactive         = PreconditionFailed("course_inactive", "course is not active")
	ErrCourseFull             = PreconditionFailed("course_full", "course is full")
	ErrWrongRole              = PreconditionFailed("wrong_role", "user role does not allow this operation")
	ErrCreatorInactive        = PreconditionFailed("creator_inactive", "course creator is not active")
	ErrCapacityBelowOccupancy = PreconditionFailed("capacity_below_occupancy", "max participants cannot be lower than current participants")
	ErrStorageUnavailable     = PreconditionFailed("storage_unavailable", "object storage is not configured")

	ErrInvalidCredentials = NewError(KindUnauthorized, "invalid_credentials", "invalid email or password")
	ErrAccountInactive    = NewError(KindForbidden, "account_inactive", "account is inactive")
	ErrUnauthorized       = NewError(KindUnauthorized, "unauthorized", "authentication required")
	ErrForbidden          = NewError(KindForbidden, "forbidden", "insufficient permissions")
)

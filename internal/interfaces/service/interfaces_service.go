package service

import (
	"context"
	"io"

	"course-marketplace/internal/domain"
	infrastructure "course-marketplace/internal/interfaces/infrastructure"
)

type RegistrationService interface {
	// Core registration operations
	CreateRegistration(ctx context.Context, studentID, courseID string) (*domain.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id string, status domain.RegistrationStatus) (*domain.Registration, error)
	DeleteRegistration(ctx context.Context, id string) error

	// Query operations
	GetRegistrationsByStudent(ctx context.Context, studentID string) ([]*domain.RegistrationWithCourse, error)
	GetRegistrationsByCourse(ctx context.Context, courseID string) ([]*domain.RegistrationWithStudent, error)
	ExportRoster(ctx context.Context, courseID string) (*RosterFile, error)
}

// RosterFile is a rendered course roster ready to be served.
type RosterFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type UserService interface {
	SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.User, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error

	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, req *domain.UpdateUserRequest) (*domain.User, error)
	ChangeRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) (*domain.DeleteResult, error)
}

type InstructorService interface {
	CreateInstructor(ctx context.Context, req *domain.CreateInstructorRequest) (*domain.Instructor, error)
	GetInstructor(ctx context.Context, id string) (*domain.Instructor, error)
	GetInstructorByUser(ctx context.Context, userID string) (*domain.Instructor, error)
	ListInstructors(ctx context.Context) ([]*domain.Instructor, error)
	UpdateInstructor(ctx context.Context, id string, req *domain.UpdateInstructorRequest) (*domain.Instructor, error)
	DeleteInstructor(ctx context.Context, id string) (*domain.DeleteResult, error)
}

type SchoolService interface {
	CreateSchool(ctx context.Context, req *domain.CreateSchoolRequest) (*domain.School, error)
	GetSchool(ctx context.Context, id string) (*domain.School, error)
	GetSchoolByOwner(ctx context.Context, ownerID string) (*domain.School, error)
	ListSchools(ctx context.Context) ([]*domain.School, error)
	UpdateSchool(ctx context.Context, id string, req *domain.UpdateSchoolRequest) (*domain.School, error)
	DeleteSchool(ctx context.Context, id string) (*domain.DeleteResult, error)
}

// CourseQuery narrows ListCourses. Empty fields match everything.
type CourseQuery struct {
	Category    domain.Category
	Status      domain.Status
	CreatorID   string
	CreatorType domain.CreatorType
}

// ReconcileReport lists the courses whose counters were corrected.
type ReconcileReport struct {
	Checked   int                     `json:"checked"`
	Corrected []domain.OccupancyEvent `json:"corrected"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, req *domain.CreateCourseRequest) (*domain.Course, error)
	GetCourse(ctx context.Context, id string) (*domain.Course, error)
	ListCourses(ctx context.Context, query CourseQuery) ([]*domain.Course, error)
	UpdateCourse(ctx context.Context, id string, req *domain.UpdateCourseRequest) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id string) (*domain.DeleteResult, error)

	// Catalogue maintenance
	ResetCourses(ctx context.Context, reqs []*domain.CreateCourseRequest) ([]*domain.Course, error)
	ReconcileOccupancy(ctx context.Context) (*ReconcileReport, error)
}

type UploadService interface {
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type IdempotencyService interface {
	CheckDuplicateRequest(ctx context.Context, key, principalID string, requestData any) (*infrastructure.IdempotencyRecord, bool, error)
	StoreProcessedRequest(ctx context.Context, key, principalID string, requestData any, responseData []byte, statusCode int) error
}

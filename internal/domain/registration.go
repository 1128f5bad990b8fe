package domain

import "time"

// Registration joins one student to one course. The (student, course)
// pair is unique.
type Registration struct {
	ID        string             `json:"id" gorm:"type:varchar(24);primaryKey" bson:"_id"`
	StudentID string             `json:"student_id" gorm:"type:varchar(24);not null;uniqueIndex:idx_registrations_student_course" bson:"student_id"`
	CourseID  string             `json:"course_id" gorm:"type:varchar(24);not null;uniqueIndex:idx_registrations_student_course;index" bson:"course_id"`
	Status    RegistrationStatus `json:"status" gorm:"type:varchar(16);not null;default:Pending" bson:"status"`
	CreatedAt time.Time          `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

func (Registration) TableName() string { return "registrations" }

func NewRegistration(studentID, courseID string) *Registration {
	now := time.Now().UTC()
	return &Registration{
		ID:        NewID(),
		StudentID: studentID,
		CourseID:  courseID,
		Status:    RegistrationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RegistrationWithCourse is a student's registration joined with its course.
type RegistrationWithCourse struct {
	Registration
	Course *Course `json:"course"`
}

// RegistrationWithStudent is a course registration joined with the student's
// public profile.
type RegistrationWithStudent struct {
	Registration
	Student *User `json:"student"`
}

type CreateRegistrationRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

type UpdateRegistrationStatusRequest struct {
	Status RegistrationStatus `json:"status" validate:"required"`
}

package domain

import "time"

const (
	TopicRegistrationCreated       = "registration.created"
	TopicRegistrationStatusChanged = "registration.status_changed"
	TopicRegistrationDeleted       = "registration.deleted"
	TopicCourseOccupancyCorrected  = "course.occupancy_corrected"
)

// RegistrationEvent is published after a registration write commits.
type RegistrationEvent struct {
	RegistrationID string             `json:"registration_id"`
	StudentID      string             `json:"student_id"`
	CourseID       string             `json:"course_id"`
	Status         RegistrationStatus `json:"status"`
	PreviousStatus RegistrationStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OccupancyEvent is published when the reconcile job rewrites a counter.
type OccupancyEvent struct {
	CourseID   string    `json:"course_id"`
	Previous   int       `json:"previous"`
	Current    int       `json:"current"`
	OccurredAt time.Time `json:"occurred_at"`
}

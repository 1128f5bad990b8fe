package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Instructor is the instructor profile of exactly one user.
type Instructor struct {
	ID           string                     `json:"id" gorm:"type:varchar(24);primaryKey" bson:"_id"`
	UserID       string                     `json:"user_id" gorm:"type:varchar(24);uniqueIndex;not null" bson:"user_id"`
	FullName     string                     `json:"full_name" bson:"full_name"`
	Phone        string                     `json:"phone" bson:"phone"`
	Experience   string                     `json:"experience,omitempty" bson:"experience,omitempty"`
	Certificates datatypes.JSONSlice[string] `json:"certificates" bson:"certificates"`
	WorkArea     string                     `json:"work_area" gorm:"not null" bson:"work_area"`
	HourlyRate   *float64                   `json:"hourly_rate,omitempty" bson:"hourly_rate,omitempty"`
	Image        string                     `json:"image,omitempty" bson:"image,omitempty"`
	Status       Status                     `json:"status" gorm:"type:varchar(16);not null;default:Active" bson:"status"`
	CreatedAt    time.Time                  `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt    time.Time                  `json:"updated_at" bson:"updated_at"`
}

func (Instructor) TableName() string { return "instructors" }

type InstructorUpdate struct {
	FullName     *string
	Phone        *string
	Experience   *string
	Certificates *[]string
	WorkArea     *string
	HourlyRate   *float64
	Image        *string
	Status       *Status
}

func (u InstructorUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

func (u InstructorUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.FullName != nil {
		f["full_name"] = *u.FullName
	}
	if u.Phone != nil {
		f["phone"] = *u.Phone
	}
	if u.Experience != nil {
		f["experience"] = *u.Experience
	}
	if u.Certificates != nil {
		f["certificates"] = datatypes.JSONSlice[string](*u.Certificates)
	}
	if u.WorkArea != nil {
		f["work_area"] = *u.WorkArea
	}
	if u.HourlyRate != nil {
		f["hourly_rate"] = *u.HourlyRate
	}
	if u.Image != nil {
		f["image"] = *u.Image
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	return f
}

func (u InstructorUpdate) Apply(i *Instructor) {
	if u.FullName != nil {
		i.FullName = *u.FullName
	}
	if u.Phone != nil {
		i.Phone = *u.Phone
	}
	if u.Experience != nil {
		i.Experience = *u.Experience
	}
	if u.Certificates != nil {
		i.Certificates = append(datatypes.JSONSlice[string]{}, *u.Certificates...)
	}
	if u.WorkArea != nil {
		i.WorkArea = *u.WorkArea
	}
	if u.HourlyRate != nil {
		r := *u.HourlyRate
		i.HourlyRate = &r
	}
	if u.Image != nil {
		i.Image = *u.Image
	}
	if u.Status != nil {
		i.Status = *u.Status
	}
}

type CreateInstructorRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	FullName     string   `json:"full_name,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Certificates []string `json:"certificates,omitempty"`
	WorkArea     string   `json:"work_area" validate:"required"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	Image        string   `json:"image,omitempty"`
}

// UpdateInstructorRequest ignores id and user_id.
type UpdateInstructorRequest struct {
	ID           *string   `json:"id,omitempty"`
	UserID       *string   `json:"user_id,omitempty"`
	FullName     *string   `json:"full_name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Experience   *string   `json:"experience,omitempty"`
	Certificates *[]string `json:"certificates,omitempty"`
	WorkArea     *string   `json:"work_area,omitempty"`
	HourlyRate   *float64  `json:"hourly_rate,omitempty"`
	Image        *string   `json:"image,omitempty"`
}

func (r UpdateInstructorRequest) IsEmpty() bool {
	return r.ID == nil && r.UserID == nil && r.FullName == nil && r.Phone == nil &&
		r.Experience == nil && r.Certificates == nil && r.WorkArea == nil &&
		r.HourlyRate == nil && r.Image == nil
}

package domain

import (
	"time"

	"github.com/gosimple/slug"
)

// CreatorRef identifies the profile that created a course. The pair is
// resolved explicitly by Type instead of through a dynamic relation.
type CreatorRef struct {
	ID   string      `json:"id" gorm:"column:creator_id;type:varchar(24);not null;index:idx_courses_creator" bson:"id" validate:"required,objectid"`
	Type CreatorType `json:"type" gorm:"column:creator_type;type:varchar(16);not null;index:idx_courses_creator" bson:"type" validate:"required,creatortype"`
}

// Course is an offering with an optional seat capacity.
type Course struct {
	ID                  string     `json:"id" gorm:"type:varchar(24);primaryKey" bson:"_id"`
	Title               string     `json:"title" gorm:"not null" bson:"title"`
	Slug                string     `json:"slug" gorm:"index" bson:"slug"`
	Description         string     `json:"description" gorm:"not null" bson:"description"`
	Price               float64    `json:"price" gorm:"not null;check:price >= 0" bson:"price"`
	Category            Category   `json:"category" gorm:"type:varchar(16);not null" bson:"category"`
	TargetAudience      string     `json:"target_audience" bson:"target_audience"`
	Image               string     `json:"image,omitempty" bson:"image,omitempty"`
	Creator             CreatorRef `json:"creator" gorm:"embedded" bson:"creator"`
	Status              Status     `json:"status" gorm:"type:varchar(16);not null;default:Active" bson:"status"`
	MaxParticipants     *int       `json:"max_participants,omitempty" bson:"max_participants"`
	CurrentParticipants int        `json:"current_participants" gorm:"not null;default:0;check:current_participants >= 0" bson:"current_participants"`
	CreatedAt           time.Time  `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at"`
}

func (Course) TableName() string { return "courses" }

// HasCapacity reports whether one more seat can be taken.
func (c *Course) HasCapacity() bool {
	return c.MaxParticipants == nil || c.CurrentParticipants < *c.MaxParticipants
}

func (c *Course) IsActive() bool {
	return c.Status == StatusActive
}

// NewCourse builds an active course with no seats taken.
func NewCourse(req *CreateCourseRequest) *Course {
	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	var price float64
	if req.Price != nil {
		price = *req.Price
	}
	var maxParticipants *int
	if req.MaxParticipants != nil {
		m := *req.MaxParticipants
		maxParticipants = &m
	}
	return &Course{
		ID:              NewID(),
		Title:           req.Title,
		Slug:            slug.Make(req.Title),
		Description:     req.Description,
		Price:           price,
		Category:        req.Category,
		TargetAudience:  req.TargetAudience,
		Image:           req.Image,
		Creator:         req.Creator,
		Status:          status,
		MaxParticipants: maxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CourseUpdate carries the mutable course fields; nil means unchanged.
type CourseUpdate struct {
	Title               *string
	Description         *string
	Price               *float64
	Category            *Category
	TargetAudience      *string
	Image               *string
	Status              *Status
	MaxParticipants     *int
	CurrentParticipants *int
}

func (u CourseUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

func (u CourseUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.Title != nil {
		f["title"] = *u.Title
		f["slug"] = slug.Make(*u.Title)
	}
	if u.Description != nil {
		f["description"] = *u.Description
	}
	if u.Price != nil {
		f["price"] = *u.Price
	}
	if u.Category != nil {
		f["category"] = *u.Category
	}
	if u.TargetAudience != nil {
		f["target_audience"] = *u.TargetAudience
	}
	if u.Image != nil {
		f["image"] = *u.Image
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	if u.MaxParticipants != nil {
		f["max_participants"] = *u.MaxParticipants
	}
	if u.CurrentParticipants != nil {
		f["current_participants"] = *u.CurrentParticipants
	}
	return f
}

func (u CourseUpdate) Apply(c *Course) {
	if u.Title != nil {
		c.Title = *u.Title
		c.Slug = slug.Make(*u.Title)
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.TargetAudience != nil {
		c.TargetAudience = *u.TargetAudience
	}
	if u.Image != nil {
		c.Image = *u.Image
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.MaxParticipants != nil {
		m := *u.MaxParticipants
		c.MaxParticipants = &m
	}
	if u.CurrentParticipants != nil {
		c.CurrentParticipants = *u.CurrentParticipants
	}
}

// CreateCourseRequest represents the request to publish a course
type CreateCourseRequest struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description" validate:"required"`
	Price           *float64   `json:"price" validate:"required,gte=0"`
	Category        Category   `json:"category" validate:"required,category"`
	TargetAudience  string     `json:"target_audience" validate:"required"`
	Image           string     `json:"image,omitempty" validate:"omitempty,url"`
	Creator         CreatorRef `json:"creator"`
	MaxParticipants *int       `json:"max_participants,omitempty" validate:"omitempty,min=1"`
	Status          Status     `json:"status,omitempty"`
}

// UpdateCourseRequest represents a course update. Id, creator, slug and
// current participants are accepted on the wire and ignored.
type UpdateCourseRequest struct {
	ID                  *string     `json:"id,omitempty"`
	Title               *string     `json:"title,omitempty"`
	Slug                *string     `json:"slug,omitempty"`
	Description         *string     `json:"description,omitempty"`
	Price               *float64    `json:"price,omitempty"`
	Category            *Category   `json:"category,omitempty"`
	TargetAudience      *string     `json:"target_audience,omitempty"`
	Image               *string     `json:"image,omitempty"`
	Creator             *CreatorRef `json:"creator,omitempty"`
	Status              *Status     `json:"status,omitempty"`
	MaxParticipants     *int        `json:"max_participants,omitempty"`
	CurrentParticipants *int        `json:"current_participants,omitempty"`
}

func (r UpdateCourseRequest) IsEmpty() bool {
	return r.ID == nil && r.Title == nil && r.Slug == nil && r.Description == nil &&
		r.Price == nil && r.Category == nil && r.TargetAudience == nil && r.Image == nil &&
		r.Creator == nil && r.Status == nil && r.MaxParticipants == nil && r.CurrentParticipants == nil
}

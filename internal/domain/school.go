package domain

import "time"

// School is the school profile owned by exactly one user.
type School struct {
	ID           string    `json:"id" gorm:"type:varchar(24);primaryKey" bson:"_id"`
	OwnerID      string    `json:"owner_id" gorm:"type:varchar(24);uniqueIndex;not null" bson:"owner_id"`
	Name         string    `json:"name" gorm:"not null" bson:"name"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Logo         string    `json:"logo,omitempty" bson:"logo,omitempty"`
	ContactName  string    `json:"contact_name,omitempty" bson:"contact_name,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	Image        string    `json:"image,omitempty" bson:"image,omitempty"`
	Status       Status    `json:"status" gorm:"type:varchar(16);not null;default:Active" bson:"status"`
	CreatedAt    time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (School) TableName() string { return "schools" }

type SchoolUpdate struct {
	Name         *string
	Location     *string
	Description  *string
	Logo         *string
	ContactName  *string
	ContactPhone *string
	Image        *string
	Status       *Status
}

func (u SchoolUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

func (u SchoolUpdate) Fields() map[string]any {
	f := map[string]any{}
	if u.Name != nil {
		f["name"] = *u.Name
	}
	if u.Location != nil {
		f["location"] = *u.Location
	}
	if u.Description != nil {
		f["description"] = *u.Description
	}
	if u.Logo != nil {
		f["logo"] = *u.Logo
	}
	if u.ContactName != nil {
		f["contact_name"] = *u.ContactName
	}
	if u.ContactPhone != nil {
		f["contact_phone"] = *u.ContactPhone
	}
	if u.Image != nil {
		f["image"] = *u.Image
	}
	if u.Status != nil {
		f["status"] = *u.Status
	}
	return f
}

func (u SchoolUpdate) Apply(s *School) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Location != nil {
		s.Location = *u.Location
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Logo != nil {
		s.Logo = *u.Logo
	}
	if u.ContactName != nil {
		s.ContactName = *u.ContactName
	}
	if u.ContactPhone != nil {
		s.ContactPhone = *u.ContactPhone
	}
	if u.Image != nil {
		s.Image = *u.Image
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
}

type CreateSchoolRequest struct {
	OwnerID      string `json:"owner_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=200"`
	Location     string `json:"location,omitempty"`
	Description  string `json:"description,omitempty"`
	Logo         string `json:"logo,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Image        string `json:"image,omitempty"`
}

// UpdateSchoolRequest ignores id and owner_id.
type UpdateSchoolRequest struct {
	ID           *string `json:"id,omitempty"`
	OwnerID      *string `json:"owner_id,omitempty"`
	Name         *string `json:"name,omitempty"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	Logo         *string `json:"logo,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Image        *string `json:"image,omitempty"`
}

func (r UpdateSchoolRequest) IsEmpty() bool {
	return r.ID == nil && r.OwnerID == nil && r.Name == nil && r.Location == nil &&
		r.Description == nil && r.Logo == nil && r.ContactName == nil &&
		r.ContactPhone == nil && r.Image == nil
}

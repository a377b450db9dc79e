package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Assignment struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	CourseID     uint       `json:"course_id" gorm:"not null;index"`
	Title        string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Instructions string     `json:"instructions" gorm:"type:text" validate:"omitempty,max=5000"`
	DueDate      *time.Time `json:"due_date"`

	// Attachments is a JSON list of {name, url, size} entries
	Attachments datatypes.JSON `json:"attachments" gorm:"type:jsonb"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course      Course       `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:AssignmentID"`
}

// AttachmentRef is the payload stored inside Assignment.Attachments.
type AttachmentRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

func (Assignment) TableName() string {
	return "assignments"
}

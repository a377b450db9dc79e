package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Note is admin-authored content addressed to an explicit list of students.
type Note struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Title         string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Body          string  `json:"body" gorm:"type:text" validate:"omitempty,max=10000"`
	AttachmentURL *string `json:"attachment_url" gorm:"size:500"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Students []User `json:"students,omitempty" gorm:"many2many:note_students"`
}

// Quiz is admin-authored and visible to every student enrolled in its course.
type Quiz struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	CourseID uint       `json:"course_id" gorm:"not null;index"`
	Title    string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	DueDate  *time.Time `json:"due_date"`

	// Questions is a JSON payload of quiz questions and options
	Questions datatypes.JSON `json:"questions" gorm:"type:jsonb"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Resource is a globally visible digital library entry.
type Resource struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	FileURL     string `json:"file_url" gorm:"not null;size:500" validate:"required,max=500"`
	Category    string `json:"category" gorm:"size:50;index" validate:"omitempty,max=50"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

func (Quiz) TableName() string {
	return "quizzes"
}

func (Resource) TableName() string {
	return "resources"
}

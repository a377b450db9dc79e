package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string  `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	CoverURL    *string `json:"cover_url" gorm:"size:500"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID"`

	// Computed fields (not stored) — rosters are projected from enrollments
	EnrolledStudentIDs  []string `json:"enrolled_student_ids" gorm:"-"`
	CompletedStudentIDs []string `json:"completed_student_ids" gorm:"-"`
	AssignmentCount     int      `json:"assignment_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}

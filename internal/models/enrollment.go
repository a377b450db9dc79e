package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentNotEnrolled EnrollmentStatus = "not-enrolled" // derived only, never stored
	EnrollmentPending     EnrollmentStatus = "pending"
	EnrollmentEnrolled    EnrollmentStatus = "enrolled"
	EnrollmentCompleted   EnrollmentStatus = "completed"
)

// Enrollment is the single source of truth for a student's standing in a
// course. Course rosters are projected from these rows at read time and are
// never stored, so the two representations cannot drift.
type Enrollment struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	StudentID string           `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_course"`
	CourseID  uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_student_course;index"`
	Status    EnrollmentStatus `json:"status" gorm:"not null;default:pending;index"`

	RequestedAt time.Time  `json:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at"`
	ApprovedBy  *string    `json:"approved_by" gorm:"size:255"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Student User   `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	Course  Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

package models

import (
	"time"
)

type SubmissionStatus string

const (
	// Stored statuses. An empty stored status reads as Submitted.
	SubmissionSubmitted     SubmissionStatus = "Submitted"
	SubmissionGraded        SubmissionStatus = "Graded"
	SubmissionNeedsRevision SubmissionStatus = "Needs Revision"

	// Derived statuses, never stored.
	SubmissionMissing SubmissionStatus = "Missing"
	SubmissionPending SubmissionStatus = "Pending"
)

// Submission holds a student's work for one assignment. The unique index on
// (student_id, assignment_id) plus the Version column make re-submission an
// update rather than a duplicate, even under concurrent writers.
type Submission struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	AssignmentID uint             `json:"assignment_id" gorm:"not null;uniqueIndex:idx_student_assignment;index"`
	CourseID     uint             `json:"course_id" gorm:"not null;index"`
	StudentID    string           `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_student_assignment"`
	Status       SubmissionStatus `json:"status" gorm:"size:32;default:Submitted;index"`

	SubmittedAt time.Time  `json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at"`
	GradedBy    *string    `json:"graded_by" gorm:"size:255"`
	GradeNote   *string    `json:"grade_note" gorm:"type:text"`
	FileURL     *string    `json:"file_url" gorm:"size:500"`

	// Version is bumped on every write; updates are conditional on it.
	Version int `json:"version" gorm:"not null;default:1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Assignment Assignment `json:"assignment,omitempty" gorm:"foreignKey:AssignmentID"`
	Student    User       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Submission) TableName() string {
	return "submissions"
}

// EffectiveStatus returns the stored status, defaulting empty to Submitted.
func (s *Submission) EffectiveStatus() SubmissionStatus {
	if s.Status == "" {
		return SubmissionSubmitted
	}
	return s.Status
}

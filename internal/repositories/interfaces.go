package repositories

import (
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	CreatedBy *string `json:"created_by"`
	Name      *string `json:"name"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "name"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type EnrollmentFilters struct {
	Status    *models.EnrollmentStatus `json:"status"`
	StudentID *string                  `json:"student_id"`
	CourseID  *uint                    `json:"course_id"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
}

type AssignmentFilters struct {
	CourseID  *uint      `json:"course_id"`
	CreatedBy *string    `json:"created_by"`
	DueFrom   *time.Time `json:"due_from"`
	DueTo     *time.Time `json:"due_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

type SubmissionFilters struct {
	Status       *models.SubmissionStatus `json:"status"`
	StudentID    *string                  `json:"student_id"`
	AssignmentID *uint                    `json:"assignment_id"`
	CourseID     *uint                    `json:"course_id"`
	DateFrom     *time.Time               `json:"date_from"`
	DateTo       *time.Time               `json:"date_to"`
	Limit        int                      `json:"limit"`
	Offset       int                      `json:"offset"`
}

type ScheduleFilters struct {
	StudentID *string    `json:"student_id"`
	CourseID  *uint      `json:"course_id"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

type ResourceFilters struct {
	Category *string `json:"category"`
	Query    *string `json:"query"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type CourseStats struct {
	EnrolledCount   int `json:"enrolled_count"`
	CompletedCount  int `json:"completed_count"`
	PendingCount    int `json:"pending_count"`
	AssignmentCount int `json:"assignment_count"`
	SubmissionCount int `json:"submission_count"`
}

type OverviewCounts struct {
	Students    int64 `json:"students"`
	Courses     int64 `json:"courses"`
	Assignments int64 `json:"assignments"`
	Submissions int64 `json:"submissions"`
	Pending     int64 `json:"pending"`
}

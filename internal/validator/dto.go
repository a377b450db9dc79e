package validator

import (
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url,max=500"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CoverURL    *string `json:"cover_url" validate:"omitempty,url,max=500"`
}

// EnrollmentRequest is a student asking to join a course
type EnrollmentRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// DirectAssignRequest is an admin placing a student into a course without
// the request/approve round trip
type DirectAssignRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  uint   `json:"course_id" validate:"required"`
}

// AssignmentCreateRequest represents the request structure for creating assignments
type AssignmentCreateRequest struct {
	CourseID     uint                   `json:"course_id" validate:"required"`
	Title        string                 `json:"title" validate:"required,min=1,max=200"`
	Instructions string                 `json:"instructions" validate:"omitempty,max=5000"`
	DueDate      *time.Time             `json:"due_date"`
	Attachments  []models.AttachmentRef `json:"attachments" validate:"omitempty,dive"`
}

// AssignmentUpdateRequest represents the request structure for updating assignments
type AssignmentUpdateRequest struct {
	Title        *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Instructions *string                `json:"instructions" validate:"omitempty,max=5000"`
	DueDate      *time.Time             `json:"due_date"`
	Attachments  []models.AttachmentRef `json:"attachments" validate:"omitempty,dive"`
}

// SubmitWorkRequest is a student handing in work for an assignment
type SubmitWorkRequest struct {
	AssignmentID uint    `json:"assignment_id" validate:"required"`
	FileURL      *string `json:"file_url" validate:"omitempty,url,max=500"`
}

// GradeSubmissionRequest marks a submission graded with an optional note
type GradeSubmissionRequest struct {
	SubmissionID uint    `json:"submission_id" validate:"required"`
	Note         *string `json:"note" validate:"omitempty,max=2000"`
}

// ScheduleCreateRequest represents the request structure for creating class schedules
type ScheduleCreateRequest struct {
	StudentID  string    `json:"student_id" validate:"required"`
	CourseID   uint      `json:"course_id" validate:"required"`
	ClassAt    time.Time `json:"class_at" validate:"required"`
	Teacher    string    `json:"teacher" validate:"omitempty,max=100"`
	Platform   string    `json:"platform" validate:"omitempty,max=50"`
	MeetingURL string    `json:"meeting_url" validate:"omitempty,url,max=500"`
}

// ScheduleUpdateRequest represents the request structure for updating class schedules
type ScheduleUpdateRequest struct {
	ClassAt    *time.Time `json:"class_at"`
	Teacher    *string    `json:"teacher" validate:"omitempty,max=100"`
	Platform   *string    `json:"platform" validate:"omitempty,max=50"`
	MeetingURL *string    `json:"meeting_url" validate:"omitempty,url,max=500"`
}

// NoteCreateRequest is admin content addressed to an explicit student list
type NoteCreateRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=200"`
	Body          string   `json:"body" validate:"omitempty,max=10000"`
	AttachmentURL *string  `json:"attachment_url" validate:"omitempty,url,max=500"`
	StudentIDs    []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

// NoteUpdateRequest updates note content and/or its audience
type NoteUpdateRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Body          *string  `json:"body" validate:"omitempty,max=10000"`
	AttachmentURL *string  `json:"attachment_url" validate:"omitempty,url,max=500"`
	StudentIDs    []string `json:"student_ids" validate:"omitempty,dive,required"`
}

// QuizCreateRequest represents the request structure for creating quizzes
type QuizCreateRequest struct {
	CourseID  uint        `json:"course_id" validate:"required"`
	Title     string      `json:"title" validate:"required,min=1,max=200"`
	DueDate   *time.Time  `json:"due_date"`
	Questions interface{} `json:"questions"`
}

// QuizUpdateRequest represents the request structure for updating quizzes
type QuizUpdateRequest struct {
	Title     *string     `json:"title" validate:"omitempty,min=1,max=200"`
	DueDate   *time.Time  `json:"due_date"`
	Questions interface{} `json:"questions"`
}

// ResourceCreateRequest represents the request structure for library resources
type ResourceCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	FileURL     string `json:"file_url" validate:"required,url,max=500"`
	Category    string `json:"category" validate:"omitempty,max=50"`
}

// ResourceUpdateRequest represents the request structure for updating resources
type ResourceUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	FileURL     *string `json:"file_url" validate:"omitempty,url,max=500"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
}

// ProfileUpdateRequest lets a user change their own display fields
type ProfileUpdateRequest struct {
	FullName  string  `json:"full_name" validate:"required,min=1,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url,max=500"`
}

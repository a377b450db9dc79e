package services

import (
	"context"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest
type CreateAssignmentRequest = validator.AssignmentCreateRequest
type UpdateAssignmentRequest = validator.AssignmentUpdateRequest
type SubmitWorkRequest = validator.SubmitWorkRequest
type GradeSubmissionRequest = validator.GradeSubmissionRequest
type DirectAssignRequest = validator.DirectAssignRequest
type CreateScheduleRequest = validator.ScheduleCreateRequest
type UpdateScheduleRequest = validator.ScheduleUpdateRequest
type CreateNoteRequest = validator.NoteCreateRequest
type UpdateNoteRequest = validator.NoteUpdateRequest
type CreateQuizRequest = validator.QuizCreateRequest
type UpdateQuizRequest = validator.QuizUpdateRequest
type CreateResourceRequest = validator.ResourceCreateRequest
type UpdateResourceRequest = validator.ResourceUpdateRequest
type UpdateProfileRequest = validator.ProfileUpdateRequest

type CourseResponse struct {
	*models.Course
	Stats *repositories.CourseStats `json:"stats,omitempty"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type AssignmentListResponse struct {
	Assignments []*models.Assignment `json:"assignments"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

type SubmissionListResponse struct {
	Submissions []*models.Submission `json:"submissions"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

// ===== SERVICE INTERFACES =====

// EnrollmentService owns the approval state machine. Requesting is
// idempotent; approving, rejecting and completing are conditional writes
// that collapse concurrent admin actions to one effective decision.
type EnrollmentService interface {
	// Request records a student's wish to join a course. Repeat calls while
	// a row exists return the existing row unchanged.
	Request(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error)

	// Approve moves pending to enrolled. Returns ErrEnrollmentNotPending if
	// the request was already decided.
	Approve(ctx context.Context, enrollmentID uint, adminID string) (*models.Enrollment, error)

	// Reject removes a pending request so the student reads back as
	// not-enrolled again.
	Reject(ctx context.Context, enrollmentID uint, adminID string) error

	// Complete moves enrolled to completed.
	Complete(ctx context.Context, enrollmentID uint, adminID string) (*models.Enrollment, error)

	// AssignDirect enrolls a student without the request round trip.
	AssignDirect(ctx context.Context, req *DirectAssignRequest, adminID string) (*models.Enrollment, error)

	// Withdraw removes a student from a course entirely.
	Withdraw(ctx context.Context, enrollmentID uint, adminID string) error

	ListPending(ctx context.Context) ([]viewmodel.PendingRequest, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	GetStatus(ctx context.Context, studentID string, courseID uint) (models.EnrollmentStatus, error)
}

type CourseService interface {
	Create(ctx context.Context, req *CreateCourseRequest, creatorID string) (*CourseResponse, error)

	// GetByID returns the course with its rosters projected from enrollments.
	GetByID(ctx context.Context, id uint) (*CourseResponse, error)

	List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateCourseRequest, adminID string) (*CourseResponse, error)

	// Delete tears down the course and everything under it: assignments and
	// their submissions in bounded chunks, then enrollments, schedules and
	// quizzes, then the course row, all in one transaction.
	Delete(ctx context.Context, id uint, adminID string) error

	GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error)
}

type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, creatorID string) (*models.Assignment, error)
	GetByID(ctx context.Context, id uint) (*models.Assignment, error)
	List(ctx context.Context, filters repositories.AssignmentFilters) (*AssignmentListResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error)
	Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, adminID string) (*models.Assignment, error)

	// Delete removes the assignment and its submissions.
	Delete(ctx context.Context, id uint, adminID string) error
}

type SubmissionService interface {
	// Submit upserts the student's work. A second submit for the same
	// assignment updates the existing row; concurrent re-submissions are
	// resolved by a version check with one retry before ErrWriteConflict.
	Submit(ctx context.Context, studentID string, req *SubmitWorkRequest) (*models.Submission, error)

	Grade(ctx context.Context, req *GradeSubmissionRequest, graderID string) (*models.Submission, error)
	RequestRevision(ctx context.Context, req *GradeSubmissionRequest, graderID string) (*models.Submission, error)

	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	List(ctx context.Context, filters repositories.SubmissionFilters) (*SubmissionListResponse, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
}

type ScheduleService interface {
	Create(ctx context.Context, req *CreateScheduleRequest, creatorID string) (*models.Schedule, error)
	GetByID(ctx context.Context, id uint) (*models.Schedule, error)
	List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Schedule, error)
	Update(ctx context.Context, id uint, req *UpdateScheduleRequest, adminID string) (*models.Schedule, error)
	Delete(ctx context.Context, id uint, adminID string) error
}

// ContentService covers the three content kinds with their different
// audience rules: notes go to an explicit student list, quizzes to a
// course's enrolled students, resources to everyone.
type ContentService interface {
	CreateNote(ctx context.Context, req *CreateNoteRequest, creatorID string) (*models.Note, error)
	UpdateNote(ctx context.Context, id uint, req *UpdateNoteRequest, adminID string) (*models.Note, error)
	DeleteNote(ctx context.Context, id uint, adminID string) error
	ListNotes(ctx context.Context, limit, offset int) ([]*models.Note, int64, error)
	ListNotesForStudent(ctx context.Context, studentID string) ([]models.Note, error)

	CreateQuiz(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, id uint, req *UpdateQuizRequest, adminID string) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id uint, adminID string) error
	ListQuizzes(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error)
	ListQuizzesForStudent(ctx context.Context, studentID string) ([]models.Quiz, error)

	CreateResource(ctx context.Context, req *CreateResourceRequest, creatorID string) (*models.Resource, error)
	UpdateResource(ctx context.Context, id uint, req *UpdateResourceRequest, adminID string) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uint, adminID string) error
	ListResources(ctx context.Context, filters repositories.ResourceFilters) ([]*models.Resource, int64, error)
}

// StudentService builds the student-facing view models.
type StudentService interface {
	GetDashboard(ctx context.Context, studentID string) (*viewmodel.StudentDashboard, error)
	GetProfile(ctx context.Context, studentID string) (*models.User, error)
	UpdateProfile(ctx context.Context, studentID string, req *UpdateProfileRequest) (*models.User, error)
}

// DashboardService builds the admin-facing view models.
type DashboardService interface {
	GetAdminDashboard(ctx context.Context) (*viewmodel.AdminDashboard, error)
	GetOverviewCounts(ctx context.Context) (*repositories.OverviewCounts, error)
	ListStudents(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error)
}

// ExportService renders admin reports as XLSX workbooks.
type ExportService interface {
	// ExportCourseProgress writes one row per enrolled student with their
	// derived progress and per-assignment submission statuses.
	ExportCourseProgress(ctx context.Context, courseID uint) ([]byte, error)

	// ExportGrades writes one row per submission in a course with its
	// grading outcome.
	ExportGrades(ctx context.Context, courseID uint) ([]byte, error)

	// ExportPendingEnrollments writes the current approval queue.
	ExportPendingEnrollments(ctx context.Context) ([]byte, error)
}

// ServiceManager aggregates every service behind one handle.
type ServiceManager interface {
	// Core service getters
	Enrollment() EnrollmentService
	Course() CourseService
	Assignment() AssignmentService
	Submission() SubmissionService
	Schedule() ScheduleService
	Content() ContentService
	Student() StudentService
	Dashboard() DashboardService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

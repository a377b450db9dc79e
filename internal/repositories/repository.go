package repositories

import "context"

// Repository aggregates all entity repositories behind one handle.
type Repository interface {
	// Course domain
	Course() CourseRepository
	Enrollment() EnrollmentRepository

	// Coursework domain
	Assignment() AssignmentRepository
	Submission() SubmissionRepository

	// Scheduling and content domain
	Schedule() ScheduleRepository
	Note() NoteRepository
	Quiz() QuizRepository
	Resource() ResourceRepository

	// User domain (directory is owned by the identity provider)
	User() UserRepository

	// Dashboard domain (whole-collection snapshot loads)
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}

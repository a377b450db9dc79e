package repositories

import (
	"context"

	"github.com/classbridge/lms-service/internal/models"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, assignment *models.Assignment) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Assignment, error)
	List(ctx context.Context, db *gorm.DB, filters AssignmentFilters) ([]*models.Assignment, int64, error)
	ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Assignment, error)
	ListIDsByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]uint, error)
	Update(ctx context.Context, db *gorm.DB, assignment *models.Assignment) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	DeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, db *gorm.DB, submission *models.Submission) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Submission, error)
	GetByStudentAndAssignment(ctx context.Context, db *gorm.DB, studentID string, assignmentID uint) (*models.Submission, error)
	List(ctx context.Context, db *gorm.DB, filters SubmissionFilters) ([]*models.Submission, int64, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Submission, error)
	ListByAssignment(ctx context.Context, db *gorm.DB, assignmentID uint) ([]models.Submission, error)

	// UpdateIfVersion applies updates only when the stored version still
	// matches. Returns the number of rows changed; zero means a concurrent
	// writer got there first.
	UpdateIfVersion(ctx context.Context, db *gorm.DB, id uint, version int, updates map[string]interface{}) (int64, error)

	DeleteByAssignmentIDs(ctx context.Context, db *gorm.DB, assignmentIDs []uint) error
}

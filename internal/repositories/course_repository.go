package repositories

import (
	"context"

	"github.com/classbridge/lms-service/internal/models"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(ctx context.Context, db *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Course, error)
	List(ctx context.Context, db *gorm.DB, filters CourseFilters) ([]*models.Course, int64, error)
	Update(ctx context.Context, db *gorm.DB, course *models.Course) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error

	GetStats(ctx context.Context, db *gorm.DB, id uint) (*CourseStats, error)
	ExistsByID(ctx context.Context, db *gorm.DB, id uint) (bool, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error)
	List(ctx context.Context, db *gorm.DB, filters EnrollmentFilters) ([]*models.Enrollment, int64, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Enrollment, error)

	// UpdateStatusIf transitions the row only when its current status matches
	// `from`, so two concurrent approvals collapse to one effective write.
	// Returns the number of rows changed.
	UpdateStatusIf(ctx context.Context, db *gorm.DB, id uint, from, to models.EnrollmentStatus, updates map[string]interface{}) (int64, error)

	DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error
}

package repositories

import (
	"context"

	"github.com/classbridge/lms-service/internal/models"
	"gorm.io/gorm"
)

type ScheduleRepository interface {
	Create(ctx context.Context, db *gorm.DB, schedule *models.Schedule) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Schedule, error)
	List(ctx context.Context, db *gorm.DB, filters ScheduleFilters) ([]*models.Schedule, int64, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Schedule, error)
	Update(ctx context.Context, db *gorm.DB, schedule *models.Schedule) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error
}

type NoteRepository interface {
	Create(ctx context.Context, db *gorm.DB, note *models.Note, studentIDs []string) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Note, error)
	List(ctx context.Context, db *gorm.DB, limit, offset int) ([]*models.Note, int64, error)
	ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Note, error)
	Update(ctx context.Context, db *gorm.DB, note *models.Note, studentIDs []string) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}

type QuizRepository interface {
	Create(ctx context.Context, db *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Quiz, error)
	List(ctx context.Context, db *gorm.DB, limit, offset int) ([]*models.Quiz, int64, error)
	ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Quiz, error)
	ListByCourses(ctx context.Context, db *gorm.DB, courseIDs []uint) ([]models.Quiz, error)
	Update(ctx context.Context, db *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
	DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error
}

type ResourceRepository interface {
	Create(ctx context.Context, db *gorm.DB, resource *models.Resource) error
	GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Resource, error)
	List(ctx context.Context, db *gorm.DB, filters ResourceFilters) ([]*models.Resource, int64, error)
	Update(ctx context.Context, db *gorm.DB, resource *models.Resource) error
	Delete(ctx context.Context, db *gorm.DB, id uint) error
}

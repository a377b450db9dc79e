package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/cache"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
)

type assignmentPostgreSQL struct {
	db         *gorm.DB
	statsCache *cache.CacheHelper
}

func NewAssignmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AssignmentRepository {
	return &assignmentPostgreSQL{
		db:         db,
		statsCache: cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

func (r *assignmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *assignmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(assignment).Error; err != nil {
		return handleDBError(err, "create assignment")
	}
	return nil
}

func (r *assignmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	db := r.getDB(tx)
	var assignment models.Assignment

	if err := db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, handleDBError(err, "get assignment by id")
	}

	return &assignment, nil
}

func (r *assignmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	db := r.getDB(tx)
	var assignments []*models.Assignment
	var total int64

	query := db.WithContext(ctx).Model(&models.Assignment{})
	query = applyAssignmentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count assignments")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, handleDBError(err, "list assignments")
	}

	return assignments, total, nil
}

func (r *assignmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Assignment, error) {
	db := r.getDB(tx)
	var assignments []models.Assignment

	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&assignments).Error; err != nil {
		return nil, handleDBError(err, "list assignments by course")
	}

	return assignments, nil
}

func (r *assignmentPostgreSQL) ListIDsByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]uint, error) {
	db := r.getDB(tx)
	var ids []uint

	if err := db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, handleDBError(err, "list assignment ids by course")
	}

	return ids, nil
}

func (r *assignmentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(assignment).Error; err != nil {
		return handleDBError(err, "update assignment")
	}
	return nil
}

func (r *assignmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Assignment{}, id).Error; err != nil {
		return handleDBError(err, "delete assignment")
	}
	return nil
}

// DeleteByIDs removes assignments in bounded chunks so a course teardown
// with a large assignment list never issues one oversized statement.
func (r *assignmentPostgreSQL) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uint) error {
	db := r.getDB(tx)

	for _, chunk := range chunkIDs(ids) {
		if err := db.WithContext(ctx).
			Where("id IN ?", chunk).
			Delete(&models.Assignment{}).Error; err != nil {
			return handleDBError(err, "delete assignments by ids")
		}
	}

	return nil
}

// ===== SUBMISSION REPOSITORY =====

type submissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubmissionRepository {
	return &submissionPostgreSQL{db: db}
}

func (r *submissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *submissionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(submission).Error; err != nil {
		return handleDBError(err, "create submission")
	}
	return nil
}

func (r *submissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := r.getDB(tx)
	var submission models.Submission

	if err := db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, handleDBError(err, "get submission by id")
	}

	return &submission, nil
}

func (r *submissionPostgreSQL) GetByStudentAndAssignment(ctx context.Context, tx *gorm.DB, studentID string, assignmentID uint) (*models.Submission, error) {
	db := r.getDB(tx)
	var submission models.Submission

	if err := db.WithContext(ctx).
		Where("student_id = ? AND assignment_id = ?", studentID, assignmentID).
		First(&submission).Error; err != nil {
		return nil, handleDBError(err, "get submission by student and assignment")
	}

	return &submission, nil
}

func (r *submissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	db := r.getDB(tx)
	var submissions []*models.Submission
	var total int64

	query := db.WithContext(ctx).Model(&models.Submission{})
	query = applySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count submissions")
	}

	query = query.Order("submitted_at DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, handleDBError(err, "list submissions")
	}

	return submissions, total, nil
}

func (r *submissionPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Submission, error) {
	db := r.getDB(tx)
	var submissions []models.Submission

	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&submissions).Error; err != nil {
		return nil, handleDBError(err, "list submissions by student")
	}

	return submissions, nil
}

func (r *submissionPostgreSQL) ListByAssignment(ctx context.Context, tx *gorm.DB, assignmentID uint) ([]models.Submission, error) {
	db := r.getDB(tx)
	var submissions []models.Submission

	if err := db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Find(&submissions).Error; err != nil {
		return nil, handleDBError(err, "list submissions by assignment")
	}

	return submissions, nil
}

// UpdateIfVersion bumps the version and applies updates in one statement,
// guarded by the version the caller read. Zero rows affected means another
// writer committed first and the caller must re-read before retrying.
func (r *submissionPostgreSQL) UpdateIfVersion(ctx context.Context, tx *gorm.DB, id uint, version int, updates map[string]interface{}) (int64, error) {
	db := r.getDB(tx)

	values := map[string]interface{}{"version": gorm.Expr("version + 1")}
	for k, v := range updates {
		values[k] = v
	}

	result := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ? AND version = ?", id, version).
		Updates(values)
	if result.Error != nil {
		return 0, handleDBError(result.Error, "conditional submission update")
	}

	return result.RowsAffected, nil
}

// DeleteByAssignmentIDs removes all submissions under the given assignments,
// chunked the same way assignment deletes are.
func (r *submissionPostgreSQL) DeleteByAssignmentIDs(ctx context.Context, tx *gorm.DB, assignmentIDs []uint) error {
	db := r.getDB(tx)

	for _, chunk := range chunkIDs(assignmentIDs) {
		if err := db.WithContext(ctx).
			Where("assignment_id IN ?", chunk).
			Delete(&models.Submission{}).Error; err != nil {
			return handleDBError(err, "delete submissions by assignment ids")
		}
	}

	return nil
}

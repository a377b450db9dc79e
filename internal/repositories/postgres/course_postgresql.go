package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/cache"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
)

type coursePostgreSQL struct {
	db          *gorm.DB
	cacheHelper *cache.CacheHelper
	statsCache  *cache.CacheHelper
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &coursePostgreSQL{
		db:          db,
		cacheHelper: cache.NewCacheHelper(redisClient, cache.CourseCacheConfig.Prefix),
		statsCache:  cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

func (r *coursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== BASIC CRUD OPERATIONS =====

func (r *coursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}

	cache.SafeInvalidatePattern(ctx, r.cacheHelper, "list:*")
	return nil
}

func (r *coursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := r.getDB(tx)
	var course models.Course

	cacheKey := fmt.Sprintf("id:%d", id)
	if err := r.cacheHelper.Get(ctx, cacheKey, &course); err == nil {
		return &course, nil
	}

	if err := db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}

	if err := r.cacheHelper.Set(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL); err != nil {
		// Cache failures never fail the read
		_ = err
	}

	return &course, nil
}

func (r *coursePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	db := r.getDB(tx)
	var courses []*models.Course
	var total int64

	query := db.WithContext(ctx).Model(&models.Course{})

	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filters.Name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count courses")
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, handleDBError(err, "list courses")
	}

	return courses, total, nil
}

func (r *coursePostgreSQL) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(course).Error; err != nil {
		return handleDBError(err, "update course")
	}

	r.invalidate(ctx, course.ID)
	return nil
}

func (r *coursePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return handleDBError(err, "delete course")
	}

	r.invalidate(ctx, id)
	return nil
}

// ===== STATISTICS =====

func (r *coursePostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.CourseStats, error) {
	db := r.getDB(tx)
	stats := &repositories.CourseStats{}

	type statusCount struct {
		Status models.EnrollmentStatus
		Count  int
	}
	var counts []statusCount
	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("status, COUNT(*) as count").
		Where("course_id = ?", id).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, handleDBError(err, "count enrollments by status")
	}

	for _, c := range counts {
		switch c.Status {
		case models.EnrollmentEnrolled:
			stats.EnrolledCount = c.Count
		case models.EnrollmentCompleted:
			stats.CompletedCount = c.Count
		case models.EnrollmentPending:
			stats.PendingCount = c.Count
		}
	}

	var assignmentCount int64
	if err := db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("course_id = ?", id).
		Count(&assignmentCount).Error; err != nil {
		return nil, handleDBError(err, "count course assignments")
	}
	stats.AssignmentCount = int(assignmentCount)

	var submissionCount int64
	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("course_id = ?", id).
		Count(&submissionCount).Error; err != nil {
		return nil, handleDBError(err, "count course submissions")
	}
	stats.SubmissionCount = int(submissionCount)

	return stats, nil
}

func (r *coursePostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check course exists")
	}

	return count > 0, nil
}

func (r *coursePostgreSQL) invalidate(ctx context.Context, id uint) {
	cache.SafeDelete(ctx, r.cacheHelper, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, r.cacheHelper, "list:*")
	cache.SafeInvalidatePattern(ctx, r.statsCache, fmt.Sprintf("course:%d:*", id))
}

// ===== ENROLLMENT REPOSITORY =====

type enrollmentPostgreSQL struct {
	db         *gorm.DB
	statsCache *cache.CacheHelper
}

func NewEnrollmentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EnrollmentRepository {
	return &enrollmentPostgreSQL{
		db:         db,
		statsCache: cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

func (r *enrollmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *enrollmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(enrollment).Error; err != nil {
		return handleDBError(err, "create enrollment")
	}

	cache.SafeInvalidatePattern(ctx, r.statsCache, "overview*")
	return nil
}

func (r *enrollmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	db := r.getDB(tx)
	var enrollment models.Enrollment

	if err := db.WithContext(ctx).First(&enrollment, id).Error; err != nil {
		return nil, handleDBError(err, "get enrollment by id")
	}

	return &enrollment, nil
}

func (r *enrollmentPostgreSQL) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error) {
	db := r.getDB(tx)
	var enrollment models.Enrollment

	if err := db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, handleDBError(err, "get enrollment by student and course")
	}

	return &enrollment, nil
}

func (r *enrollmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	db := r.getDB(tx)
	var enrollments []*models.Enrollment
	var total int64

	query := db.WithContext(ctx).Model(&models.Enrollment{})
	query = applyEnrollmentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count enrollments")
	}

	// Oldest request first so admins review the queue in arrival order.
	// Ties break on student then course for a stable listing.
	query = query.Order("requested_at ASC, student_id ASC, course_id ASC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&enrollments).Error; err != nil {
		return nil, 0, handleDBError(err, "list enrollments")
	}

	return enrollments, total, nil
}

func (r *enrollmentPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Enrollment, error) {
	db := r.getDB(tx)
	var enrollments []models.Enrollment

	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&enrollments).Error; err != nil {
		return nil, handleDBError(err, "list enrollments by student")
	}

	return enrollments, nil
}

func (r *enrollmentPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Enrollment, error) {
	db := r.getDB(tx)
	var enrollments []models.Enrollment

	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&enrollments).Error; err != nil {
		return nil, handleDBError(err, "list enrollments by course")
	}

	return enrollments, nil
}

func (r *enrollmentPostgreSQL) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uint, from, to models.EnrollmentStatus, updates map[string]interface{}) (int64, error) {
	db := r.getDB(tx)

	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	result := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return 0, handleDBError(result.Error, "conditional enrollment status update")
	}

	if result.RowsAffected > 0 {
		cache.SafeInvalidatePattern(ctx, r.statsCache, "overview*")
	}

	return result.RowsAffected, nil
}

func (r *enrollmentPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.Enrollment{}).Error; err != nil {
		return handleDBError(err, "delete enrollments by course")
	}

	cache.SafeInvalidatePattern(ctx, r.statsCache, "overview*")
	return nil
}

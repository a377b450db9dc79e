package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
)

// ===== SCHEDULE REPOSITORY =====

type schedulePostgreSQL struct {
	db *gorm.DB
}

func NewSchedulePostgreSQL(db *gorm.DB) repositories.ScheduleRepository {
	return &schedulePostgreSQL{db: db}
}

func (r *schedulePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *schedulePostgreSQL) Create(ctx context.Context, tx *gorm.DB, schedule *models.Schedule) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(schedule).Error; err != nil {
		return handleDBError(err, "create schedule")
	}
	return nil
}

func (r *schedulePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Schedule, error) {
	db := r.getDB(tx)
	var schedule models.Schedule

	if err := db.WithContext(ctx).First(&schedule, id).Error; err != nil {
		return nil, handleDBError(err, "get schedule by id")
	}

	return &schedule, nil
}

func (r *schedulePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	db := r.getDB(tx)
	var schedules []*models.Schedule
	var total int64

	query := db.WithContext(ctx).Model(&models.Schedule{})

	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.From != nil {
		query = query.Where("class_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("class_at <= ?", *filters.To)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count schedules")
	}

	query = query.Order("class_at ASC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&schedules).Error; err != nil {
		return nil, 0, handleDBError(err, "list schedules")
	}

	return schedules, total, nil
}

func (r *schedulePostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Schedule, error) {
	db := r.getDB(tx)
	var schedules []models.Schedule

	if err := db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("class_at ASC").
		Find(&schedules).Error; err != nil {
		return nil, handleDBError(err, "list schedules by student")
	}

	return schedules, nil
}

func (r *schedulePostgreSQL) Update(ctx context.Context, tx *gorm.DB, schedule *models.Schedule) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(schedule).Error; err != nil {
		return handleDBError(err, "update schedule")
	}
	return nil
}

func (r *schedulePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Schedule{}, id).Error; err != nil {
		return handleDBError(err, "delete schedule")
	}
	return nil
}

func (r *schedulePostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.Schedule{}).Error; err != nil {
		return handleDBError(err, "delete schedules by course")
	}
	return nil
}

// ===== NOTE REPOSITORY =====

type notePostgreSQL struct {
	db *gorm.DB
}

func NewNotePostgreSQL(db *gorm.DB) repositories.NoteRepository {
	return &notePostgreSQL{db: db}
}

func (r *notePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *notePostgreSQL) Create(ctx context.Context, tx *gorm.DB, note *models.Note, studentIDs []string) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(note).Error; err != nil {
		return handleDBError(err, "create note")
	}

	return r.replaceAudience(ctx, db, note, studentIDs)
}

func (r *notePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Note, error) {
	db := r.getDB(tx)
	var note models.Note

	if err := db.WithContext(ctx).
		Preload("Students").
		First(&note, id).Error; err != nil {
		return nil, handleDBError(err, "get note by id")
	}

	return &note, nil
}

func (r *notePostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Note, int64, error) {
	db := r.getDB(tx)
	var notes []*models.Note
	var total int64

	query := db.WithContext(ctx).Model(&models.Note{}).Preload("Students")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count notes")
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&notes).Error; err != nil {
		return nil, 0, handleDBError(err, "list notes")
	}

	return notes, total, nil
}

func (r *notePostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]models.Note, error) {
	db := r.getDB(tx)
	var notes []models.Note

	if err := db.WithContext(ctx).
		Joins("INNER JOIN note_students ns ON ns.note_id = notes.id").
		Where("ns.user_id = ?", studentID).
		Order("notes.created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, handleDBError(err, "list notes by student")
	}

	return notes, nil
}

func (r *notePostgreSQL) Update(ctx context.Context, tx *gorm.DB, note *models.Note, studentIDs []string) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Save(note).Error; err != nil {
		return handleDBError(err, "update note")
	}

	if studentIDs == nil {
		return nil
	}
	return r.replaceAudience(ctx, db, note, studentIDs)
}

func (r *notePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).
		Model(&models.Note{ID: id}).
		Association("Students").Clear(); err != nil {
		return handleDBError(err, "clear note audience")
	}

	if err := db.WithContext(ctx).Delete(&models.Note{}, id).Error; err != nil {
		return handleDBError(err, "delete note")
	}
	return nil
}

func (r *notePostgreSQL) replaceAudience(ctx context.Context, db *gorm.DB, note *models.Note, studentIDs []string) error {
	var students []models.User
	if len(studentIDs) > 0 {
		if err := db.WithContext(ctx).
			Where("id IN ?", studentIDs).
			Find(&students).Error; err != nil {
			return handleDBError(err, "load note audience")
		}
	}

	if err := db.WithContext(ctx).
		Model(note).
		Association("Students").Replace(&students); err != nil {
		return handleDBError(err, "replace note audience")
	}

	return nil
}

// ===== QUIZ REPOSITORY =====

type quizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &quizPostgreSQL{db: db}
}

func (r *quizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *quizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(quiz).Error; err != nil {
		return handleDBError(err, "create quiz")
	}
	return nil
}

func (r *quizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := r.getDB(tx)
	var quiz models.Quiz

	if err := db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, handleDBError(err, "get quiz by id")
	}

	return &quiz, nil
}

func (r *quizPostgreSQL) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Quiz, int64, error) {
	db := r.getDB(tx)
	var quizzes []*models.Quiz
	var total int64

	query := db.WithContext(ctx).Model(&models.Quiz{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count quizzes")
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, handleDBError(err, "list quizzes")
	}

	return quizzes, total, nil
}

func (r *quizPostgreSQL) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.Quiz, error) {
	db := r.getDB(tx)
	var quizzes []models.Quiz

	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Find(&quizzes).Error; err != nil {
		return nil, handleDBError(err, "list quizzes by course")
	}

	return quizzes, nil
}

func (r *quizPostgreSQL) ListByCourses(ctx context.Context, tx *gorm.DB, courseIDs []uint) ([]models.Quiz, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	db := r.getDB(tx)
	var quizzes []models.Quiz

	if err := db.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("created_at DESC").
		Find(&quizzes).Error; err != nil {
		return nil, handleDBError(err, "list quizzes by courses")
	}

	return quizzes, nil
}

func (r *quizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(quiz).Error; err != nil {
		return handleDBError(err, "update quiz")
	}
	return nil
}

func (r *quizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Quiz{}, id).Error; err != nil {
		return handleDBError(err, "delete quiz")
	}
	return nil
}

func (r *quizPostgreSQL) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&models.Quiz{}).Error; err != nil {
		return handleDBError(err, "delete quizzes by course")
	}
	return nil
}

// ===== RESOURCE REPOSITORY =====

type resourcePostgreSQL struct {
	db *gorm.DB
}

func NewResourcePostgreSQL(db *gorm.DB) repositories.ResourceRepository {
	return &resourcePostgreSQL{db: db}
}

func (r *resourcePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *resourcePostgreSQL) Create(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(resource).Error; err != nil {
		return handleDBError(err, "create resource")
	}
	return nil
}

func (r *resourcePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Resource, error) {
	db := r.getDB(tx)
	var resource models.Resource

	if err := db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, handleDBError(err, "get resource by id")
	}

	return &resource, nil
}

func (r *resourcePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	db := r.getDB(tx)
	var resources []*models.Resource
	var total int64

	query := db.WithContext(ctx).Model(&models.Resource{})

	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Query != nil {
		search := "%" + *filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count resources")
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&resources).Error; err != nil {
		return nil, 0, handleDBError(err, "list resources")
	}

	return resources, total, nil
}

func (r *resourcePostgreSQL) Update(ctx context.Context, tx *gorm.DB, resource *models.Resource) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(resource).Error; err != nil {
		return handleDBError(err, "update resource")
	}
	return nil
}

func (r *resourcePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Resource{}, id).Error; err != nil {
		return handleDBError(err, "delete resource")
	}
	return nil
}

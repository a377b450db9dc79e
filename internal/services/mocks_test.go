package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
)

// In-memory fakes for service tests. Only the repositories the tested paths
// touch are backed by real state; the rest return nil.

var errDuplicateKey = errors.New("duplicate key value violates unique constraint")

type fakeRepository struct {
	enrollments *fakeEnrollmentRepo
	courses     *fakeCourseRepo
	users       *fakeUserRepo
	assignments *fakeAssignmentRepo
	submissions *fakeSubmissionRepo
	schedules   *fakeScheduleRepo
	quizzes     *fakeQuizRepo
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		enrollments: &fakeEnrollmentRepo{rows: make(map[uint]*models.Enrollment)},
		courses:     &fakeCourseRepo{rows: make(map[uint]*models.Course)},
		users:       &fakeUserRepo{rows: make(map[string]*models.User)},
		assignments: &fakeAssignmentRepo{rows: make(map[uint]*models.Assignment)},
		submissions: &fakeSubmissionRepo{rows: make(map[uint]*models.Submission)},
		schedules:   &fakeScheduleRepo{rows: make(map[uint]*models.Schedule)},
		quizzes:     &fakeQuizRepo{rows: make(map[uint]*models.Quiz)},
	}
}

func (f *fakeRepository) Course() repositories.CourseRepository         { return f.courses }
func (f *fakeRepository) Enrollment() repositories.EnrollmentRepository { return f.enrollments }
func (f *fakeRepository) Assignment() repositories.AssignmentRepository { return f.assignments }
func (f *fakeRepository) Submission() repositories.SubmissionRepository { return f.submissions }
func (f *fakeRepository) Schedule() repositories.ScheduleRepository     { return f.schedules }
func (f *fakeRepository) Note() repositories.NoteRepository             { return nil }
func (f *fakeRepository) Quiz() repositories.QuizRepository             { return f.quizzes }
func (f *fakeRepository) Resource() repositories.ResourceRepository     { return nil }
func (f *fakeRepository) User() repositories.UserRepository             { return f.users }
func (f *fakeRepository) Dashboard() repositories.DashboardRepository   { return nil }
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== ENROLLMENTS =====

type fakeEnrollmentRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Enrollment
	nextID uint
}

func (r *fakeEnrollmentRepo) Create(ctx context.Context, db *gorm.DB, e *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.StudentID == e.StudentID && row.CourseID == e.CourseID {
			return errDuplicateKey
		}
	}
	r.nextID++
	e.ID = r.nextID
	clone := *e
	r.rows[e.ID] = &clone
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, db *gorm.DB, studentID string, courseID uint) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.StudentID == studentID && row.CourseID == courseID {
			clone := *row
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEnrollmentRepo) List(ctx context.Context, db *gorm.DB, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Enrollment, 0)
	for _, row := range r.rows {
		if filters.Status != nil && row.Status != *filters.Status {
			continue
		}
		clone := *row
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeEnrollmentRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, row := range r.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, row := range r.rows {
		if row.CourseID == courseID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) UpdateStatusIf(ctx context.Context, db *gorm.DB, id uint, from, to models.EnrollmentStatus, updates map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.Status != from {
		return 0, nil
	}
	row.Status = to
	if v, ok := updates["approved_at"].(time.Time); ok {
		row.ApprovedAt = &v
	}
	if v, ok := updates["approved_by"].(string); ok {
		row.ApprovedBy = &v
	}
	if v, ok := updates["completed_at"].(time.Time); ok {
		row.CompletedAt = &v
	}
	return 1, nil
}

func (r *fakeEnrollmentRepo) DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.CourseID == courseID {
			delete(r.rows, id)
		}
	}
	return nil
}

// ===== COURSES =====

type fakeCourseRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Course
	nextID uint
}

func (r *fakeCourseRepo) Create(ctx context.Context, db *gorm.DB, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	clone := *c
	r.rows[c.ID] = &clone
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeCourseRepo) List(ctx context.Context, db *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return nil, 0, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, db *gorm.DB, c *models.Course) error { return nil }
func (r *fakeCourseRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeCourseRepo) GetStats(ctx context.Context, db *gorm.DB, id uint) (*repositories.CourseStats, error) {
	return &repositories.CourseStats{}, nil
}

func (r *fakeCourseRepo) ExistsByID(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

// ===== USERS =====

type fakeUserRepo struct {
	mu   sync.Mutex
	rows map[string]*models.User
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if row, ok := r.rows[id]; ok {
			clone := *row
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.rows[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, fullName string, avatarURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.FullName = fullName
	row.AvatarURL = avatarURL
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	return ok && row.Role == role, nil
}

// ===== ASSIGNMENTS =====

type fakeAssignmentRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Assignment
	nextID uint
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, db *gorm.DB, a *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	clone := *a
	r.rows[a.ID] = &clone
	return nil
}

func (r *fakeAssignmentRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeAssignmentRepo) List(ctx context.Context, db *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	return nil, 0, nil
}

func (r *fakeAssignmentRepo) ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Assignment, 0)
	for _, row := range r.rows {
		if row.CourseID == courseID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAssignmentRepo) ListIDsByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint, 0)
	for _, row := range r.rows {
		if row.CourseID == courseID {
			out = append(out, row.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *fakeAssignmentRepo) Update(ctx context.Context, db *gorm.DB, a *models.Assignment) error {
	return nil
}

func (r *fakeAssignmentRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeAssignmentRepo) DeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.rows, id)
	}
	return nil
}

// ===== SUBMISSIONS =====

type fakeSubmissionRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Submission
	nextID uint

	// failUpdates makes the next N conditional updates report zero rows, as if
	// a concurrent writer changed the version in between.
	failUpdates int
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, db *gorm.DB, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.StudentID == s.StudentID && row.AssignmentID == s.AssignmentID {
			return errDuplicateKey
		}
	}
	r.nextID++
	s.ID = r.nextID
	if s.Version == 0 {
		s.Version = 1
	}
	clone := *s
	r.rows[s.ID] = &clone
	return nil
}

func (r *fakeSubmissionRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeSubmissionRepo) GetByStudentAndAssignment(ctx context.Context, db *gorm.DB, studentID string, assignmentID uint) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.StudentID == studentID && row.AssignmentID == assignmentID {
			clone := *row
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSubmissionRepo) List(ctx context.Context, db *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	return nil, 0, nil
}

func (r *fakeSubmissionRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Submission, 0)
	for _, row := range r.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListByAssignment(ctx context.Context, db *gorm.DB, assignmentID uint) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Submission, 0)
	for _, row := range r.rows {
		if row.AssignmentID == assignmentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) UpdateIfVersion(ctx context.Context, db *gorm.DB, id uint, version int, updates map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdates > 0 {
		r.failUpdates--
		return 0, nil
	}
	row, ok := r.rows[id]
	if !ok || row.Version != version {
		return 0, nil
	}
	row.Version++
	for key, value := range updates {
		switch key {
		case "status":
			row.Status = value.(models.SubmissionStatus)
		case "submitted_at":
			row.SubmittedAt = value.(time.Time)
		case "file_url":
			v := value.(string)
			row.FileURL = &v
		case "graded_at":
			if value == nil {
				row.GradedAt = nil
			} else {
				v := value.(time.Time)
				row.GradedAt = &v
			}
		case "graded_by":
			if value == nil {
				row.GradedBy = nil
			} else {
				v := value.(string)
				row.GradedBy = &v
			}
		case "grade_note":
			if value == nil {
				row.GradeNote = nil
			} else {
				v := value.(string)
				row.GradeNote = &v
			}
		}
	}
	return 1, nil
}

// ===== SCHEDULES =====

type fakeScheduleRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Schedule
	nextID uint
}

func (r *fakeScheduleRepo) Create(ctx context.Context, db *gorm.DB, s *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	clone := *s
	r.rows[s.ID] = &clone
	return nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeScheduleRepo) List(ctx context.Context, db *gorm.DB, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	return nil, 0, nil
}

func (r *fakeScheduleRepo) ListByStudent(ctx context.Context, db *gorm.DB, studentID string) ([]models.Schedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, db *gorm.DB, s *models.Schedule) error {
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeScheduleRepo) DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.CourseID == courseID {
			delete(r.rows, id)
		}
	}
	return nil
}

// ===== QUIZZES =====

type fakeQuizRepo struct {
	mu     sync.Mutex
	rows   map[uint]*models.Quiz
	nextID uint
}

func (r *fakeQuizRepo) Create(ctx context.Context, db *gorm.DB, q *models.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	q.ID = r.nextID
	clone := *q
	r.rows[q.ID] = &clone
	return nil
}

func (r *fakeQuizRepo) GetByID(ctx context.Context, db *gorm.DB, id uint) (*models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (r *fakeQuizRepo) List(ctx context.Context, db *gorm.DB, limit, offset int) ([]*models.Quiz, int64, error) {
	return nil, 0, nil
}

func (r *fakeQuizRepo) ListByCourse(ctx context.Context, db *gorm.DB, courseID uint) ([]models.Quiz, error) {
	return nil, nil
}

func (r *fakeQuizRepo) ListByCourses(ctx context.Context, db *gorm.DB, courseIDs []uint) ([]models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[uint]bool, len(courseIDs))
	for _, id := range courseIDs {
		want[id] = true
	}
	out := make([]models.Quiz, 0)
	for _, row := range r.rows {
		if want[row.CourseID] {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeQuizRepo) Update(ctx context.Context, db *gorm.DB, q *models.Quiz) error { return nil }

func (r *fakeQuizRepo) Delete(ctx context.Context, db *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *fakeQuizRepo) DeleteByCourse(ctx context.Context, db *gorm.DB, courseID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.CourseID == courseID {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) DeleteByAssignmentIDs(ctx context.Context, db *gorm.DB, assignmentIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, aid := range assignmentIDs {
		for id, row := range r.rows {
			if row.AssignmentID == aid {
				delete(r.rows, id)
			}
		}
	}
	return nil
}

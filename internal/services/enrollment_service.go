package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

type enrollmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.BusinessValidator
	eventPublisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, bv *validator.BusinessValidator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      bv,
		eventPublisher: publisher,
	}
}

// Request records a student's wish to join a course. The operation is
// idempotent: if any row already exists for (student, course), it is returned
// unchanged, whatever its status. Two concurrent first requests are collapsed
// by the unique index, and the loser re-reads the winner's row.
func (s *enrollmentService) Request(ctx context.Context, studentID string, courseID uint) (*models.Enrollment, error) {
	if errs := s.validator.ValidateEnrollmentRequest(&validator.EnrollmentRequest{CourseID: courseID}); errs.HasErrors() {
		return nil, validationError(errs)
	}

	exists, err := s.repo.Course().ExistsByID(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	existing, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err == nil {
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing enrollment: %w", err)
	}

	enrollment := &models.Enrollment{
		StudentID:   studentID,
		CourseID:    courseID,
		Status:      models.EnrollmentPending,
		RequestedAt: time.Now().UTC(),
	}

	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		// A concurrent request hit the unique index first; return its row.
		if row, getErr := s.repo.Enrollment().GetByStudentAndCourse(ctx, nil, studentID, courseID); getErr == nil {
			return row, nil
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	s.publishEvent(ctx, events.EnrollmentRequested, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"student_id":    studentID,
		"course_id":     courseID,
	})

	s.logger.InfoContext(ctx, "Enrollment requested",
		"student_id", studentID,
		"course_id", courseID)

	return enrollment, nil
}

// Approve moves pending to enrolled with a conditional write. When two
// admins approve the same request, the second update matches zero rows and
// maps to ErrEnrollmentNotPending.
func (s *enrollmentService) Approve(ctx context.Context, enrollmentID uint, adminID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	if errs := s.validator.ValidateEnrollmentTransition(enrollment.Status, models.EnrollmentEnrolled); errs.HasErrors() {
		return nil, ErrEnrollmentNotPending
	}

	now := time.Now().UTC()
	affected, err := s.repo.Enrollment().UpdateStatusIf(ctx, nil, enrollmentID,
		models.EnrollmentPending, models.EnrollmentEnrolled,
		map[string]interface{}{
			"approved_at": now,
			"approved_by": adminID,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to approve enrollment: %w", err)
	}
	if affected == 0 {
		return nil, ErrEnrollmentNotPending
	}

	s.publishEvent(ctx, events.EnrollmentApproved, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
		"approved_by":   adminID,
	})

	s.logger.InfoContext(ctx, "Enrollment approved",
		"enrollment_id", enrollmentID,
		"approved_by", adminID)

	return s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
}

// Reject deletes a pending request. Deleting rather than storing a rejected
// status means the student reads back as not-enrolled and may request again.
func (s *enrollmentService) Reject(ctx context.Context, enrollmentID uint, adminID string) error {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to load enrollment: %w", err)
	}

	if enrollment.Status != models.EnrollmentPending {
		return ErrEnrollmentNotPending
	}

	err = s.db.WithContext(ctx).
		Where("id = ? AND status = ?", enrollmentID, models.EnrollmentPending).
		Delete(&models.Enrollment{}).Error
	if err != nil {
		return fmt.Errorf("failed to reject enrollment: %w", err)
	}

	s.publishEvent(ctx, events.EnrollmentAssigned, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
		"action":        "rejected",
		"decided_by":    adminID,
	})

	s.logger.InfoContext(ctx, "Enrollment rejected",
		"enrollment_id", enrollmentID,
		"decided_by", adminID)

	return nil
}

// Complete moves enrolled to completed, again conditionally.
func (s *enrollmentService) Complete(ctx context.Context, enrollmentID uint, adminID string) (*models.Enrollment, error) {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to load enrollment: %w", err)
	}

	if errs := s.validator.ValidateEnrollmentTransition(enrollment.Status, models.EnrollmentCompleted); errs.HasErrors() {
		return nil, ErrEnrollmentNotActive
	}

	now := time.Now().UTC()
	affected, err := s.repo.Enrollment().UpdateStatusIf(ctx, nil, enrollmentID,
		models.EnrollmentEnrolled, models.EnrollmentCompleted,
		map[string]interface{}{"completed_at": now})
	if err != nil {
		return nil, fmt.Errorf("failed to complete enrollment: %w", err)
	}
	if affected == 0 {
		return nil, ErrEnrollmentNotActive
	}

	s.publishEvent(ctx, events.EnrollmentCompleted, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
	})

	return s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
}

// AssignDirect enrolls a student without the request round trip. If a
// pending request already exists it is promoted instead of duplicated.
func (s *enrollmentService) AssignDirect(ctx context.Context, req *DirectAssignRequest, adminID string) (*models.Enrollment, error) {
	if errs := s.validator.ValidateDirectAssign(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	exists, err := s.repo.Course().ExistsByID(ctx, nil, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	if ok, err := s.repo.User().ExistsByID(ctx, req.StudentID); err != nil {
		return nil, fmt.Errorf("failed to check student: %w", err)
	} else if !ok {
		return nil, ErrUserNotFound
	}

	existing, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, nil, req.StudentID, req.CourseID)
	if err == nil {
		switch existing.Status {
		case models.EnrollmentPending:
			return s.Approve(ctx, existing.ID, adminID)
		default:
			return existing, nil
		}
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing enrollment: %w", err)
	}

	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		StudentID:   req.StudentID,
		CourseID:    req.CourseID,
		Status:      models.EnrollmentEnrolled,
		RequestedAt: now,
		ApprovedAt:  &now,
		ApprovedBy:  &adminID,
	}

	if err := s.repo.Enrollment().Create(ctx, nil, enrollment); err != nil {
		return nil, fmt.Errorf("failed to assign enrollment: %w", err)
	}

	s.publishEvent(ctx, events.EnrollmentAssigned, map[string]interface{}{
		"enrollment_id": enrollment.ID,
		"student_id":    req.StudentID,
		"course_id":     req.CourseID,
		"assigned_by":   adminID,
	})

	return enrollment, nil
}

func (s *enrollmentService) Withdraw(ctx context.Context, enrollmentID uint, adminID string) error {
	enrollment, err := s.repo.Enrollment().GetByID(ctx, nil, enrollmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to load enrollment: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Enrollment{}, enrollmentID).Error; err != nil {
		return fmt.Errorf("failed to withdraw enrollment: %w", err)
	}

	s.publishEvent(ctx, events.EnrollmentAssigned, map[string]interface{}{
		"enrollment_id": enrollmentID,
		"student_id":    enrollment.StudentID,
		"course_id":     enrollment.CourseID,
		"action":        "withdrawn",
		"decided_by":    adminID,
	})

	return nil
}

// ListPending aggregates the approval queue with student and course labels,
// oldest request first.
func (s *enrollmentService) ListPending(ctx context.Context) ([]viewmodel.PendingRequest, error) {
	pending := models.EnrollmentPending
	rows, _, err := s.repo.Enrollment().List(ctx, nil, repositories.EnrollmentFilters{Status: &pending})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending enrollments: %w", err)
	}

	enrollments := make([]models.Enrollment, len(rows))
	studentIDs := make([]string, 0, len(rows))
	courseIDs := make(map[uint]struct{}, len(rows))
	for i, row := range rows {
		enrollments[i] = *row
		studentIDs = append(studentIDs, row.StudentID)
		courseIDs[row.CourseID] = struct{}{}
	}

	userPtrs, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	users := make([]models.User, len(userPtrs))
	for i, u := range userPtrs {
		users[i] = *u
	}

	courses := make([]models.Course, 0, len(courseIDs))
	for id := range courseIDs {
		course, err := s.repo.Course().GetByID(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load course: %w", err)
		}
		courses = append(courses, *course)
	}

	return viewmodel.PendingRequests(users, enrollments, courses), nil
}

func (s *enrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.repo.Enrollment().ListByStudent(ctx, nil, studentID)
}

// GetStatus derives the student's standing; absence of a row reads as
// not-enrolled.
func (s *enrollmentService) GetStatus(ctx context.Context, studentID string, courseID uint) (models.EnrollmentStatus, error) {
	enrollment, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return models.EnrollmentNotEnrolled, nil
		}
		return "", fmt.Errorf("failed to load enrollment: %w", err)
	}

	return enrollment.Status, nil
}

func (s *enrollmentService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.Event{Type: eventType, Data: data}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"error", err)
	}
}

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
)

type submissionService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.BusinessValidator
	eventPublisher events.EventPublisher
}

func NewSubmissionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, bv *validator.BusinessValidator, publisher events.EventPublisher) SubmissionService {
	return &submissionService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      bv,
		eventPublisher: publisher,
	}
}

// Submit upserts the student's work for one assignment. The unique index on
// (student, assignment) makes the first write a create; later submits update
// the same row guarded by its version. A lost version race is retried once
// against the fresh row, then surfaces as ErrWriteConflict.
func (s *submissionService) Submit(ctx context.Context, studentID string, req *SubmitWorkRequest) (*models.Submission, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, req.AssignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	status := models.EnrollmentNotEnrolled
	if enrollment, err := s.repo.Enrollment().GetByStudentAndCourse(ctx, nil, studentID, assignment.CourseID); err == nil {
		status = enrollment.Status
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	if errs := s.validator.ValidateSubmission(req, status); errs.HasErrors() {
		return nil, validationError(errs)
	}

	now := time.Now().UTC()

	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.repo.Submission().GetByStudentAndAssignment(ctx, nil, studentID, req.AssignmentID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("failed to check existing submission: %w", err)
			}

			submission := &models.Submission{
				AssignmentID: req.AssignmentID,
				CourseID:     assignment.CourseID,
				StudentID:    studentID,
				Status:       models.SubmissionSubmitted,
				SubmittedAt:  now,
				FileURL:      req.FileURL,
			}

			if err := s.repo.Submission().Create(ctx, nil, submission); err != nil {
				// A concurrent first submit won the unique index; loop and
				// update the winner's row instead.
				continue
			}

			s.publishSubmissionEvent(ctx, events.SubmissionReceived, submission)
			return submission, nil
		}

		// Re-submission resets grading state: the new work replaces the old.
		updates := map[string]interface{}{
			"status":       models.SubmissionSubmitted,
			"submitted_at": now,
			"graded_at":    nil,
			"graded_by":    nil,
			"grade_note":   nil,
		}
		if req.FileURL != nil {
			updates["file_url"] = *req.FileURL
		}

		affected, err := s.repo.Submission().UpdateIfVersion(ctx, nil, existing.ID, existing.Version, updates)
		if err != nil {
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}
		if affected == 0 {
			continue
		}

		updated, err := s.repo.Submission().GetByID(ctx, nil, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload submission: %w", err)
		}

		s.publishSubmissionEvent(ctx, events.SubmissionReceived, updated)
		return updated, nil
	}

	return nil, ErrWriteConflict
}

func (s *submissionService) Grade(ctx context.Context, req *GradeSubmissionRequest, graderID string) (*models.Submission, error) {
	return s.applyGradingStatus(ctx, req, graderID, models.SubmissionGraded, events.SubmissionGraded)
}

func (s *submissionService) RequestRevision(ctx context.Context, req *GradeSubmissionRequest, graderID string) (*models.Submission, error) {
	return s.applyGradingStatus(ctx, req, graderID, models.SubmissionNeedsRevision, events.SubmissionRevision)
}

// applyGradingStatus moves a submission to a grading outcome with the same
// version guard Submit uses, so grading never clobbers a concurrent
// re-submission silently.
func (s *submissionService) applyGradingStatus(ctx context.Context, req *GradeSubmissionRequest, graderID string, status models.SubmissionStatus, eventType string) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, req.SubmissionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if errs := s.validator.ValidateGrading(req, submission.EffectiveStatus()); errs.HasErrors() {
		return nil, validationError(errs)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":    status,
		"graded_at": now,
		"graded_by": graderID,
	}
	if req.Note != nil {
		updates["grade_note"] = *req.Note
	}

	affected, err := s.repo.Submission().UpdateIfVersion(ctx, nil, submission.ID, submission.Version, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to grade submission: %w", err)
	}
	if affected == 0 {
		return nil, ErrWriteConflict
	}

	updated, err := s.repo.Submission().GetByID(ctx, nil, submission.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload submission: %w", err)
	}

	s.publishSubmissionEvent(ctx, eventType, updated)
	s.logger.InfoContext(ctx, "Submission status changed",
		"submission_id", submission.ID,
		"status", status,
		"graded_by", graderID)

	return updated, nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	submission, err := s.repo.Submission().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}

func (s *submissionService) List(ctx context.Context, filters repositories.SubmissionFilters) (*SubmissionListResponse, error) {
	submissions, total, err := s.repo.Submission().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &SubmissionListResponse{
		Submissions: submissions,
		Total:       total,
		Page:        page,
		Size:        len(submissions),
	}, nil
}

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	return s.repo.Submission().ListByAssignment(ctx, nil, assignmentID)
}

func (s *submissionService) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	return s.repo.Submission().ListByStudent(ctx, nil, studentID)
}

func (s *submissionService) publishSubmissionEvent(ctx context.Context, eventType string, submission *models.Submission) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"submission_id": submission.ID,
			"assignment_id": submission.AssignmentID,
			"course_id":     submission.CourseID,
			"student_id":    submission.StudentID,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"error", err)
	}
}

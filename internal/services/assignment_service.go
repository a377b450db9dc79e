package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
)

type assignmentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewAssignmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) AssignmentService {
	return &assignmentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, creatorID string) (*models.Assignment, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	exists, err := s.repo.Course().ExistsByID(ctx, nil, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	attachments, err := marshalAttachments(req.Attachments)
	if err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		CourseID:     req.CourseID,
		Title:        req.Title,
		Instructions: req.Instructions,
		DueDate:      req.DueDate,
		Attachments:  attachments,
		CreatedBy:    creatorID,
	}

	if err := s.repo.Assignment().Create(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.publishEvent(ctx, events.AssignmentCreated, assignment.ID, assignment.CourseID)
	s.logger.InfoContext(ctx, "Assignment created",
		"assignment_id", assignment.ID,
		"course_id", assignment.CourseID)

	return assignment, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) List(ctx context.Context, filters repositories.AssignmentFilters) (*AssignmentListResponse, error) {
	assignments, total, err := s.repo.Assignment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &AssignmentListResponse{
		Assignments: assignments,
		Total:       total,
		Page:        page,
		Size:        len(assignments),
	}, nil
}

func (s *assignmentService) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	return s.repo.Assignment().ListByCourse(ctx, nil, courseID)
}

func (s *assignmentService) Update(ctx context.Context, id uint, req *UpdateAssignmentRequest, adminID string) (*models.Assignment, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Instructions != nil {
		assignment.Instructions = *req.Instructions
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}
	if req.Attachments != nil {
		attachments, err := marshalAttachments(req.Attachments)
		if err != nil {
			return nil, err
		}
		assignment.Attachments = attachments
	}

	if err := s.repo.Assignment().Update(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	s.publishEvent(ctx, events.AssignmentUpdated, id, assignment.CourseID)

	return assignment, nil
}

// Delete removes the assignment and every submission under it in one
// transaction. Submissions go first so a partial failure never leaves
// orphaned work pointing at a missing assignment.
func (s *assignmentService) Delete(ctx context.Context, id uint, adminID string) error {
	assignment, err := s.repo.Assignment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Submission().DeleteByAssignmentIDs(ctx, nil, []uint{id}); err != nil {
			return fmt.Errorf("failed to delete assignment submissions: %w", err)
		}
		if err := tx.Assignment().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.AssignmentDeleted, id, assignment.CourseID)
	s.logger.InfoContext(ctx, "Assignment deleted",
		"assignment_id", id,
		"deleted_by", adminID)

	return nil
}

func marshalAttachments(refs []models.AttachmentRef) ([]byte, error) {
	if refs == nil {
		return nil, nil
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachments: %w", err)
	}
	return data, nil
}

func (s *assignmentService) publishEvent(ctx context.Context, eventType string, assignmentID, courseID uint) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"assignment_id": assignmentID,
			"course_id":     courseID,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"error", err)
	}
}

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

type contentService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewContentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ContentService {
	return &contentService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

// ===== NOTES =====

func (s *contentService) CreateNote(ctx context.Context, req *CreateNoteRequest, creatorID string) (*models.Note, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	note := &models.Note{
		Title:         req.Title,
		Body:          req.Body,
		AttachmentURL: req.AttachmentURL,
		CreatedBy:     creatorID,
	}

	if err := s.repo.Note().Create(ctx, nil, note, req.StudentIDs); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.publishContentEvent(ctx, "note", note.ID)
	s.logger.InfoContext(ctx, "Note created",
		"note_id", note.ID,
		"audience_size", len(req.StudentIDs))

	return note, nil
}

func (s *contentService) UpdateNote(ctx context.Context, id uint, req *UpdateNoteRequest, adminID string) (*models.Note, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	note, err := s.repo.Note().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("note %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Body != nil {
		note.Body = *req.Body
	}
	if req.AttachmentURL != nil {
		note.AttachmentURL = req.AttachmentURL
	}

	// A nil student list keeps the current audience; a non-nil one replaces it.
	if err := s.repo.Note().Update(ctx, nil, note, req.StudentIDs); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.publishContentEvent(ctx, "note", id)

	return note, nil
}

func (s *contentService) DeleteNote(ctx context.Context, id uint, adminID string) error {
	if _, err := s.repo.Note().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("note %w", ErrNotFound)
		}
		return fmt.Errorf("failed to get note: %w", err)
	}

	if err := s.repo.Note().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	s.publishContentEvent(ctx, "note", id)
	s.logger.InfoContext(ctx, "Note deleted", "note_id", id, "deleted_by", adminID)

	return nil
}

func (s *contentService) ListNotes(ctx context.Context, limit, offset int) ([]*models.Note, int64, error) {
	return s.repo.Note().List(ctx, nil, limit, offset)
}

func (s *contentService) ListNotesForStudent(ctx context.Context, studentID string) ([]models.Note, error) {
	return s.repo.Note().ListByStudent(ctx, nil, studentID)
}

// ===== QUIZZES =====

func (s *contentService) CreateQuiz(ctx context.Context, req *CreateQuizRequest, creatorID string) (*models.Quiz, error) {
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

	questions, err := marshalQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		CourseID:  req.CourseID,
		Title:     req.Title,
		DueDate:   req.DueDate,
		Questions: questions,
		CreatedBy: creatorID,
	}

	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.publishContentEvent(ctx, "quiz", quiz.ID)
	s.logger.InfoContext(ctx, "Quiz created", "quiz_id", quiz.ID, "course_id", quiz.CourseID)

	return quiz, nil
}

func (s *contentService) UpdateQuiz(ctx context.Context, id uint, req *UpdateQuizRequest, adminID string) (*models.Quiz, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("quiz %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.DueDate != nil {
		quiz.DueDate = req.DueDate
	}
	if req.Questions != nil {
		questions, err := marshalQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		quiz.Questions = questions
	}

	if err := s.repo.Quiz().Update(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.publishContentEvent(ctx, "quiz", id)

	return quiz, nil
}

func (s *contentService) DeleteQuiz(ctx context.Context, id uint, adminID string) error {
	if _, err := s.repo.Quiz().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("quiz %w", ErrNotFound)
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := s.repo.Quiz().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.publishContentEvent(ctx, "quiz", id)
	s.logger.InfoContext(ctx, "Quiz deleted", "quiz_id", id, "deleted_by", adminID)

	return nil
}

func (s *contentService) ListQuizzes(ctx context.Context, limit, offset int) ([]*models.Quiz, int64, error) {
	return s.repo.Quiz().List(ctx, nil, limit, offset)
}

// ListQuizzesForStudent returns quizzes for the courses the student is
// enrolled in or has completed. Pending requests grant no quiz access.
func (s *contentService) ListQuizzesForStudent(ctx context.Context, studentID string) ([]models.Quiz, error) {
	enrollments, err := s.repo.Enrollment().ListByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status == models.EnrollmentEnrolled || e.Status == models.EnrollmentCompleted {
			courseIDs = append(courseIDs, e.CourseID)
		}
	}
	if len(courseIDs) == 0 {
		return []models.Quiz{}, nil
	}

	return s.repo.Quiz().ListByCourses(ctx, nil, courseIDs)
}

// ===== RESOURCES =====

func (s *contentService) CreateResource(ctx context.Context, req *CreateResourceRequest, creatorID string) (*models.Resource, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	resource := &models.Resource{
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		Category:    req.Category,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Resource().Create(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.publishContentEvent(ctx, "resource", resource.ID)
	s.logger.InfoContext(ctx, "Resource created", "resource_id", resource.ID)

	return resource, nil
}

func (s *contentService) UpdateResource(ctx context.Context, id uint, req *UpdateResourceRequest, adminID string) (*models.Resource, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	resource, err := s.repo.Resource().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("resource %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	if req.FileURL != nil {
		resource.FileURL = *req.FileURL
	}
	if req.Category != nil {
		resource.Category = *req.Category
	}

	if err := s.repo.Resource().Update(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	s.publishContentEvent(ctx, "resource", id)

	return resource, nil
}

func (s *contentService) DeleteResource(ctx context.Context, id uint, adminID string) error {
	if _, err := s.repo.Resource().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("resource %w", ErrNotFound)
		}
		return fmt.Errorf("failed to get resource: %w", err)
	}

	if err := s.repo.Resource().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	s.publishContentEvent(ctx, "resource", id)
	s.logger.InfoContext(ctx, "Resource deleted", "resource_id", id, "deleted_by", adminID)

	return nil
}

func (s *contentService) ListResources(ctx context.Context, filters repositories.ResourceFilters) ([]*models.Resource, int64, error) {
	return s.repo.Resource().List(ctx, nil, filters)
}

func marshalQuestions(questions interface{}) ([]byte, error) {
	if questions == nil {
		return nil, nil
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	return data, nil
}

func (s *contentService) publishContentEvent(ctx context.Context, kind string, id uint) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.Event{
		Type: events.ContentChanged,
		Data: map[string]interface{}{
			"content_kind": kind,
			"content_id":   id,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", events.ContentChanged,
			"error", err)
	}
}

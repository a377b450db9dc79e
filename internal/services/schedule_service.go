package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
)

type scheduleService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewScheduleService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ScheduleService {
	return &scheduleService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

func (s *scheduleService) Create(ctx context.Context, req *CreateScheduleRequest, creatorID string) (*models.Schedule, error) {
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

	schedule := &models.Schedule{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		ClassAt:    req.ClassAt,
		Teacher:    req.Teacher,
		Platform:   req.Platform,
		MeetingURL: req.MeetingURL,
		CreatedBy:  creatorID,
	}

	if err := s.repo.Schedule().Create(ctx, nil, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, schedule.ID, schedule.StudentID)
	s.logger.InfoContext(ctx, "Schedule created",
		"schedule_id", schedule.ID,
		"student_id", schedule.StudentID,
		"course_id", schedule.CourseID)

	return schedule, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id uint) (*models.Schedule, error) {
	schedule, err := s.repo.Schedule().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("schedule %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context, filters repositories.ScheduleFilters) ([]*models.Schedule, int64, error) {
	return s.repo.Schedule().List(ctx, nil, filters)
}

func (s *scheduleService) ListByStudent(ctx context.Context, studentID string) ([]models.Schedule, error) {
	return s.repo.Schedule().ListByStudent(ctx, nil, studentID)
}

func (s *scheduleService) Update(ctx context.Context, id uint, req *UpdateScheduleRequest, adminID string) (*models.Schedule, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	schedule, err := s.repo.Schedule().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("schedule %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	if req.ClassAt != nil {
		schedule.ClassAt = *req.ClassAt
	}
	if req.Teacher != nil {
		schedule.Teacher = *req.Teacher
	}
	if req.Platform != nil {
		schedule.Platform = *req.Platform
	}
	if req.MeetingURL != nil {
		schedule.MeetingURL = *req.MeetingURL
	}

	if err := s.repo.Schedule().Update(ctx, nil, schedule); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, id, schedule.StudentID)

	return schedule, nil
}

func (s *scheduleService) Delete(ctx context.Context, id uint, adminID string) error {
	schedule, err := s.repo.Schedule().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("schedule %w", ErrNotFound)
		}
		return fmt.Errorf("failed to get schedule: %w", err)
	}

	if err := s.repo.Schedule().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	s.publishScheduleEvent(ctx, id, schedule.StudentID)
	s.logger.InfoContext(ctx, "Schedule deleted", "schedule_id", id, "deleted_by", adminID)

	return nil
}

func (s *scheduleService) publishScheduleEvent(ctx context.Context, scheduleID uint, studentID string) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.Event{
		Type: events.ScheduleChanged,
		Data: map[string]interface{}{
			"schedule_id": scheduleID,
			"student_id":  studentID,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", events.ScheduleChanged,
			"error", err)
	}
}

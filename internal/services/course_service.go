package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
)

type courseService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      v,
		eventPublisher: publisher,
	}
}

func (s *courseService) Create(ctx context.Context, req *CreateCourseRequest, creatorID string) (*CourseResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	course := &models.Course{
		Name:        req.Name,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Course().Create(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publishEvent(ctx, events.CourseCreated, course.ID)
	s.logger.InfoContext(ctx, "Course created", "course_id", course.ID, "created_by", creatorID)

	return &CourseResponse{Course: course}, nil
}

// GetByID returns the course with its rosters projected from enrollment rows.
// Rosters are never stored, so they cannot drift from the enrollment table.
func (s *courseService) GetByID(ctx context.Context, id uint) (*CourseResponse, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := s.projectRosters(ctx, course); err != nil {
		return nil, err
	}

	return &CourseResponse{Course: course}, nil
}

func (s *courseService) List(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	courses, total, err := s.repo.Course().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	out := make([]*CourseResponse, 0, len(courses))
	for _, course := range courses {
		if err := s.projectRosters(ctx, course); err != nil {
			return nil, err
		}
		out = append(out, &CourseResponse{Course: course})
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &CourseListResponse{
		Courses: out,
		Total:   total,
		Page:    page,
		Size:    len(out),
	}, nil
}

func (s *courseService) Update(ctx context.Context, id uint, req *UpdateCourseRequest, adminID string) (*CourseResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	course, err := s.repo.Course().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.CoverURL != nil {
		course.CoverURL = req.CoverURL
	}

	if err := s.repo.Course().Update(ctx, nil, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}

	s.publishEvent(ctx, events.CourseUpdated, id)

	if err := s.projectRosters(ctx, course); err != nil {
		return nil, err
	}

	return &CourseResponse{Course: course}, nil
}

// Delete tears down the course and everything under it in one transaction.
// Assignments and their submissions go first, in bounded id chunks, then
// enrollments, schedules and quizzes, then the course row. If the
// transaction aborts nothing is lost; rerunning it resumes the teardown.
func (s *courseService) Delete(ctx context.Context, id uint, adminID string) error {
	exists, err := s.repo.Course().ExistsByID(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return ErrCourseNotFound
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		assignmentIDs, err := tx.Assignment().ListIDsByCourse(ctx, nil, id)
		if err != nil {
			return fmt.Errorf("failed to list course assignments: %w", err)
		}

		if err := tx.Submission().DeleteByAssignmentIDs(ctx, nil, assignmentIDs); err != nil {
			return fmt.Errorf("failed to delete course submissions: %w", err)
		}
		if err := tx.Assignment().DeleteByIDs(ctx, nil, assignmentIDs); err != nil {
			return fmt.Errorf("failed to delete course assignments: %w", err)
		}
		if err := tx.Enrollment().DeleteByCourse(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete course enrollments: %w", err)
		}
		if err := tx.Schedule().DeleteByCourse(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete course schedules: %w", err)
		}
		if err := tx.Quiz().DeleteByCourse(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete course quizzes: %w", err)
		}
		if err := tx.Course().Delete(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.CourseDeleted, id)
	s.logger.InfoContext(ctx, "Course deleted with cascade", "course_id", id, "deleted_by", adminID)

	return nil
}

func (s *courseService) GetStats(ctx context.Context, id uint) (*repositories.CourseStats, error) {
	exists, err := s.repo.Course().ExistsByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check course: %w", err)
	}
	if !exists {
		return nil, ErrCourseNotFound
	}

	return s.repo.Course().GetStats(ctx, nil, id)
}

// projectRosters fills the computed roster fields from enrollment rows.
func (s *courseService) projectRosters(ctx context.Context, course *models.Course) error {
	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, course.ID)
	if err != nil {
		return fmt.Errorf("failed to load course enrollments: %w", err)
	}

	course.EnrolledStudentIDs = course.EnrolledStudentIDs[:0]
	course.CompletedStudentIDs = course.CompletedStudentIDs[:0]
	for _, e := range enrollments {
		switch e.Status {
		case models.EnrollmentEnrolled:
			course.EnrolledStudentIDs = append(course.EnrolledStudentIDs, e.StudentID)
		case models.EnrollmentCompleted:
			course.CompletedStudentIDs = append(course.CompletedStudentIDs, e.StudentID)
		}
	}
	sort.Strings(course.EnrolledStudentIDs)
	sort.Strings(course.CompletedStudentIDs)

	assignments, err := s.repo.Assignment().ListIDsByCourse(ctx, nil, course.ID)
	if err != nil {
		return fmt.Errorf("failed to count course assignments: %w", err)
	}
	course.AssignmentCount = len(assignments)

	return nil
}

func (s *courseService) publishEvent(ctx context.Context, eventType string, courseID uint) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.Event{
		Type: eventType,
		Data: map[string]interface{}{"course_id": courseID},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			"event_type", eventType,
			"error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/validator"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

// GetDashboard loads the student's snapshot and derives the dashboard from
// it. All the status and progress logic lives in the derivation layer, so
// the REST path and the realtime path cannot disagree.
func (s *studentService) GetDashboard(ctx context.Context, studentID string) (*viewmodel.StudentDashboard, error) {
	snap, err := s.repo.Dashboard().LoadStudentSnapshot(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load student snapshot: %w", err)
	}

	return viewmodel.BuildStudentDashboard(snap, studentID, time.Now().UTC()), nil
}

func (s *studentService) GetProfile(ctx context.Context, studentID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *studentService) UpdateProfile(ctx context.Context, studentID string, req *UpdateProfileRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, validationError(errs)
	}

	if err := s.repo.User().UpdateProfile(ctx, studentID, req.FullName, req.AvatarURL); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.repo.User().GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.logger.InfoContext(ctx, "Profile updated", "user_id", studentID)

	return user, nil
}

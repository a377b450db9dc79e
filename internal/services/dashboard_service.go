package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *dashboardService) GetAdminDashboard(ctx context.Context) (*viewmodel.AdminDashboard, error) {
	snap, err := s.repo.Dashboard().LoadSnapshot(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	return viewmodel.BuildAdminDashboard(snap, time.Now().UTC()), nil
}

func (s *dashboardService) GetOverviewCounts(ctx context.Context) (*repositories.OverviewCounts, error) {
	counts, err := s.repo.Dashboard().GetOverviewCounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get overview counts: %w", err)
	}
	return counts, nil
}

func (s *dashboardService) ListStudents(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	role := models.RoleStudent
	if filters.Role == nil {
		filters.Role = &role
	}
	return s.repo.User().List(ctx, filters)
}

package repositories

import (
	"context"

	"github.com/classbridge/lms-service/internal/viewmodel"
	"gorm.io/gorm"
)

// DashboardRepository loads the read-model inputs in one pass. Dashboards and
// the realtime hub both derive their views from the snapshot it returns.
type DashboardRepository interface {
	// LoadSnapshot reads every table the derivation layer consumes. The rows
	// are loaded inside a single transaction so the snapshot is internally
	// consistent.
	LoadSnapshot(ctx context.Context, db *gorm.DB) (*viewmodel.Snapshot, error)

	// LoadStudentSnapshot narrows the snapshot to one student's rows plus the
	// shared tables (courses, assignments) their views join against.
	LoadStudentSnapshot(ctx context.Context, db *gorm.DB, studentID string) (*viewmodel.Snapshot, error)

	GetOverviewCounts(ctx context.Context, db *gorm.DB) (*OverviewCounts, error)
}

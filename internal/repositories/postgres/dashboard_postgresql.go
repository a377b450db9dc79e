package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

type dashboardPostgreSQL struct {
	db *gorm.DB
}

func NewDashboardPostgreSQL(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardPostgreSQL{db: db}
}

func (r *dashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== SNAPSHOT LOADS =====

// LoadSnapshot reads every collection the derivation layer joins on. The
// reads run inside one transaction so the snapshot is internally consistent.
func (r *dashboardPostgreSQL) LoadSnapshot(ctx context.Context, tx *gorm.DB) (*viewmodel.Snapshot, error) {
	db := r.getDB(tx)
	snap := &viewmodel.Snapshot{}

	err := db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Find(&snap.Users).Error; err != nil {
			return handleDBError(err, "load users")
		}
		if err := txn.Find(&snap.Courses).Error; err != nil {
			return handleDBError(err, "load courses")
		}
		if err := txn.Find(&snap.Enrollments).Error; err != nil {
			return handleDBError(err, "load enrollments")
		}
		if err := txn.Find(&snap.Assignments).Error; err != nil {
			return handleDBError(err, "load assignments")
		}
		if err := txn.Find(&snap.Submissions).Error; err != nil {
			return handleDBError(err, "load submissions")
		}
		if err := txn.Find(&snap.Schedules).Error; err != nil {
			return handleDBError(err, "load schedules")
		}
		if err := txn.Preload("Students").Find(&snap.Notes).Error; err != nil {
			return handleDBError(err, "load notes")
		}
		if err := txn.Find(&snap.Quizzes).Error; err != nil {
			return handleDBError(err, "load quizzes")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// LoadStudentSnapshot narrows the load to one student's rows plus the shared
/// tables their views join against. Courses and assignments stay unfiltered:
// a student's cards need course names for every enrollment status, including
// courses they have not touched yet.
func (r *dashboardPostgreSQL) LoadStudentSnapshot(ctx context.Context, tx *gorm.DB, studentID string) (*viewmodel.Snapshot, error) {
	db := r.getDB(tx)
	snap := &viewmodel.Snapshot{}

	err := db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Find(&snap.Users, "id = ?", studentID).Error; err != nil {
			return handleDBError(err, "load student")
		}
		if err := txn.Find(&snap.Courses).Error; err != nil {
			return handleDBError(err, "load courses")
		}
		if err := txn.Where("student_id = ?", studentID).Find(&snap.Enrollments).Error; err != nil {
			return handleDBError(err, "load student enrollments")
		}
		if err := txn.Find(&snap.Assignments).Error; err != nil {
			return handleDBError(err, "load assignments")
		}
		if err := txn.Where("student_id = ?", studentID).Find(&snap.Submissions).Error; err != nil {
			return handleDBError(err, "load student submissions")
		}
		if err := txn.Where("student_id = ?", studentID).Find(&snap.Schedules).Error; err != nil {
			return handleDBError(err, "load student schedules")
		}
		if err := txn.
			Preload("Students").
			Joins("INNER JOIN note_students ns ON ns.note_id = notes.id").
			Where("ns.user_id = ?", studentID).
			Find(&snap.Notes).Error; err != nil {
			return handleDBError(err, "load student notes")
		}
		if err := txn.Find(&snap.Quizzes).Error; err != nil {
			return handleDBError(err, "load quizzes")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// ===== OVERVIEW COUNTS =====

func (r *dashboardPostgreSQL) GetOverviewCounts(ctx context.Context, tx *gorm.DB) (*repositories.OverviewCounts, error) {
	db := r.getDB(tx)
	counts := &repositories.OverviewCounts{}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&counts.Students).Error; err != nil {
		return nil, handleDBError(err, "count students")
	}

	if err := db.WithContext(ctx).
		Model(&models.Course{}).
		Count(&counts.Courses).Error; err != nil {
		return nil, handleDBError(err, "count courses")
	}

	if err := db.WithContext(ctx).
		Model(&models.Assignment{}).
		Count(&counts.Assignments).Error; err != nil {
		return nil, handleDBError(err, "count assignments")
	}

	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Count(&counts.Submissions).Error; err != nil {
		return nil, handleDBError(err, "count submissions")
	}

	if err := db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("status = ?", models.EnrollmentPending).
		Count(&counts.Pending).Error; err != nil {
		return nil, handleDBError(err, "count pending enrollments")
	}

	return counts, nil
}

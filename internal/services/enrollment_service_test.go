package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/validator"
)

func newEnrollmentServiceForTest(t *testing.T) (*enrollmentService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := &enrollmentService{
		repo:           repo,
		logger:         logger,
		validator:      validator.NewBusinessValidator(),
		eventPublisher: publisher,
	}
	return svc, repo, publisher
}

func seedCourse(repo *fakeRepository, name string) uint {
	course := &models.Course{Name: name, CreatedBy: "admin-1"}
	_ = repo.courses.Create(context.Background(), nil, course)
	return course.ID
}

func TestEnrollmentService_Request_Idempotent(t *testing.T) {
	svc, repo, publisher := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	first, err := svc.Request(ctx, "student-1", courseID)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if first.Status != models.EnrollmentPending {
		t.Fatalf("expected pending, got %s", first.Status)
	}

	second, err := svc.Request(ctx, "student-1", courseID)
	if err != nil {
		t.Fatalf("repeat request failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat request created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Status != models.EnrollmentPending {
		t.Errorf("repeat request changed status to %s", second.Status)
	}

	// Only the first request announces itself.
	if got := len(publisher.GetEventsByType(events.EnrollmentRequested)); got != 1 {
		t.Errorf("expected 1 requested event, got %d", got)
	}
}

func TestEnrollmentService_Request_RepeatAfterApproval(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	enrollment, err := svc.Request(ctx, "student-1", courseID)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.Approve(ctx, enrollment.ID, "admin-1"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// Requesting again while enrolled returns the enrolled row untouched.
	again, err := svc.Request(ctx, "student-1", courseID)
	if err != nil {
		t.Fatalf("repeat request failed: %v", err)
	}
	if again.Status != models.EnrollmentEnrolled {
		t.Errorf("expected enrolled, got %s", again.Status)
	}
}

func TestEnrollmentService_Request_CourseNotFound(t *testing.T) {
	svc, _, _ := newEnrollmentServiceForTest(t)

	_, err := svc.Request(context.Background(), "student-1", 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnrollmentService_Approve_SetsAuditFields(t *testing.T) {
	svc, repo, publisher := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	enrollment, _ := svc.Request(ctx, "student-1", courseID)

	approved, err := svc.Approve(ctx, enrollment.ID, "admin-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != models.EnrollmentEnrolled {
		t.Errorf("expected enrolled, got %s", approved.Status)
	}
	if approved.ApprovedAt == nil {
		t.Error("approved_at not set")
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != "admin-1" {
		t.Error("approved_by not set")
	}
	if got := len(publisher.GetEventsByType(events.EnrollmentApproved)); got != 1 {
		t.Errorf("expected 1 approved event, got %d", got)
	}
}

func TestEnrollmentService_Approve_SecondAdminLoses(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	enrollment, _ := svc.Request(ctx, "student-1", courseID)

	if _, err := svc.Approve(ctx, enrollment.ID, "admin-1"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}

	_, err := svc.Approve(ctx, enrollment.ID, "admin-2")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for second approval, got %v", err)
	}

	// The first decision stands.
	row, _ := repo.enrollments.GetByID(ctx, nil, enrollment.ID)
	if row.ApprovedBy == nil || *row.ApprovedBy != "admin-1" {
		t.Error("second approval overwrote the first decision")
	}
}

func TestEnrollmentService_Complete_RequiresEnrolled(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	enrollment, _ := svc.Request(ctx, "student-1", courseID)

	// Pending cannot jump straight to completed.
	if _, err := svc.Complete(ctx, enrollment.ID, "admin-1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict completing a pending row, got %v", err)
	}

	if _, err := svc.Approve(ctx, enrollment.ID, "admin-1"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	completed, err := svc.Complete(ctx, enrollment.ID, "admin-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != models.EnrollmentCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestEnrollmentService_AssignDirect(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")
	_ = repo.users.Upsert(ctx, &models.User{ID: "student-1", Role: models.RoleStudent})

	t.Run("CreatesEnrolledRow", func(t *testing.T) {
		enrollment, err := svc.AssignDirect(ctx, &DirectAssignRequest{StudentID: "student-1", CourseID: courseID}, "admin-1")
		if err != nil {
			t.Fatalf("assign failed: %v", err)
		}
		if enrollment.Status != models.EnrollmentEnrolled {
			t.Errorf("expected enrolled, got %s", enrollment.Status)
		}
	})

	t.Run("PromotesPendingRequest", func(t *testing.T) {
		otherCourse := seedCourse(repo, "Geometry")
		pending, err := svc.Request(ctx, "student-1", otherCourse)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		enrollment, err := svc.AssignDirect(ctx, &DirectAssignRequest{StudentID: "student-1", CourseID: otherCourse}, "admin-1")
		if err != nil {
			t.Fatalf("assign failed: %v", err)
		}
		if enrollment.ID != pending.ID {
			t.Errorf("assign duplicated the pending row: %d vs %d", enrollment.ID, pending.ID)
		}
		if enrollment.Status != models.EnrollmentEnrolled {
			t.Errorf("expected enrolled, got %s", enrollment.Status)
		}
	})

	t.Run("UnknownStudent", func(t *testing.T) {
		_, err := svc.AssignDirect(ctx, &DirectAssignRequest{StudentID: "nobody", CourseID: courseID}, "admin-1")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestEnrollmentService_GetStatus_AbsentReadsNotEnrolled(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")

	status, err := svc.GetStatus(ctx, "student-1", courseID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status != models.EnrollmentNotEnrolled {
		t.Errorf("expected not-enrolled, got %s", status)
	}
}

func TestEnrollmentService_ListPending_OrderAndLabels(t *testing.T) {
	svc, repo, _ := newEnrollmentServiceForTest(t)
	ctx := context.Background()
	courseID := seedCourse(repo, "Algebra I")
	_ = repo.users.Upsert(ctx, &models.User{ID: "student-1", FullName: "Alice Ngo", Email: "alice@example.com", Role: models.RoleStudent})

	if _, err := svc.Request(ctx, "student-1", courseID); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.Request(ctx, "student-2", courseID); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	pending, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(pending))
	}
	if pending[0].StudentName != "Alice Ngo" {
		t.Errorf("expected joined name, got %q", pending[0].StudentName)
	}
	// student-2 has no directory row and must still appear, labeled Unknown.
	if pending[1].StudentName != "Unknown" {
		t.Errorf("expected Unknown label, got %q", pending[1].StudentName)
	}
}

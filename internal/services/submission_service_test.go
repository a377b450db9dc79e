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

func newSubmissionServiceForTest(t *testing.T) (*submissionService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := &submissionService{
		repo:           repo,
		logger:         logger,
		validator:      validator.NewBusinessValidator(),
		eventPublisher: publisher,
	}
	return svc, repo, publisher
}

// seedEnrolledAssignment sets up a course, an enrolled student and one
// assignment, returning the assignment id.
func seedEnrolledAssignment(t *testing.T, repo *fakeRepository, studentID string) uint {
	t.Helper()
	ctx := context.Background()

	course := &models.Course{Name: "Algebra I", CreatedBy: "admin-1"}
	if err := repo.courses.Create(ctx, nil, course); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  course.ID,
		Status:    models.EnrollmentEnrolled,
	}
	if err := repo.enrollments.Create(ctx, nil, enrollment); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	assignment := &models.Assignment{CourseID: course.ID, Title: "Worksheet 1", CreatedBy: "admin-1"}
	if err := repo.assignments.Create(ctx, nil, assignment); err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return assignment.ID
}

func TestSubmissionService_Submit_CreatesRow(t *testing.T) {
	svc, repo, publisher := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	fileURL := "https://files.example.com/work.pdf"
	submission, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID, FileURL: &fileURL})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Status != models.SubmissionSubmitted {
		t.Errorf("expected Submitted, got %s", submission.Status)
	}
	if submission.Version != 1 {
		t.Errorf("expected version 1, got %d", submission.Version)
	}
	if got := len(publisher.GetEventsByType(events.SubmissionReceived)); got != 1 {
		t.Errorf("expected 1 received event, got %d", got)
	}
}

func TestSubmissionService_Submit_NotEnrolled(t *testing.T) {
	svc, repo, _ := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	_, err := svc.Submit(ctx, "student-2", &SubmitWorkRequest{AssignmentID: assignmentID})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure for non-enrolled student, got %v", err)
	}
}

func TestSubmissionService_Submit_ResubmitUpdatesSameRow(t *testing.T) {
	svc, repo, _ := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	first, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	// Grade it, then resubmit: the grading state must be reset.
	note := "good start"
	if _, err := svc.Grade(ctx, &GradeSubmissionRequest{SubmissionID: first.ID, Note: &note}, "admin-1"); err != nil {
		t.Fatalf("grade failed: %v", err)
	}

	second, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resubmit created a new row: %d vs %d", second.ID, first.ID)
	}
	if second.Status != models.SubmissionSubmitted {
		t.Errorf("expected Submitted after resubmit, got %s", second.Status)
	}
	if second.GradedAt != nil || second.GradedBy != nil || second.GradeNote != nil {
		t.Error("resubmit did not clear grading state")
	}
	if second.Version <= first.Version {
		t.Errorf("version did not advance: %d -> %d", first.Version, second.Version)
	}
}

func TestSubmissionService_Submit_RetriesOnceOnVersionRace(t *testing.T) {
	svc, repo, _ := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	if _, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID}); err != nil {
		t.Fatalf("initial submit failed: %v", err)
	}

	// One lost race: the retry reads the fresh row and succeeds.
	repo.submissions.failUpdates = 1
	if _, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID}); err != nil {
		t.Fatalf("submit should survive one lost race: %v", err)
	}

	// Two lost races exhaust the single retry.
	repo.submissions.failUpdates = 2
	_, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if !errors.Is(err, ErrWriteConflict) {
		t.Fatalf("expected write conflict after repeated races, got %v", err)
	}
}

func TestSubmissionService_Grade(t *testing.T) {
	svc, repo, publisher := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	submission, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	note := "well done"
	graded, err := svc.Grade(ctx, &GradeSubmissionRequest{SubmissionID: submission.ID, Note: &note}, "admin-1")
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if graded.Status != models.SubmissionGraded {
		t.Errorf("expected Graded, got %s", graded.Status)
	}
	if graded.GradedBy == nil || *graded.GradedBy != "admin-1" {
		t.Error("graded_by not set")
	}
	if graded.GradeNote == nil || *graded.GradeNote != note {
		t.Error("grade_note not set")
	}
	if got := len(publisher.GetEventsByType(events.SubmissionGraded)); got != 1 {
		t.Errorf("expected 1 graded event, got %d", got)
	}
}

func TestSubmissionService_RequestRevision(t *testing.T) {
	svc, repo, _ := newSubmissionServiceForTest(t)
	ctx := context.Background()
	assignmentID := seedEnrolledAssignment(t, repo, "student-1")

	submission, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	revised, err := svc.RequestRevision(ctx, &GradeSubmissionRequest{SubmissionID: submission.ID}, "admin-1")
	if err != nil {
		t.Fatalf("request revision failed: %v", err)
	}
	if revised.Status != models.SubmissionNeedsRevision {
		t.Errorf("expected Needs Revision, got %s", revised.Status)
	}

	// The student can resubmit after a revision request.
	resubmitted, err := svc.Submit(ctx, "student-1", &SubmitWorkRequest{AssignmentID: assignmentID})
	if err != nil {
		t.Fatalf("resubmit after revision failed: %v", err)
	}
	if resubmitted.Status != models.SubmissionSubmitted {
		t.Errorf("expected Submitted, got %s", resubmitted.Status)
	}
}

func TestSubmissionService_Grade_MissingSubmission(t *testing.T) {
	svc, _, _ := newSubmissionServiceForTest(t)

	_, err := svc.Grade(context.Background(), &GradeSubmissionRequest{SubmissionID: 42}, "admin-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/classbridge/lms-service/internal/events"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/validator"
)

func newCourseServiceForTest(t *testing.T) (*courseService, *fakeRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := &courseService{
		repo:           repo,
		logger:         logger,
		validator:      validator.New(),
		eventPublisher: publisher,
	}
	return svc, repo, publisher
}

func TestCourseService_GetByID_ProjectsRosters(t *testing.T) {
	svc, repo, _ := newCourseServiceForTest(t)
	ctx := context.Background()

	course := &models.Course{Name: "Algebra I", CreatedBy: "admin-1"}
	_ = repo.courses.Create(ctx, nil, course)

	_ = repo.enrollments.Create(ctx, nil, &models.Enrollment{StudentID: "s-c", CourseID: course.ID, Status: models.EnrollmentEnrolled})
	_ = repo.enrollments.Create(ctx, nil, &models.Enrollment{StudentID: "s-a", CourseID: course.ID, Status: models.EnrollmentEnrolled})
	_ = repo.enrollments.Create(ctx, nil, &models.Enrollment{StudentID: "s-b", CourseID: course.ID, Status: models.EnrollmentCompleted})
	_ = repo.enrollments.Create(ctx, nil, &models.Enrollment{StudentID: "s-d", CourseID: course.ID, Status: models.EnrollmentPending})

	resp, err := svc.GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("get course failed: %v", err)
	}

	// Rosters are sorted and pending students are in neither list.
	if len(resp.EnrolledStudentIDs) != 2 || resp.EnrolledStudentIDs[0] != "s-a" || resp.EnrolledStudentIDs[1] != "s-c" {
		t.Errorf("unexpected enrolled roster: %v", resp.EnrolledStudentIDs)
	}
	if len(resp.CompletedStudentIDs) != 1 || resp.CompletedStudentIDs[0] != "s-b" {
		t.Errorf("unexpected completed roster: %v", resp.CompletedStudentIDs)
	}
}

func TestCourseService_Delete_CascadesEverything(t *testing.T) {
	svc, repo, publisher := newCourseServiceForTest(t)
	ctx := context.Background()

	course := &models.Course{Name: "Algebra I", CreatedBy: "admin-1"}
	_ = repo.courses.Create(ctx, nil, course)
	other := &models.Course{Name: "Geometry", CreatedBy: "admin-1"}
	_ = repo.courses.Create(ctx, nil, other)

	// More assignments than one delete chunk holds, each with a submission.
	for i := 0; i < 35; i++ {
		a := &models.Assignment{CourseID: course.ID, Title: fmt.Sprintf("Worksheet %d", i), CreatedBy: "admin-1"}
		_ = repo.assignments.Create(ctx, nil, a)
		_ = repo.submissions.Create(ctx, nil, &models.Submission{
			AssignmentID: a.ID,
			CourseID:     course.ID,
			StudentID:    "student-1",
			Status:       models.SubmissionSubmitted,
		})
	}
	keep := &models.Assignment{CourseID: other.ID, Title: "Keep me", CreatedBy: "admin-1"}
	_ = repo.assignments.Create(ctx, nil, keep)

	_ = repo.enrollments.Create(ctx, nil, &models.Enrollment{StudentID: "student-1", CourseID: course.ID, Status: models.EnrollmentEnrolled})
	_ = repo.schedules.Create(ctx, nil, &models.Schedule{StudentID: "student-1", CourseID: course.ID, CreatedBy: "admin-1"})
	_ = repo.quizzes.Create(ctx, nil, &models.Quiz{CourseID: course.ID, Title: "Quiz 1", CreatedBy: "admin-1"})

	if err := svc.Delete(ctx, course.ID, "admin-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := repo.courses.GetByID(ctx, nil, course.ID); err == nil {
		t.Error("course row survived the delete")
	}
	if ids, _ := repo.assignments.ListIDsByCourse(ctx, nil, course.ID); len(ids) != 0 {
		t.Errorf("%d assignments survived the delete", len(ids))
	}
	if subs, _ := repo.submissions.ListByStudent(ctx, nil, "student-1"); len(subs) != 0 {
		t.Errorf("%d submissions survived the delete", len(subs))
	}
	if rows, _ := repo.enrollments.ListByCourse(ctx, nil, course.ID); len(rows) != 0 {
		t.Errorf("%d enrollments survived the delete", len(rows))
	}
	if len(repo.schedules.rows) != 0 {
		t.Errorf("%d schedules survived the delete", len(repo.schedules.rows))
	}
	if len(repo.quizzes.rows) != 0 {
		t.Errorf("%d quizzes survived the delete", len(repo.quizzes.rows))
	}

	// The other course is untouched.
	if _, err := repo.assignments.GetByID(ctx, nil, keep.ID); err != nil {
		t.Error("delete removed an assignment from another course")
	}

	if got := len(publisher.GetEventsByType(events.CourseDeleted)); got != 1 {
		t.Errorf("expected 1 deleted event, got %d", got)
	}
}

func TestCourseService_Delete_MissingCourse(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t)

	err := svc.Delete(context.Background(), 404, "admin-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCourseService_Create_Validation(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t)

	_, err := svc.Create(context.Background(), &CreateCourseRequest{Name: ""}, "admin-1")
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

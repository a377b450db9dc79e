package viewmodel

import (
	"reflect"
	"testing"
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

func sampleSnapshot() *Snapshot {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &Snapshot{
		Users: []models.User{
			{ID: "s1", FullName: "Student One", Email: "s1@example.com", Role: models.RoleStudent},
			{ID: "s2", FullName: "Student Two", Email: "s2@example.com", Role: models.RoleStudent},
			{ID: "a1", FullName: "Admin", Email: "admin@example.com", Role: models.RoleAdmin},
		},
		Courses: []models.Course{
			{ID: 1, Name: "Algebra"},
			{ID: 2, Name: "Biology"},
		},
		Enrollments: []models.Enrollment{
			{ID: 1, StudentID: "s1", CourseID: 1, Status: models.EnrollmentEnrolled},
			{ID: 2, StudentID: "s1", CourseID: 2, Status: models.EnrollmentPending, RequestedAt: past},
			{ID: 3, StudentID: "s2", CourseID: 1, Status: models.EnrollmentEnrolled},
		},
		Assignments: []models.Assignment{
			{ID: 10, CourseID: 1, Title: "Homework 1", DueDate: &past},
			{ID: 11, CourseID: 1, Title: "Homework 2", DueDate: &due},
			{ID: 12, CourseID: 2, Title: "Lab Report", DueDate: &due},
		},
		Submissions: []models.Submission{
			{ID: 100, AssignmentID: 10, CourseID: 1, StudentID: "s1", Status: models.SubmissionGraded},
		},
		Schedules: []models.Schedule{
			{ID: 20, StudentID: "s1", CourseID: 1, ClassAt: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)},
			{ID: 21, StudentID: "s1", CourseID: 1, ClassAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
		},
		Notes: []models.Note{
			{ID: 30, Title: "Welcome", Students: []models.User{{ID: "s1"}}},
			{ID: 31, Title: "Other", Students: []models.User{{ID: "s2"}}},
		},
		Quizzes: []models.Quiz{
			{ID: 40, CourseID: 1, Title: "Quiz 1"},
			{ID: 41, CourseID: 2, Title: "Quiz 2"},
		},
	}
}

func TestBuildStudentDashboard(t *testing.T) {
	snap := sampleSnapshot()
	dash := BuildStudentDashboard(snap, "s1", testNow)

	if len(dash.Courses) != 2 {
		t.Fatalf("expected 2 course cards, got %d", len(dash.Courses))
	}
	algebra := dash.Courses[0]
	if algebra.Status != models.EnrollmentEnrolled {
		t.Errorf("algebra status = %v, want enrolled", algebra.Status)
	}
	if algebra.ProgressPercent != 50 {
		t.Errorf("algebra progress = %d, want 50", algebra.ProgressPercent)
	}
	biology := dash.Courses[1]
	if biology.Status != models.EnrollmentPending {
		t.Errorf("biology status = %v, want pending", biology.Status)
	}
	if biology.ProgressPercent != 0 {
		t.Errorf("pending course should report 0 progress, got %d", biology.ProgressPercent)
	}

	// Assignment cards cover only enrolled courses: the two algebra ones.
	if len(dash.Assignments) != 2 {
		t.Fatalf("expected 2 assignment cards, got %d", len(dash.Assignments))
	}
	if dash.Assignments[0].Status != models.SubmissionGraded {
		t.Errorf("homework 1 status = %v, want Graded", dash.Assignments[0].Status)
	}
	if dash.Assignments[1].Status != models.SubmissionPending {
		t.Errorf("homework 2 status = %v, want Pending", dash.Assignments[1].Status)
	}

	// Only the future schedule survives.
	if len(dash.Schedules) != 1 || dash.Schedules[0].ID != 20 {
		t.Errorf("expected only upcoming schedule 20, got %+v", dash.Schedules)
	}

	if len(dash.Notes) != 1 || dash.Notes[0].ID != 30 {
		t.Errorf("expected note 30 only, got %+v", dash.Notes)
	}
	if len(dash.Quizzes) != 1 || dash.Quizzes[0].ID != 40 {
		t.Errorf("quizzes follow enrollment; got %+v", dash.Quizzes)
	}
}

// Rebuilding from the same snapshot must yield the same view model: feeds
// deliver out of order and consumers recompute on every update.
func TestBuildStudentDashboard_Idempotent(t *testing.T) {
	snap := sampleSnapshot()
	first := BuildStudentDashboard(snap, "s1", testNow)
	second := BuildStudentDashboard(snap, "s1", testNow)
	if !reflect.DeepEqual(first, second) {
		t.Error("rebuilding from identical snapshot produced a different view model")
	}
}

func TestBuildStudentDashboard_EmptySnapshot(t *testing.T) {
	dash := BuildStudentDashboard(&Snapshot{}, "s1", testNow)
	if len(dash.Courses) != 0 || len(dash.Assignments) != 0 {
		t.Errorf("empty snapshot should yield empty dashboard, got %+v", dash)
	}
}

func TestBuildAdminDashboard(t *testing.T) {
	snap := sampleSnapshot()
	dash := BuildAdminDashboard(snap, testNow)

	if dash.Overview.TotalStudents != 2 {
		t.Errorf("total students = %d, want 2", dash.Overview.TotalStudents)
	}
	if dash.Overview.TotalCourses != 2 {
		t.Errorf("total courses = %d, want 2", dash.Overview.TotalCourses)
	}
	if dash.Overview.PendingApprovals != 1 {
		t.Errorf("pending approvals = %d, want 1", dash.Overview.PendingApprovals)
	}
	if dash.Overview.ActiveEnrollments != 2 {
		t.Errorf("active enrollments = %d, want 2", dash.Overview.ActiveEnrollments)
	}

	if len(dash.PendingRequests) != 1 || dash.PendingRequests[0].StudentID != "s1" {
		t.Fatalf("unexpected pending list: %+v", dash.PendingRequests)
	}
	if dash.PendingRequests[0].CourseName != "Biology" {
		t.Errorf("pending request course = %q, want Biology", dash.PendingRequests[0].CourseName)
	}

	// Algebra: s1 at 50%, s2 at 0% -> average 25.
	if len(dash.CourseProgress) != 2 {
		t.Fatalf("expected 2 course averages, got %d", len(dash.CourseProgress))
	}
	algebra := dash.CourseProgress[0]
	if algebra.EnrolledCount != 2 || algebra.AverageProgress != 25 {
		t.Errorf("algebra average = %+v, want 2 enrolled at 25%%", algebra)
	}
}

package viewmodel

import (
	"testing"
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestEnrollmentStatusFor(t *testing.T) {
	enrollments := []models.Enrollment{
		{CourseID: 1, Status: models.EnrollmentPending},
		{CourseID: 2, Status: models.EnrollmentEnrolled},
		{CourseID: 3, Status: models.EnrollmentCompleted},
	}

	tests := []struct {
		name        string
		enrollments []models.Enrollment
		courseID    uint
		want        models.EnrollmentStatus
	}{
		{name: "no enrollments at all", enrollments: nil, courseID: 1, want: models.EnrollmentNotEnrolled},
		{name: "absent course", enrollments: enrollments, courseID: 99, want: models.EnrollmentNotEnrolled},
		{name: "pending", enrollments: enrollments, courseID: 1, want: models.EnrollmentPending},
		{name: "enrolled", enrollments: enrollments, courseID: 2, want: models.EnrollmentEnrolled},
		{name: "completed", enrollments: enrollments, courseID: 3, want: models.EnrollmentCompleted},
		{
			name:        "empty stored status reads as not-enrolled",
			enrollments: []models.Enrollment{{CourseID: 4}},
			courseID:    4,
			want:        models.EnrollmentNotEnrolled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnrollmentStatusFor(tt.enrollments, tt.courseID); got != tt.want {
				t.Errorf("EnrollmentStatusFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignmentStatusFor(t *testing.T) {
	pastDue := models.Assignment{ID: 1, DueDate: timePtr(testNow.Add(-24 * time.Hour))}
	futureDue := models.Assignment{ID: 2, DueDate: timePtr(testNow.Add(24 * time.Hour))}
	noDue := models.Assignment{ID: 3}

	tests := []struct {
		name       string
		submission *models.Submission
		assignment models.Assignment
		want       models.SubmissionStatus
	}{
		{name: "no submission past due", submission: nil, assignment: pastDue, want: models.SubmissionMissing},
		{name: "no submission before due", submission: nil, assignment: futureDue, want: models.SubmissionPending},
		{name: "no submission no due date", submission: nil, assignment: noDue, want: models.SubmissionPending},
		{
			name:       "stored graded returned verbatim",
			submission: &models.Submission{Status: models.SubmissionGraded},
			assignment: pastDue,
			want:       models.SubmissionGraded,
		},
		{
			name:       "stored needs revision returned verbatim",
			submission: &models.Submission{Status: models.SubmissionNeedsRevision},
			assignment: futureDue,
			want:       models.SubmissionNeedsRevision,
		},
		{
			name:       "empty stored status defaults to submitted",
			submission: &models.Submission{},
			assignment: pastDue,
			want:       models.SubmissionSubmitted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignmentStatusFor(tt.submission, tt.assignment, testNow); got != tt.want {
				t.Errorf("AssignmentStatusFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Exactly one of the five statuses comes back for any input, and the derived
// Missing/Pending pair appears only without a submission, decided solely by
// the due date comparison.
func TestAssignmentStatusFor_Partition(t *testing.T) {
	subs := []*models.Submission{
		nil,
		{},
		{Status: models.SubmissionSubmitted},
		{Status: models.SubmissionGraded},
		{Status: models.SubmissionNeedsRevision},
	}
	assignments := []models.Assignment{
		{ID: 1},
		{ID: 2, DueDate: timePtr(testNow.Add(-time.Minute))},
		{ID: 3, DueDate: timePtr(testNow.Add(time.Minute))},
		{ID: 4, DueDate: timePtr(testNow)},
	}
	valid := map[models.SubmissionStatus]bool{
		models.SubmissionSubmitted:     true,
		models.SubmissionGraded:        true,
		models.SubmissionNeedsRevision: true,
		models.SubmissionMissing:       true,
		models.SubmissionPending:       true,
	}

	for _, sub := range subs {
		for _, a := range assignments {
			got := AssignmentStatusFor(sub, a, testNow)
			if !valid[got] {
				t.Fatalf("unexpected status %q", got)
			}
			derived := got == models.SubmissionMissing || got == models.SubmissionPending
			if sub != nil && derived {
				t.Errorf("derived status %q returned despite submission present", got)
			}
			if sub == nil {
				overdue := a.DueDate != nil && testNow.After(*a.DueDate)
				if overdue && got != models.SubmissionMissing {
					t.Errorf("overdue assignment %d: got %q, want Missing", a.ID, got)
				}
				if !overdue && got != models.SubmissionPending {
					t.Errorf("assignment %d: got %q, want Pending", a.ID, got)
				}
			}
		}
	}
}

func TestCourseProgress(t *testing.T) {
	assignments := []models.Assignment{{ID: 1}, {ID: 2}, {ID: 3}}

	tests := []struct {
		name        string
		assignments []models.Assignment
		submissions []models.Submission
		want        int
	}{
		{name: "zero assignments", assignments: nil, submissions: nil, want: 0},
		{name: "zero assignments with stray submissions", assignments: nil, submissions: []models.Submission{{AssignmentID: 1}}, want: 0},
		{name: "no submissions", assignments: assignments, want: 0},
		{
			name:        "one of three submitted",
			assignments: assignments,
			submissions: []models.Submission{{AssignmentID: 1, Status: models.SubmissionSubmitted}},
			want:        33,
		},
		{
			name:        "two of three, graded counts",
			assignments: assignments,
			submissions: []models.Submission{
				{AssignmentID: 1, Status: models.SubmissionSubmitted},
				{AssignmentID: 2, Status: models.SubmissionGraded},
			},
			want: 67,
		},
		{
			name:        "needs revision does not count",
			assignments: assignments,
			submissions: []models.Submission{{AssignmentID: 1, Status: models.SubmissionNeedsRevision}},
			want:        0,
		},
		{
			name:        "submission for foreign assignment ignored",
			assignments: assignments,
			submissions: []models.Submission{{AssignmentID: 99, Status: models.SubmissionGraded}},
			want:        0,
		},
		{
			name:        "duplicate submissions count once",
			assignments: assignments,
			submissions: []models.Submission{
				{AssignmentID: 1, Status: models.SubmissionSubmitted},
				{AssignmentID: 1, Status: models.SubmissionGraded},
			},
			want: 33,
		},
		{
			name:        "all done",
			assignments: assignments,
			submissions: []models.Submission{
				{AssignmentID: 1, Status: models.SubmissionGraded},
				{AssignmentID: 2, Status: models.SubmissionGraded},
				{AssignmentID: 3, Status: models.SubmissionSubmitted},
			},
			want: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CourseProgress(tt.assignments, tt.submissions); got != tt.want {
				t.Errorf("CourseProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Adding a counting submission never decreases progress; removing one never
// increases it.
func TestCourseProgress_Monotonic(t *testing.T) {
	assignments := []models.Assignment{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	subs := make([]models.Submission, 0, len(assignments))
	prev := CourseProgress(assignments, subs)
	for _, a := range assignments {
		subs = append(subs, models.Submission{AssignmentID: a.ID, Status: models.SubmissionGraded})
		cur := CourseProgress(assignments, subs)
		if cur < prev {
			t.Fatalf("progress decreased from %d to %d after adding submission for %d", prev, cur, a.ID)
		}
		prev = cur
	}

	for len(subs) > 0 {
		subs = subs[:len(subs)-1]
		cur := CourseProgress(assignments, subs)
		if cur > prev {
			t.Fatalf("progress increased from %d to %d after removing a submission", prev, cur)
		}
		prev = cur
	}
}

func TestPendingRequests(t *testing.T) {
	users := []models.User{
		{ID: "u1", FullName: "Alice Johnson", Email: "alice@example.com"},
		{ID: "u2", FullName: "Bob Lee", Email: "bob@example.com"},
	}
	courses := []models.Course{
		{ID: 1, Name: "Algebra"},
		{ID: 2, Name: "Biology"},
	}
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	enrollments := []models.Enrollment{
		{ID: 10, StudentID: "u2", CourseID: 1, Status: models.EnrollmentPending, RequestedAt: base.Add(2 * time.Hour)},
		{ID: 11, StudentID: "u1", CourseID: 1, Status: models.EnrollmentPending, RequestedAt: base},
		{ID: 12, StudentID: "u1", CourseID: 2, Status: models.EnrollmentEnrolled, RequestedAt: base},
		{ID: 13, StudentID: "ghost", CourseID: 99, Status: models.EnrollmentPending, RequestedAt: base.Add(time.Hour)},
	}

	got := PendingRequests(users, enrollments, courses)
	if len(got) != 3 {
		t.Fatalf("expected 3 pending requests, got %d", len(got))
	}

	// Oldest first.
	if got[0].EnrollmentID != 11 || got[1].EnrollmentID != 13 || got[2].EnrollmentID != 10 {
		t.Errorf("unexpected order: %d, %d, %d", got[0].EnrollmentID, got[1].EnrollmentID, got[2].EnrollmentID)
	}

	if got[0].StudentName != "Alice Johnson" || got[0].CourseName != "Algebra" {
		t.Errorf("join failed: %+v", got[0])
	}

	// Malformed rows are labeled, not dropped.
	if got[1].StudentName != "Unknown" || got[1].StudentEmail != "Unknown" || got[1].CourseName != "Unknown" {
		t.Errorf("missing records should be labeled Unknown: %+v", got[1])
	}
}

// Given N users each with between 0 and 3 pending entries, the aggregate
// contains exactly the sum of all pending entries.
func TestPendingRequests_Count(t *testing.T) {
	var users []models.User
	var enrollments []models.Enrollment
	courses := []models.Course{{ID: 1, Name: "C1"}, {ID: 2, Name: "C2"}, {ID: 3, Name: "C3"}}

	pendingPerUser := []int{0, 1, 2, 3, 0, 3, 1}
	wantTotal := 0
	id := uint(1)
	for i, n := range pendingPerUser {
		uid := string(rune('a' + i))
		users = append(users, models.User{ID: uid, FullName: "User " + uid, Email: uid + "@example.com"})
		for c := 0; c < n; c++ {
			enrollments = append(enrollments, models.Enrollment{
				ID:          id,
				StudentID:   uid,
				CourseID:    uint(c + 1),
				Status:      models.EnrollmentPending,
				RequestedAt: testNow.Add(time.Duration(id) * time.Minute),
			})
			id++
			wantTotal++
		}
		// Noise: a non-pending row per user should never be counted.
		enrollments = append(enrollments, models.Enrollment{
			ID: id, StudentID: uid, CourseID: 3, Status: models.EnrollmentEnrolled,
		})
		id++
	}

	got := PendingRequests(users, enrollments, courses)
	if len(got) != wantTotal {
		t.Fatalf("expected %d pending requests, got %d", wantTotal, len(got))
	}
	for _, req := range got {
		if req.CourseName == "" {
			t.Errorf("empty course name for %+v", req)
		}
	}
}

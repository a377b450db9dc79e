package viewmodel

import (
	"sort"
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

// EnrollmentStatusFor looks up a student's standing in a course. Absence is a
// valid, common state, not a failure.
func EnrollmentStatusFor(enrollments []models.Enrollment, courseID uint) models.EnrollmentStatus {
	for _, e := range enrollments {
		if e.CourseID == courseID {
			if e.Status == "" {
				return models.EnrollmentNotEnrolled
			}
			return e.Status
		}
	}
	return models.EnrollmentNotEnrolled
}

// AssignmentStatusFor classifies one (submission, assignment) pair at a fixed
// point in time. A stored submission status is returned verbatim (empty reads
// as Submitted); with no submission the due date alone decides between
// Missing and Pending. Exactly one of the five statuses is returned for any
// input.
func AssignmentStatusFor(submission *models.Submission, assignment models.Assignment, now time.Time) models.SubmissionStatus {
	if submission != nil {
		return submission.EffectiveStatus()
	}
	if assignment.DueDate != nil && now.After(*assignment.DueDate) {
		return models.SubmissionMissing
	}
	return models.SubmissionPending
}

// CourseProgress computes the rounded percentage of a course's assignments
// covered by a Submitted or Graded submission. A course with no assignments
// reports 0, not 100 — an empty course is not trivially complete.
func CourseProgress(assignments []models.Assignment, submissions []models.Submission) int {
	if len(assignments) == 0 {
		return 0
	}
	inCourse := make(map[uint]bool, len(assignments))
	for _, a := range assignments {
		inCourse[a.ID] = true
	}
	counted := make(map[uint]bool, len(submissions))
	done := 0
	for _, s := range submissions {
		switch s.EffectiveStatus() {
		case models.SubmissionSubmitted, models.SubmissionGraded:
		default:
			continue
		}
		if !inCourse[s.AssignmentID] || counted[s.AssignmentID] {
			continue
		}
		counted[s.AssignmentID] = true
		done++
	}
	return int(float64(done)/float64(len(assignments))*100 + 0.5)
}

// PendingRequest joins a pending enrollment with display names for the admin
// review queue.
type PendingRequest struct {
	EnrollmentID uint      `json:"enrollment_id"`
	StudentID    string    `json:"student_id"`
	StudentName  string    `json:"student_name"`
	StudentEmail string    `json:"student_email"`
	CourseID     uint      `json:"course_id"`
	CourseName   string    `json:"course_name"`
	RequestedAt  time.Time `json:"requested_at"`
}

const unknownLabel = "Unknown"

// PendingRequests emits every pending enrollment joined with student and
// course names. Records whose user or course is absent from the snapshot are
// labeled "Unknown" rather than dropped — an operator should see malformed
// data, not have it silently vanish. Output is ordered by request time
// ascending, ties broken by student then course id, so identical inputs
// always produce identical lists.
func PendingRequests(users []models.User, enrollments []models.Enrollment, courses []models.Course) []PendingRequest {
	userByID := make(map[string]*models.User, len(users))
	for i := range users {
		userByID[users[i].ID] = &users[i]
	}
	courseByID := make(map[uint]*models.Course, len(courses))
	for i := range courses {
		courseByID[courses[i].ID] = &courses[i]
	}

	out := make([]PendingRequest, 0)
	for _, e := range enrollments {
		if e.Status != models.EnrollmentPending {
			continue
		}
		req := PendingRequest{
			EnrollmentID: e.ID,
			StudentID:    e.StudentID,
			StudentName:  unknownLabel,
			StudentEmail: unknownLabel,
			CourseID:     e.CourseID,
			CourseName:   unknownLabel,
			RequestedAt:  e.RequestedAt,
		}
		if u, ok := userByID[e.StudentID]; ok {
			req.StudentName = u.FullName
			req.StudentEmail = u.Email
		}
		if c, ok := courseByID[e.CourseID]; ok {
			req.CourseName = c.Name
		}
		out = append(out, req)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].CourseID < out[j].CourseID
	})
	return out
}

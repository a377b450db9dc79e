package viewmodel

import (
	"sort"
	"time"

	"github.com/classbridge/lms-service/internal/models"
)

// ===== STUDENT DASHBOARD =====

type StudentDashboard struct {
	StudentID   string             `json:"student_id"`
	Courses     []CourseCard       `json:"courses"`
	Assignments []AssignmentCard   `json:"assignments"`
	Schedules   []models.Schedule  `json:"upcoming_schedules"`
	Notes       []models.Note      `json:"notes"`
	Quizzes     []models.Quiz      `json:"quizzes"`
	GeneratedAt time.Time          `json:"generated_at"`
}

type CourseCard struct {
	CourseID        uint                    `json:"course_id"`
	Name            string                  `json:"name"`
	CoverURL        *string                 `json:"cover_url"`
	Status          models.EnrollmentStatus `json:"status"`
	ProgressPercent int                     `json:"progress_percent"`
	AssignmentCount int                     `json:"assignment_count"`
}

type AssignmentCard struct {
	AssignmentID uint                    `json:"assignment_id"`
	CourseID     uint                    `json:"course_id"`
	CourseName   string                  `json:"course_name"`
	Title        string                  `json:"title"`
	DueDate      *time.Time              `json:"due_date"`
	Status       models.SubmissionStatus `json:"status"`
	SubmissionID *uint                   `json:"submission_id,omitempty"`
}

// BuildStudentDashboard derives one student's full dashboard from a snapshot.
// It is a pure function of (snapshot, studentID, now): safe to call on every
// feed update, with partial or stale cross-feed state, without doing worse
// than the snapshot itself.
func BuildStudentDashboard(snap *Snapshot, studentID string, now time.Time) *StudentDashboard {
	idx := buildIndex(snap)
	enrollments := idx.enrollByStudent[studentID]

	dash := &StudentDashboard{
		StudentID:   studentID,
		Courses:     make([]CourseCard, 0, len(snap.Courses)),
		Assignments: make([]AssignmentCard, 0),
		Schedules:   make([]models.Schedule, 0),
		Notes:       make([]models.Note, 0),
		Quizzes:     make([]models.Quiz, 0),
		GeneratedAt: now,
	}

	studentSubs := make([]models.Submission, 0)
	for _, s := range snap.Submissions {
		if s.StudentID == studentID {
			studentSubs = append(studentSubs, s)
		}
	}

	for _, c := range snap.Courses {
		status := EnrollmentStatusFor(enrollments, c.ID)
		assignments := idx.assignByCourse[c.ID]
		card := CourseCard{
			CourseID:        c.ID,
			Name:            c.Name,
			CoverURL:        c.CoverURL,
			Status:          status,
			AssignmentCount: len(assignments),
		}
		if status == models.EnrollmentEnrolled || status == models.EnrollmentCompleted {
			card.ProgressPercent = CourseProgress(assignments, studentSubs)
		}
		dash.Courses = append(dash.Courses, card)

		// Assignment cards only for courses the student is actually in.
		if status != models.EnrollmentEnrolled && status != models.EnrollmentCompleted {
			continue
		}
		for _, a := range assignments {
			sub := idx.subByStudentAssig[subKey{studentID, a.ID}]
			card := AssignmentCard{
				AssignmentID: a.ID,
				CourseID:     a.CourseID,
				CourseName:   c.Name,
				Title:        a.Title,
				DueDate:      a.DueDate,
				Status:       AssignmentStatusFor(sub, a, now),
			}
			if sub != nil {
				id := sub.ID
				card.SubmissionID = &id
			}
			dash.Assignments = append(dash.Assignments, card)
		}
	}

	sort.SliceStable(dash.Assignments, func(i, j int) bool {
		di, dj := dash.Assignments[i].DueDate, dash.Assignments[j].DueDate
		switch {
		case di == nil && dj == nil:
			return dash.Assignments[i].AssignmentID < dash.Assignments[j].AssignmentID
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})

	enrolledCourses := make(map[uint]bool)
	for _, e := range enrollments {
		if e.Status == models.EnrollmentEnrolled || e.Status == models.EnrollmentCompleted {
			enrolledCourses[e.CourseID] = true
		}
	}

	for _, sch := range snap.Schedules {
		if sch.StudentID == studentID && sch.ClassAt.After(now) {
			dash.Schedules = append(dash.Schedules, sch)
		}
	}
	sort.SliceStable(dash.Schedules, func(i, j int) bool {
		return dash.Schedules[i].ClassAt.Before(dash.Schedules[j].ClassAt)
	})

	// Notes target explicit student lists; quizzes follow course enrollment.
	for _, n := range snap.Notes {
		for _, u := range n.Students {
			if u.ID == studentID {
				dash.Notes = append(dash.Notes, n)
				break
			}
		}
	}
	for _, q := range snap.Quizzes {
		if enrolledCourses[q.CourseID] {
			dash.Quizzes = append(dash.Quizzes, q)
		}
	}

	return dash
}

// ===== ADMIN DASHBOARD =====

type AdminDashboard struct {
	Overview        AdminOverview    `json:"overview"`
	PendingRequests []PendingRequest `json:"pending_requests"`
	CourseProgress  []CourseAverage  `json:"course_progress"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

type AdminOverview struct {
	TotalStudents     int `json:"total_students"`
	TotalCourses      int `json:"total_courses"`
	TotalAssignments  int `json:"total_assignments"`
	TotalSubmissions  int `json:"total_submissions"`
	PendingApprovals  int `json:"pending_approvals"`
	ActiveEnrollments int `json:"active_enrollments"`
}

type CourseAverage struct {
	CourseID        uint   `json:"course_id"`
	CourseName      string `json:"course_name"`
	EnrolledCount   int    `json:"enrolled_count"`
	AverageProgress int    `json:"average_progress"`
}

// BuildAdminDashboard derives the administrator view from a snapshot.
func BuildAdminDashboard(snap *Snapshot, now time.Time) *AdminDashboard {
	idx := buildIndex(snap)

	dash := &AdminDashboard{
		PendingRequests: PendingRequests(snap.Users, snap.Enrollments, snap.Courses),
		CourseProgress:  make([]CourseAverage, 0, len(snap.Courses)),
		GeneratedAt:     now,
	}

	students := 0
	for _, u := range snap.Users {
		if u.Role == models.RoleStudent {
			students++
		}
	}
	active := 0
	for _, e := range snap.Enrollments {
		if e.Status == models.EnrollmentEnrolled {
			active++
		}
	}
	dash.Overview = AdminOverview{
		TotalStudents:     students,
		TotalCourses:      len(snap.Courses),
		TotalAssignments:  len(snap.Assignments),
		TotalSubmissions:  len(snap.Submissions),
		PendingApprovals:  len(dash.PendingRequests),
		ActiveEnrollments: active,
	}

	subsByStudent := make(map[string][]models.Submission)
	for _, s := range snap.Submissions {
		subsByStudent[s.StudentID] = append(subsByStudent[s.StudentID], s)
	}

	for _, c := range snap.Courses {
		assignments := idx.assignByCourse[c.ID]
		avg := CourseAverage{CourseID: c.ID, CourseName: c.Name}
		total := 0
		for _, e := range snap.Enrollments {
			if e.CourseID != c.ID {
				continue
			}
			if e.Status == models.EnrollmentEnrolled || e.Status == models.EnrollmentCompleted {
				avg.EnrolledCount++
				total += CourseProgress(assignments, subsByStudent[e.StudentID])
			}
		}
		if avg.EnrolledCount > 0 {
			avg.AverageProgress = total / avg.EnrolledCount
		}
		dash.CourseProgress = append(dash.CourseProgress, avg)
	}

	return dash
}

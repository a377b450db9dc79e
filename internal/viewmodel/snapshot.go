package viewmodel

import (
	"github.com/classbridge/lms-service/internal/models"
)

// Snapshot is a full result set of every collection a dashboard derives from,
// captured at one point in time. Feeds deliver updates independently and out
// of order, so builders always recompute from the latest whole snapshot
// instead of patching — calling a builder twice with the same snapshot yields
// the same view model.
type Snapshot struct {
	Users       []models.User
	Courses     []models.Course
	Enrollments []models.Enrollment
	Assignments []models.Assignment
	Submissions []models.Submission
	Schedules   []models.Schedule
	Notes       []models.Note
	Quizzes     []models.Quiz
}

// index groups the snapshot's collections by the keys the derivations join on.
type index struct {
	userByID          map[string]*models.User
	courseByID        map[uint]*models.Course
	enrollByStudent   map[string][]models.Enrollment
	assignByCourse    map[uint][]models.Assignment
	subByStudentAssig map[subKey]*models.Submission
}

type subKey struct {
	studentID    string
	assignmentID uint
}

func buildIndex(snap *Snapshot) *index {
	idx := &index{
		userByID:          make(map[string]*models.User, len(snap.Users)),
		courseByID:        make(map[uint]*models.Course, len(snap.Courses)),
		enrollByStudent:   make(map[string][]models.Enrollment),
		assignByCourse:    make(map[uint][]models.Assignment),
		subByStudentAssig: make(map[subKey]*models.Submission, len(snap.Submissions)),
	}
	for i := range snap.Users {
		idx.userByID[snap.Users[i].ID] = &snap.Users[i]
	}
	for i := range snap.Courses {
		idx.courseByID[snap.Courses[i].ID] = &snap.Courses[i]
	}
	for _, e := range snap.Enrollments {
		idx.enrollByStudent[e.StudentID] = append(idx.enrollByStudent[e.StudentID], e)
	}
	for _, a := range snap.Assignments {
		idx.assignByCourse[a.CourseID] = append(idx.assignByCourse[a.CourseID], a)
	}
	for i := range snap.Submissions {
		s := &snap.Submissions[i]
		idx.subByStudentAssig[subKey{s.StudentID, s.AssignmentID}] = s
	}
	return idx
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportCourseProgress renders one worksheet for a course: a row per enrolled
// or completed student with their derived progress and a column per
// assignment showing that student's submission status. The statuses come from
// the same derivation functions the dashboards use.
func (s *exportService) ExportCourseProgress(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	enrollments, err := s.repo.Enrollment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	assignments, err := s.repo.Assignment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })

	students := make([]models.Enrollment, 0, len(enrollments))
	studentIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status == models.EnrollmentEnrolled || e.Status == models.EnrollmentCompleted {
			students = append(students, e)
			studentIDs = append(studentIDs, e.StudentID)
		}
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].StudentID < students[j].StudentID })

	users, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	userByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	subsByStudent := make(map[string][]models.Submission)
	subByKey := make(map[string]*models.Submission)
	for _, a := range assignments {
		subs, err := s.repo.Submission().ListByAssignment(ctx, nil, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions: %w", err)
		}
		for i := range subs {
			sub := subs[i]
			subsByStudent[sub.StudentID] = append(subsByStudent[sub.StudentID], sub)
			subByKey[fmt.Sprintf("%s/%d", sub.StudentID, a.ID)] = &subs[i]
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Course Progress"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"Student ID", "Name", "Email", "Status", "Progress %"}
	for _, a := range assignments {
		headers = append(headers, a.Title)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	now := time.Now().UTC()
	for i, e := range students {
		name, email := "", ""
		if u, ok := userByID[e.StudentID]; ok {
			name, email = u.FullName, u.Email
		}

		row := []interface{}{
			e.StudentID,
			name,
			email,
			string(e.Status),
			viewmodel.CourseProgress(assignments, subsByStudent[e.StudentID]),
		}
		for _, a := range assignments {
			sub := subByKey[fmt.Sprintf("%s/%d", e.StudentID, a.ID)]
			row = append(row, string(viewmodel.AssignmentStatusFor(sub, a, now)))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Course progress exported",
		"course_id", courseID,
		"course_name", course.Name,
		"students", len(students))

	return buf.Bytes(), nil
}

// ExportGrades renders one row per submission in a course: who handed in
// what, when, and the grading outcome.
func (s *exportService) ExportGrades(ctx context.Context, courseID uint) ([]byte, error) {
	course, err := s.repo.Course().GetByID(ctx, nil, courseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	assignments, err := s.repo.Assignment().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	sort.SliceStable(assignments, func(i, j int) bool { return assignments[i].ID < assignments[j].ID })

	type gradeRow struct {
		assignment models.Assignment
		submission models.Submission
	}
	var rows []gradeRow
	studentIDSet := make(map[string]struct{})
	for _, a := range assignments {
		subs, err := s.repo.Submission().ListByAssignment(ctx, nil, a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list submissions: %w", err)
		}
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].StudentID < subs[j].StudentID })
		for _, sub := range subs {
			rows = append(rows, gradeRow{assignment: a, submission: sub})
			studentIDSet[sub.StudentID] = struct{}{}
		}
	}

	studentIDs := make([]string, 0, len(studentIDSet))
	for id := range studentIDSet {
		studentIDs = append(studentIDs, id)
	}
	users, err := s.repo.User().GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	userByID := make(map[string]*models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Grades"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{
		"Assignment", "Student ID", "Student Name", "Status",
		"Submitted At", "Graded At", "Graded By", "Grade Note",
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, r := range rows {
		name := ""
		if u, ok := userByID[r.submission.StudentID]; ok {
			name = u.FullName
		}
		gradedAt, gradedBy, gradeNote := "", "", ""
		if r.submission.GradedAt != nil {
			gradedAt = r.submission.GradedAt.UTC().Format(time.RFC3339)
		}
		if r.submission.GradedBy != nil {
			gradedBy = *r.submission.GradedBy
		}
		if r.submission.GradeNote != nil {
			gradeNote = *r.submission.GradeNote
		}

		row := []interface{}{
			r.assignment.Title,
			r.submission.StudentID,
			name,
			string(r.submission.EffectiveStatus()),
			r.submission.SubmittedAt.UTC().Format(time.RFC3339),
			gradedAt,
			gradedBy,
			gradeNote,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Grades exported",
		"course_id", courseID,
		"course_name", course.Name,
		"rows", len(rows))

	return buf.Bytes(), nil
}

// ExportPendingEnrollments renders the current approval queue in the same
// order the admin review screen shows it.
func (s *exportService) ExportPendingEnrollments(ctx context.Context) ([]byte, error) {
	snap, err := s.repo.Dashboard().LoadSnapshot(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	pending := viewmodel.PendingRequests(snap.Users, snap.Enrollments, snap.Courses)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Pending Enrollments"
	f.SetSheetName("Sheet1", sheet)

	headers := []interface{}{"Enrollment ID", "Student ID", "Student Name", "Email", "Course", "Requested At"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, p := range pending {
		row := []interface{}{
			p.EnrollmentID,
			p.StudentID,
			p.StudentName,
			p.StudentEmail,
			p.CourseName,
			p.RequestedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Pending enrollments exported", "rows", len(pending))

	return buf.Bytes(), nil
}

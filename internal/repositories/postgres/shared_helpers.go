package postgres

import (
	"fmt"

	"github.com/classbridge/lms-service/internal/repositories"
	"gorm.io/gorm"
)

// deleteChunkSize bounds how many ids a single cascade DELETE touches.
// Course teardown fans out over assignments and submissions; chunking keeps
// each statement small and lets a retry resume where the last run stopped.
const deleteChunkSize = 30

// chunkIDs splits ids into slices of at most deleteChunkSize.
func chunkIDs(ids []uint) [][]uint {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]uint, 0, (len(ids)+deleteChunkSize-1)/deleteChunkSize)
	for i := 0; i < len(ids); i += deleteChunkSize {
		end := i + deleteChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// handleDBError is a package-level helper for handling database errors
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyPaginationAndSort applies pagination and sorting with a whitelist of
// sort columns so request input never reaches the ORDER BY clause directly.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"id":         "id",
		"name":       "name",
		"title":      "title",
		"due_date":   "due_date",
	}

	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	query = query.Order(fmt.Sprintf("%s %s", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// applyEnrollmentFilters applies common filters to enrollment queries
func applyEnrollmentFilters(query *gorm.DB, filters repositories.EnrollmentFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.DateFrom != nil {
		query = query.Where("requested_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("requested_at <= ?", *filters.DateTo)
	}
	return query
}

// applyAssignmentFilters applies common filters to assignment queries
func applyAssignmentFilters(query *gorm.DB, filters repositories.AssignmentFilters) *gorm.DB {
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}
	return query
}

// applySubmissionFilters applies common filters to submission queries
func applySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filters.AssignmentID)
	}
	if filters.CourseID != nil {
		query = query.Where("course_id = ?", *filters.CourseID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

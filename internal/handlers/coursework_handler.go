package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

// CourseworkHandler covers assignments and the submissions handed in
// against them.
type CourseworkHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	submissionService services.SubmissionService
	validator         *validator.Validator
}

func NewCourseworkHandler(
	assignmentService services.AssignmentService,
	submissionService services.SubmissionService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseworkHandler {
	return &CourseworkHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		submissionService: submissionService,
		validator:         validator,
	}
}

// ===== ASSIGNMENTS =====

// CreateAssignment creates a new assignment
// @Summary Create assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body services.CreateAssignmentRequest true "Assignment data"
// @Success 201 {object} models.Assignment
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /admin/assignments [post]
func (h *CourseworkHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Assignment created", "assignment_id", assignment.ID, "course_id", req.CourseID)
	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment retrieves an assignment by ID
func (h *CourseworkHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListAssignments lists assignments with paging and optional course filter
func (h *CourseworkHandler) ListAssignments(c *gin.Context) {
	filters := repositories.AssignmentFilters{
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if courseID := parseQueryInt(c, "course_id", 0); courseID > 0 {
		id := uint(courseID)
		filters.CourseID = &id
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// ListCourseAssignments lists every assignment in one course
func (h *CourseworkHandler) ListCourseAssignments(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	assignments, err := h.assignmentService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignments": assignments, "count": len(assignments)})
}

// UpdateAssignment updates assignment fields
func (h *CourseworkHandler) UpdateAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// DeleteAssignment removes an assignment and its submissions
func (h *CourseworkHandler) DeleteAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Assignment deleted", "assignment_id", id, "admin_id", adminID)
	c.Status(http.StatusNoContent)
}

// ===== SUBMISSIONS =====

// SubmitWork upserts the caller's submission for an assignment. Resubmitting
// after grading clears the grade and puts the row back in the review queue.
// @Summary Submit work for an assignment
// @Tags submissions
// @Accept json
// @Produce json
// @Param submission body services.SubmitWorkRequest true "Submission data"
// @Success 200 {object} models.Submission
// @Failure 400 {object} ErrorResponse "Not enrolled in the course"
// @Failure 409 {object} ErrorResponse "Concurrent write detected"
// @Router /submissions [post]
func (h *CourseworkHandler) SubmitWork(c *gin.Context) {
	var req services.SubmitWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Work submitted",
		"submission_id", submission.ID, "assignment_id", req.AssignmentID, "student_id", studentID)
	c.JSON(http.StatusOK, submission)
}

// GradeSubmission marks a submission graded
// @Summary Grade submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param grade body services.GradeSubmissionRequest true "Grading data"
// @Success 200 {object} models.Submission
// @Failure 409 {object} ErrorResponse "Concurrent write detected"
// @Router /admin/submissions/grade [post]
func (h *CourseworkHandler) GradeSubmission(c *gin.Context) {
	var req services.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	graderID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	submission, err := h.submissionService.Grade(c.Request.Context(), &req, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Submission graded", "submission_id", req.SubmissionID, "grader_id", graderID)
	c.JSON(http.StatusOK, submission)
}

// RequestRevision sends a submission back to the student for another pass
func (h *CourseworkHandler) RequestRevision(c *gin.Context) {
	var req services.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	graderID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	submission, err := h.submissionService.RequestRevision(c.Request.Context(), &req, graderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Revision requested", "submission_id", req.SubmissionID, "grader_id", graderID)
	c.JSON(http.StatusOK, submission)
}

// GetSubmission retrieves a submission by ID
func (h *CourseworkHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ListSubmissions lists submissions with paging and filters
func (h *CourseworkHandler) ListSubmissions(c *gin.Context) {
	filters := repositories.SubmissionFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if assignmentID := parseQueryInt(c, "assignment_id", 0); assignmentID > 0 {
		id := uint(assignmentID)
		filters.AssignmentID = &id
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}

	submissions, err := h.submissionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ListAssignmentSubmissions lists every submission for one assignment
func (h *CourseworkHandler) ListAssignmentSubmissions(c *gin.Context) {
	assignmentID := h.parseIDParam(c, "id")
	if assignmentID == 0 {
		return
	}

	submissions, err := h.submissionService.ListByAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "count": len(submissions)})
}

// ListMySubmissions lists the caller's submissions
func (h *CourseworkHandler) ListMySubmissions(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	submissions, err := h.submissionService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions, "count": len(submissions)})
}

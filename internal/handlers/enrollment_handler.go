package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	exportService     services.ExportService
	validator         *validator.Validator
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		exportService:     exportService,
		validator:         validator,
	}
}

// RequestEnrollment records the caller's wish to join a course. Repeat
// requests return the existing row, whatever its status.
// @Summary Request enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body validator.EnrollmentRequest true "Course to join"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Router /enrollments/request [post]
func (h *EnrollmentHandler) RequestEnrollment(c *gin.Context) {
	var req validator.EnrollmentRequest
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

	enrollment, err := h.enrollmentService.Request(c.Request.Context(), studentID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Enrollment requested", "student_id", studentID, "course_id", req.CourseID)
	c.JSON(http.StatusOK, enrollment)
}

// ApproveEnrollment moves a pending request to enrolled
// @Summary Approve enrollment request
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 409 {object} ErrorResponse "Request already decided"
// @Router /admin/enrollments/{id}/approve [post]
func (h *EnrollmentHandler) ApproveEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	enrollment, err := h.enrollmentService.Approve(c.Request.Context(), id, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Enrollment approved", "enrollment_id", id, "admin_id", adminID)
	c.JSON(http.StatusOK, enrollment)
}

// RejectEnrollment removes a pending request
// @Summary Reject enrollment request
// @Tags enrollments
// @Param id path uint true "Enrollment ID"
// @Success 204
// @Failure 409 {object} ErrorResponse "Request already decided"
// @Router /admin/enrollments/{id}/reject [post]
func (h *EnrollmentHandler) RejectEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.enrollmentService.Reject(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Enrollment rejected", "enrollment_id", id, "admin_id", adminID)
	c.Status(http.StatusNoContent)
}

// CompleteEnrollment moves an enrolled student to completed
// @Summary Mark enrollment completed
// @Tags enrollments
// @Produce json
// @Param id path uint true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 409 {object} ErrorResponse "Enrollment is not active"
// @Router /admin/enrollments/{id}/complete [post]
func (h *EnrollmentHandler) CompleteEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	enrollment, err := h.enrollmentService.Complete(c.Request.Context(), id, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Enrollment completed", "enrollment_id", id, "admin_id", adminID)
	c.JSON(http.StatusOK, enrollment)
}

// AssignStudent enrolls a student directly, skipping the request round trip
// @Summary Assign student to course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param request body services.DirectAssignRequest true "Assignment data"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Router /admin/enrollments/assign [post]
func (h *EnrollmentHandler) AssignStudent(c *gin.Context) {
	var req services.DirectAssignRequest
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

	enrollment, err := h.enrollmentService.AssignDirect(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Student assigned to course",
		"student_id", req.StudentID, "course_id", req.CourseID, "admin_id", adminID)
	c.JSON(http.StatusOK, enrollment)
}

// WithdrawEnrollment removes a student from a course entirely
// @Summary Withdraw enrollment
// @Tags enrollments
// @Param id path uint true "Enrollment ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/enrollments/{id} [delete]
func (h *EnrollmentHandler) WithdrawEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.enrollmentService.Withdraw(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Enrollment withdrawn", "enrollment_id", id, "admin_id", adminID)
	c.Status(http.StatusNoContent)
}

// ListPendingEnrollments returns the approval queue, oldest first
// @Summary List pending enrollment requests
// @Tags enrollments
// @Produce json
// @Success 200 {array} viewmodel.PendingRequest
// @Router /admin/enrollments/pending [get]
func (h *EnrollmentHandler) ListPendingEnrollments(c *gin.Context) {
	pending, err := h.enrollmentService.ListPending(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending, "count": len(pending)})
}

// ExportPendingEnrollments streams the approval queue as a workbook
// @Summary Export pending enrollments as XLSX
// @Tags enrollments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /admin/enrollments/pending/export [get]
func (h *EnrollmentHandler) ExportPendingEnrollments(c *gin.Context) {
	data, err := h.exportService.ExportPendingEnrollments(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := "pending-enrollments-" + time.Now().UTC().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetMyEnrollmentStatus reports the caller's derived status for one course
// @Summary Get my enrollment status for a course
// @Tags enrollments
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} map[string]string
// @Router /enrollments/courses/{id}/status [get]
func (h *EnrollmentHandler) GetMyEnrollmentStatus(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}

	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	status, err := h.enrollmentService.GetStatus(c.Request.Context(), studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"course_id": courseID, "status": status})
}

// ListMyEnrollments returns every enrollment row for the caller
// @Summary List my enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {array} models.Enrollment
// @Router /enrollments/my [get]
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	enrollments, err := h.enrollmentService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments, "count": len(enrollments)})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewCourseHandler(
	courseService services.CourseService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		exportService: exportService,
		validator:     validator,
	}
}

// CreateCourse creates a new course
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CreateCourseRequest true "Course data"
// @Success 201 {object} services.CourseResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	course, err := h.courseService.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course created", "course_id", course.ID, "admin_id", adminID)
	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course with its rosters
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists courses with paging and optional name filter
// @Summary List courses
// @Tags courses
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param name query string false "Name filter"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Limit:     parseQueryInt(c, "limit", 20),
		Offset:    parseQueryInt(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if name := c.Query("name"); name != "" {
		filters.Name = &name
	}

	courses, err := h.courseService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

// UpdateCourse updates course fields
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param course body services.UpdateCourseRequest true "Course update data"
// @Success 200 {object} services.CourseResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
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

	course, err := h.courseService.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes a course and everything under it
// @Summary Delete course
// @Tags courses
// @Param id path uint true "Course ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Course deleted", "course_id", id, "admin_id", adminID)
	c.Status(http.StatusNoContent)
}

// GetCourseStats returns enrollment and submission counts for a course
// @Summary Get course statistics
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} repositories.CourseStats
// @Router /admin/courses/{id}/stats [get]
func (h *CourseHandler) GetCourseStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.courseService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportCourseProgress streams the per-student progress workbook
// @Summary Export course progress as XLSX
// @Tags courses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} binary
// @Router /admin/courses/{id}/export [get]
func (h *CourseHandler) ExportCourseProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.exportService.ExportCourseProgress(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-%d-progress.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ExportCourseGrades streams the per-submission grade workbook
// @Summary Export course grades as XLSX
// @Tags courses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} binary
// @Router /admin/courses/{id}/export/grades [get]
func (h *CourseHandler) ExportCourseGrades(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.exportService.ExportGrades(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("course-%d-grades.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

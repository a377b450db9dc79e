package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

// ContentHandler covers class schedules plus the three content kinds:
// notes, quizzes and library resources.
type ContentHandler struct {
	BaseHandler
	scheduleService services.ScheduleService
	contentService  services.ContentService
	validator       *validator.Validator
}

func NewContentHandler(
	scheduleService services.ScheduleService,
	contentService services.ContentService,
	validator *validator.Validator,
	logger utils.Logger,
) *ContentHandler {
	return &ContentHandler{
		BaseHandler:     NewBaseHandler(logger),
		scheduleService: scheduleService,
		contentService:  contentService,
		validator:       validator,
	}
}

// ===== SCHEDULES =====

// CreateSchedule creates a class schedule entry
// @Summary Create schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param schedule body services.CreateScheduleRequest true "Schedule data"
// @Success 201 {object} models.Schedule
// @Router /admin/schedules [post]
func (h *ContentHandler) CreateSchedule(c *gin.Context) {
	var req services.CreateScheduleRequest
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

	schedule, err := h.scheduleService.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Schedule created", "schedule_id", schedule.ID, "student_id", req.StudentID)
	c.JSON(http.StatusCreated, schedule)
}

// GetSchedule retrieves a schedule entry by ID
func (h *ContentHandler) GetSchedule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	schedule, err := h.scheduleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// ListSchedules lists schedule entries with paging and filters
func (h *ContentHandler) ListSchedules(c *gin.Context) {
	filters := repositories.ScheduleFilters{
		Limit:  parseQueryInt(c, "limit", 50),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if courseID := parseQueryInt(c, "course_id", 0); courseID > 0 {
		id := uint(courseID)
		filters.CourseID = &id
	}

	schedules, total, err := h.scheduleService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "total": total})
}

// UpdateSchedule updates a schedule entry
func (h *ContentHandler) UpdateSchedule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateScheduleRequest
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

	schedule, err := h.scheduleService.Update(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule removes a schedule entry
func (h *ContentHandler) DeleteSchedule(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== NOTES =====

// CreateNote creates a note addressed to an explicit student list
// @Summary Create note
// @Tags notes
// @Accept json
// @Produce json
// @Param note body services.CreateNoteRequest true "Note data"
// @Success 201 {object} models.Note
// @Router /admin/notes [post]
func (h *ContentHandler) CreateNote(c *gin.Context) {
	var req services.CreateNoteRequest
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

	note, err := h.contentService.CreateNote(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Note created", "note_id", note.ID, "recipients", len(req.StudentIDs))
	c.JSON(http.StatusCreated, note)
}

// UpdateNote updates note content and/or its audience
func (h *ContentHandler) UpdateNote(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateNoteRequest
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

	note, err := h.contentService.UpdateNote(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteNote removes a note and its audience rows
func (h *ContentHandler) DeleteNote(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteNote(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListNotes lists all notes with paging
func (h *ContentHandler) ListNotes(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)

	notes, total, err := h.contentService.ListNotes(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "total": total})
}

// ===== QUIZZES =====

// CreateQuiz creates a quiz visible to a course's enrolled students
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 404 {object} ErrorResponse "Course not found"
// @Router /admin/quizzes [post]
func (h *ContentHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
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

	quiz, err := h.contentService.CreateQuiz(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Quiz created", "quiz_id", quiz.ID, "course_id", req.CourseID)
	c.JSON(http.StatusCreated, quiz)
}

// UpdateQuiz updates quiz fields
func (h *ContentHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateQuizRequest
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

	quiz, err := h.contentService.UpdateQuiz(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes a quiz
func (h *ContentHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteQuiz(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListQuizzes lists all quizzes with paging
func (h *ContentHandler) ListQuizzes(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 20)
	offset := parseQueryInt(c, "offset", 0)

	quizzes, total, err := h.contentService.ListQuizzes(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes, "total": total})
}

// ===== RESOURCES =====

// CreateResource adds a file to the shared library
// @Summary Create library resource
// @Tags resources
// @Accept json
// @Produce json
// @Param resource body services.CreateResourceRequest true "Resource data"
// @Success 201 {object} models.Resource
// @Router /admin/resources [post]
func (h *ContentHandler) CreateResource(c *gin.Context) {
	var req services.CreateResourceRequest
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

	resource, err := h.contentService.CreateResource(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Resource created", "resource_id", resource.ID)
	c.JSON(http.StatusCreated, resource)
}

// UpdateResource updates resource fields
func (h *ContentHandler) UpdateResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateResourceRequest
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

	resource, err := h.contentService.UpdateResource(c.Request.Context(), id, &req, adminID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resource)
}

// DeleteResource removes a library resource
func (h *ContentHandler) DeleteResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	if err := h.contentService.DeleteResource(c.Request.Context(), id, adminID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListResources lists library resources. Every authenticated user can read
// the library.
func (h *ContentHandler) ListResources(c *gin.Context) {
	filters := repositories.ResourceFilters{
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if query := c.Query("q"); query != "" {
		filters.Query = &query
	}

	resources, total, err := h.contentService.ListResources(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources, "total": total})
}

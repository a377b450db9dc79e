package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

// StudentHandler serves the student-facing "me" surface: dashboard, profile
// and the per-student content feeds.
type StudentHandler struct {
	BaseHandler
	studentService  services.StudentService
	scheduleService services.ScheduleService
	contentService  services.ContentService
	validator       *validator.Validator
}

func NewStudentHandler(
	studentService services.StudentService,
	scheduleService services.ScheduleService,
	contentService services.ContentService,
	validator *validator.Validator,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:     NewBaseHandler(logger),
		studentService:  studentService,
		scheduleService: scheduleService,
		contentService:  contentService,
		validator:       validator,
	}
}

// GetMyDashboard returns the caller's derived dashboard
// @Summary Get my dashboard
// @Tags students
// @Produce json
// @Success 200 {object} viewmodel.StudentDashboard
// @Router /students/me/dashboard [get]
func (h *StudentHandler) GetMyDashboard(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	dashboard, err := h.studentService.GetDashboard(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetMyProfile returns the caller's profile row
func (h *StudentHandler) GetMyProfile(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	profile, err := h.studentService.GetProfile(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile updates the caller's display fields
// @Summary Update my profile
// @Tags students
// @Accept json
// @Produce json
// @Param profile body services.UpdateProfileRequest true "Profile data"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /students/me/profile [put]
func (h *StudentHandler) UpdateMyProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
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

	profile, err := h.studentService.UpdateProfile(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Profile updated", "student_id", studentID)
	c.JSON(http.StatusOK, profile)
}

// GetMySchedules returns the caller's upcoming classes
func (h *StudentHandler) GetMySchedules(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	schedules, err := h.scheduleService.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// GetMyNotes returns the notes addressed to the caller
func (h *StudentHandler) GetMyNotes(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	notes, err := h.contentService.ListNotesForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

// GetMyQuizzes returns quizzes for the courses the caller is or was
// enrolled in
func (h *StudentHandler) GetMyQuizzes(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	quizzes, err := h.contentService.ListQuizzesForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes, "count": len(quizzes)})
}

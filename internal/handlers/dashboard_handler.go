package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/realtime"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/viewmodel"
)

// DashboardHandler serves the admin overview surface, including the live
// snapshot stream.
type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
	hub              *realtime.Hub
}

func NewDashboardHandler(
	dashboardService services.DashboardService,
	hub *realtime.Hub,
	logger utils.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
		hub:              hub,
	}
}

// GetAdminDashboard returns the derived admin dashboard
// @Summary Get admin dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} viewmodel.AdminDashboard
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetAdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetOverview returns headline counts for the admin home
func (h *DashboardHandler) GetOverview(c *gin.Context) {
	counts, err := h.dashboardService.GetOverviewCounts(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, counts)
}

// ListStudents lists student accounts with paging and search
func (h *DashboardHandler) ListStudents(c *gin.Context) {
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}

	students, total, err := h.dashboardService.ListStudents(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students, "total": total})
}

// StreamDashboard pushes a freshly derived admin dashboard over SSE whenever
// the underlying data changes. The subscription is dropped as soon as the
// client disconnects.
// @Summary Stream admin dashboard updates
// @Tags dashboard
// @Produce text/event-stream
// @Router /admin/dashboard/stream [get]
func (h *DashboardHandler) StreamDashboard(c *gin.Context) {
	sub := h.hub.Subscribe()
	defer sub.Unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.LogRequest(c, "Dashboard stream opened", "subscribers", h.hub.SubscriberCount())

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("dashboard", viewmodel.BuildAdminDashboard(snap, time.Now().UTC()))
			return true
		}
	})
}

// StreamStudentDashboard is the per-student variant of the snapshot stream.
// Students see only their own derived view.
func (h *DashboardHandler) StreamStudentDashboard(c *gin.Context) {
	studentID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	role, err := GetUserRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	if target := c.Query("student_id"); target != "" && role == models.RoleAdmin {
		studentID = target
	}

	sub := h.hub.Subscribe()
	defer sub.Unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return false
			}
			c.SSEvent("dashboard", viewmodel.BuildStudentDashboard(snap, studentID, time.Now().UTC()))
			return true
		}
	})
}

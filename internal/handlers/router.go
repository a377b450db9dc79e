package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/classbridge/lms-service/internal/config"
	"github.com/classbridge/lms-service/internal/models"
	"github.com/classbridge/lms-service/internal/realtime"
	"github.com/classbridge/lms-service/internal/repositories"
	"github.com/classbridge/lms-service/internal/services"
	"github.com/classbridge/lms-service/internal/storage"
	"github.com/classbridge/lms-service/internal/utils"
	"github.com/classbridge/lms-service/internal/validator"
)

type HandlerManager struct {
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	courseworkHandler *CourseworkHandler
	contentHandler    *ContentHandler
	studentHandler    *StudentHandler
	dashboardHandler  *DashboardHandler
	uploadHandler     *UploadHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	cfg *config.Config,
	userRepo repositories.UserRepository,
	hub *realtime.Hub,
	blobStore storage.BlobStore,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(cfg, userRepo, logger)

	return &HandlerManager{
		courseHandler:     NewCourseHandler(serviceManager.Course(), serviceManager.Export(), validator, logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), serviceManager.Export(), validator, logger),
		courseworkHandler: NewCourseworkHandler(serviceManager.Assignment(), serviceManager.Submission(), validator, logger),
		contentHandler:    NewContentHandler(serviceManager.Schedule(), serviceManager.Content(), validator, logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), serviceManager.Schedule(), serviceManager.Content(), validator, logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), hub, logger),
		uploadHandler:     NewUploadHandler(blobStore, logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Course routes - browsing is open to all authenticated users
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/assignments", hm.courseworkHandler.ListCourseAssignments)

			// Course management - Admins only
			courses.POST("", adminOnly, hm.courseHandler.CreateCourse)
			courses.PUT("/:id", adminOnly, hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", adminOnly, hm.courseHandler.DeleteCourse)
			courses.GET("/:id/stats", adminOnly, hm.courseHandler.GetCourseStats)
			courses.GET("/:id/export", adminOnly, hm.courseHandler.ExportCourseProgress)
			courses.GET("/:id/export/grades", adminOnly, hm.courseHandler.ExportCourseGrades)
		}

		// Enrollment routes
		enrollments := v1.Group("/enrollments")
		{
			// Student-facing
			enrollments.POST("/request", hm.enrollmentHandler.RequestEnrollment)
			enrollments.GET("/my", hm.enrollmentHandler.ListMyEnrollments)
			enrollments.GET("/courses/:id/status", hm.enrollmentHandler.GetMyEnrollmentStatus)

			// Approval queue - Admins only
			enrollments.GET("/pending", adminOnly, hm.enrollmentHandler.ListPendingEnrollments)
			enrollments.GET("/pending/export", adminOnly, hm.enrollmentHandler.ExportPendingEnrollments)
			enrollments.POST("/assign", adminOnly, hm.enrollmentHandler.AssignStudent)
			enrollments.POST("/:id/approve", adminOnly, hm.enrollmentHandler.ApproveEnrollment)
			enrollments.POST("/:id/reject", adminOnly, hm.enrollmentHandler.RejectEnrollment)
			enrollments.POST("/:id/complete", adminOnly, hm.enrollmentHandler.CompleteEnrollment)
			enrollments.DELETE("/:id", adminOnly, hm.enrollmentHandler.WithdrawEnrollment)
		}

		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", hm.courseworkHandler.ListAssignments)
			assignments.GET("/:id", hm.courseworkHandler.GetAssignment)

			assignments.POST("", adminOnly, hm.courseworkHandler.CreateAssignment)
			assignments.PUT("/:id", adminOnly, hm.courseworkHandler.UpdateAssignment)
			assignments.DELETE("/:id", adminOnly, hm.courseworkHandler.DeleteAssignment)
			assignments.GET("/:id/submissions", adminOnly, hm.courseworkHandler.ListAssignmentSubmissions)
		}

		// Submission routes
		submissions := v1.Group("/submissions")
		{
			submissions.POST("", hm.courseworkHandler.SubmitWork)
			submissions.GET("/my", hm.courseworkHandler.ListMySubmissions)
			submissions.GET("/:id", hm.courseworkHandler.GetSubmission)

			submissions.GET("", adminOnly, hm.courseworkHandler.ListSubmissions)
			submissions.POST("/grade", adminOnly, hm.courseworkHandler.GradeSubmission)
			submissions.POST("/request-revision", adminOnly, hm.courseworkHandler.RequestRevision)
		}

		// Schedule routes - Admins only; students read theirs under /students/me
		schedules := v1.Group("/schedules")
		schedules.Use(adminOnly)
		{
			schedules.POST("", hm.contentHandler.CreateSchedule)
			schedules.GET("", hm.contentHandler.ListSchedules)
			schedules.GET("/:id", hm.contentHandler.GetSchedule)
			schedules.PUT("/:id", hm.contentHandler.UpdateSchedule)
			schedules.DELETE("/:id", hm.contentHandler.DeleteSchedule)
		}

		// Note routes - Admins only; students read theirs under /students/me
		notes := v1.Group("/notes")
		notes.Use(adminOnly)
		{
			notes.POST("", hm.contentHandler.CreateNote)
			notes.GET("", hm.contentHandler.ListNotes)
			notes.PUT("/:id", hm.contentHandler.UpdateNote)
			notes.DELETE("/:id", hm.contentHandler.DeleteNote)
		}

		// Quiz routes - Admins only; students read theirs under /students/me
		quizzes := v1.Group("/quizzes")
		quizzes.Use(adminOnly)
		{
			quizzes.POST("", hm.contentHandler.CreateQuiz)
			quizzes.GET("", hm.contentHandler.ListQuizzes)
			quizzes.PUT("/:id", hm.contentHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.contentHandler.DeleteQuiz)
		}

		// Resource routes - the library is readable by everyone
		resources := v1.Group("/resources")
		{
			resources.GET("", hm.contentHandler.ListResources)

			resources.POST("", adminOnly, hm.contentHandler.CreateResource)
			resources.PUT("/:id", adminOnly, hm.contentHandler.UpdateResource)
			resources.DELETE("/:id", adminOnly, hm.contentHandler.DeleteResource)
		}

		// Student routes - the caller's own view
		students := v1.Group("/students")
		students.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			students.GET("/me/dashboard", hm.studentHandler.GetMyDashboard)
			students.GET("/me/dashboard/stream", hm.dashboardHandler.StreamStudentDashboard)
			students.GET("/me/profile", hm.studentHandler.GetMyProfile)
			students.PUT("/me/profile", hm.studentHandler.UpdateMyProfile)
			students.GET("/me/schedules", hm.studentHandler.GetMySchedules)
			students.GET("/me/notes", hm.studentHandler.GetMyNotes)
			students.GET("/me/quizzes", hm.studentHandler.GetMyQuizzes)
		}

		// Admin dashboard routes
		admin := v1.Group("/admin")
		admin.Use(adminOnly)
		{
			admin.GET("/dashboard", hm.dashboardHandler.GetAdminDashboard)
			admin.GET("/dashboard/stream", hm.dashboardHandler.StreamDashboard)
			admin.GET("/overview", hm.dashboardHandler.GetOverview)
			admin.GET("/students", hm.dashboardHandler.ListStudents)
		}

		// Uploads
		v1.POST("/uploads", hm.uploadHandler.UploadFile)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mertcakir/coursereg/internal/app/controllers"
	"github.com/mertcakir/coursereg/internal/app/models"
	"github.com/mertcakir/coursereg/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	courseController *controllers.CourseController,
	enrollmentController *controllers.EnrollmentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	// --- Public routes ---
	api.POST("/register", studentController.Register)
	api.POST("/students/login", authController.LoginStudent)
	api.POST("/admins/login", authController.LoginAdmin)
	api.GET("/courses", courseController.List)

	auth := api.Group("/auth")
	{
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/profile", studentController.Profile)

		// Admin or the student themself; the controller enforces ownership.
		authenticated.GET("/students/:id/enrollments", enrollmentController.GetByStudent)

		// --- Admin-only routes ---
		admin := authenticated.Group("")
		admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			admin.GET("/students", studentController.List)
			admin.GET("/students/export/csv", studentController.ExportCSV)
			admin.GET("/students/export/pdf", studentController.ExportPDF)
			admin.GET("/students/:id", studentController.Get)
			admin.GET("/students/:id/audit", studentController.AuditHistory)
			admin.PUT("/students/:id", studentController.Update)
			admin.DELETE("/students/:id", studentController.Delete)

			admin.PUT("/enrollments/:id", enrollmentController.Update)
		}
	}
}

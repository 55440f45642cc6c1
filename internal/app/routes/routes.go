package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studycrew/web/internal/app/controllers"
	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/app/nav"
	"github.com/studycrew/web/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	pageController *controllers.PageController,
	authController *controllers.AuthController,
	dashboardController *controllers.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// --- Public pages ---
	router.GET(nav.PathHome, pageController.Home)
	router.GET(nav.PathAbout, pageController.About)
	router.GET(nav.PathContact, pageController.Contact)
	router.POST(nav.PathContact, pageController.SubmitContact)

	// --- Auth forms ---
	auth := router.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
	}

	// --- Dashboards, gated by role ---
	assistant := router.Group(nav.PathAssistantDashboard)
	assistant.Use(authMiddleware.RoleRequired(models.RoleAssistant))
	{
		assistant.GET("", dashboardController.Assistant)
		assistant.POST("/requests", dashboardController.AssistantRequests)
	}

	student := router.Group(nav.PathStudentDashboard)
	student.Use(authMiddleware.RoleRequired(models.RoleUser))
	{
		student.GET("", dashboardController.Student)
	}

	// Health check
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.NoRoute(middleware.NotFound())
}

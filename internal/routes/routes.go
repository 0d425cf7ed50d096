package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinical-case-server/internal/config"
	"clinical-case-server/internal/handlers"
	"clinical-case-server/internal/middleware"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
	"clinical-case-server/internal/services"
)

// Dependencies carries the wired core services the HTTP layer is built on.
type Dependencies struct {
	Users        repository.UserRepository
	Access       *services.AccessPolicy
	Cases        *services.CaseService
	Appointments *services.AppointmentService
	Grants       *services.GrantService
	Profiles     *services.ProfileService
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, deps Dependencies) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, deps.Profiles)
	userHandler := handlers.NewUserHandler(db, deps.Profiles)
	profileHandler := handlers.NewProfileHandler(deps.Profiles, deps.Access)
	caseHandler := handlers.NewCaseHandler(deps.Cases, deps.Users, deps.Access)
	appointmentHandler := handlers.NewAppointmentHandler(deps.Appointments, deps.Cases, deps.Access)
	grantHandler := handlers.NewGrantHandler(deps.Grants)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
		}

		// Profile routes. Reads of other users' profiles are gated by the
		// access policy inside the handler.
		profileRoutes := private.Group("/profile")
		{
			profileRoutes.GET("", profileHandler.GetProfile)
			profileRoutes.PATCH("", profileHandler.UpdateProfile)
		}

		// User management routes (typically admin-only)
		userRoutes := private.Group("/users")
		{
			// Doctor directory - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Admin-only routes
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin)) // Only Admins
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PATCH("/:id/blacklist", userHandler.SetBlacklist)
			}
		}

		// Case routes
		caseRoutes := private.Group("/cases")
		{
			caseRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleNurse, models.RoleAdmin), caseHandler.OpenCase)
			caseRoutes.GET("", caseHandler.ListCases) // Logic inside handler differentiates by role
			caseRoutes.GET("/:id", caseHandler.GetCase)
			caseRoutes.PATCH("/:id/close", caseHandler.CloseCase)
			caseRoutes.PATCH("/:id/assign-doctor", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse, models.RoleAdmin), caseHandler.AssignDoctor)

			caseRoutes.POST("/:id/messages", caseHandler.PostMessage)
			caseRoutes.GET("/:id/messages", caseHandler.ListMessages)

			// Appointments are requested against a case
			caseRoutes.POST("/:id/appointments", appointmentHandler.CreateAppointment)
			caseRoutes.GET("/:id/appointments", appointmentHandler.ListAppointmentsForCase)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointment) // Authorization inside handler
			appointmentRoutes.PATCH("/:id/approval", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.SetApproval)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)

			// Visit records (Doctor, Admin)
			appointmentRoutes.POST("/:id/visit", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.CreateVisit)
			appointmentRoutes.PATCH("/:id/visit", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), appointmentHandler.UpdateVisit)
		}

		// Access grant routes (grant and revoke are patient actions)
		grantRoutes := private.Group("/grants")
		{
			grantRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient), grantHandler.CreateGrant)
			grantRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RolePatient), grantHandler.RevokeGrant)
			grantRoutes.GET("", grantHandler.ListActiveGrants)
		}

		// Triage routes
		triageRoutes := private.Group("/triage")
		{
			triageRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleNurse), caseHandler.RequestTriage)
			triageRoutes.PATCH("/:id/accept", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), caseHandler.AcceptTriage)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}

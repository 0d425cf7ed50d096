package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clinical-case-server/internal/config"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
	"clinical-case-server/internal/routes"
	"clinical-case-server/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer logger.Sync()

	// Create a DatabaseConfig for models
	modelDbConfig := models.DatabaseConfig{
		DSN: cfg.Database.DSN,
	}

	// Initialize database connection
	db, err := models.InitDB(modelDbConfig)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	// Wire the store layer and core services
	users := repository.NewUserRepository(db, logger)
	cases := repository.NewCaseRepository(db, logger)
	appointments := repository.NewAppointmentRepository(db, logger)
	grants := repository.NewGrantRepository(db, logger)

	clock := services.SystemClock()
	deps := routes.Dependencies{
		Users:        users,
		Access:       services.NewAccessPolicy(cases, grants, clock, logger),
		Cases:        services.NewCaseService(cases, users, logger),
		Appointments: services.NewAppointmentService(appointments, cases, clock, logger),
		Grants:       services.NewGrantService(grants, users, clock, logger),
		Profiles:     services.NewProfileService(users, logger),
	}

	// Seed the default admin account so a fresh deployment is reachable
	if err := services.EnsureAdminUser(context.Background(), users, cfg.Admin.Email, cfg.Admin.Password, logger); err != nil {
		logger.Fatal("admin bootstrap failed", zap.Error(err))
	}

	// Initialize Gin router
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, deps)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(serverAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger builds a production logger, or a human-readable development one.
func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

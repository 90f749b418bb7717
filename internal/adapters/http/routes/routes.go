package routes

import (
	"solidarite-maraude/internal/adapters/http/handlers"
	"solidarite-maraude/internal/adapters/http/middleware"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/config"
	"solidarite-maraude/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, notifyService *services.NotificationService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	associationRepo := repositories.NewAssociationRepository(db)
	maraudeRepo := repositories.NewMaraudeRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	distTypeRepo := repositories.NewDistributionTypeRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, associationRepo, cfg)
	userService := services.NewUserService(userRepo)
	associationService := services.NewAssociationService(associationRepo)
	maraudeService := services.NewMaraudeService(maraudeRepo)
	merchantService := services.NewMerchantService(merchantRepo)
	distTypeService := services.NewDistributionTypeService(distTypeRepo)
	reportService := services.NewReportService(reportRepo, maraudeRepo, distTypeRepo, userRepo, notifyService, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	associationHandler := handlers.NewAssociationHandler(associationService)
	maraudeHandler := handlers.NewMaraudeHandler(maraudeService)
	merchantHandler := handlers.NewMerchantHandler(merchantService)
	distTypeHandler := handlers.NewDistributionTypeHandler(distTypeService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Public discovery routes
	apiV1.Get("/maraudes/today/active", maraudeHandler.TodayActive)
	apiV1.Get("/maraudes/weekly-schedule", maraudeHandler.WeeklySchedule)
	apiV1.Get("/distribution-types", distTypeHandler.List)

	// Maraude routes (authenticated)
	maraudeRoutes := apiV1.Group("/maraudes")
	maraudeRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMaraudeRoutes(maraudeRoutes, maraudeHandler)

	// Report routes (authenticated)
	reportRoutes := apiV1.Group("/reports")
	reportRoutes.Use(middleware.AuthMiddleware(cfg))
	setupReportRoutes(reportRoutes, reportHandler)

	// Merchant routes (authenticated)
	merchantRoutes := apiV1.Group("/merchants")
	merchantRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMerchantRoutes(merchantRoutes, merchantHandler)

	// Distribution type admin routes
	distTypeRoutes := apiV1.Group("/distribution-types")
	distTypeRoutes.Use(middleware.AuthMiddleware(cfg))
	distTypeRoutes.Use(middleware.AdminOnly())
	setupDistributionTypeRoutes(distTypeRoutes, distTypeHandler)

	// Association routes (authenticated)
	associationRoutes := apiV1.Group("/associations")
	associationRoutes.Use(middleware.AuthMiddleware(cfg))
	setupAssociationRoutes(associationRoutes, associationHandler)

	// User routes (authenticated)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes, brute-force limited
	router.Post("/register-association", middleware.AuthRateLimiter(), handler.RegisterAssociation)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupMaraudeRoutes configures maraude action routes
func setupMaraudeRoutes(router fiber.Router, handler *handlers.MaraudeHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Patch("/:id/status", handler.UpdateStatus)
	router.Delete("/:id", handler.Delete)
}

// setupReportRoutes configures maraude report routes
func setupReportRoutes(router fiber.Router, handler *handlers.ReportHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/statistics", handler.Statistics)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Patch("/:id/submit", handler.Submit)
	router.Patch("/:id/validate", handler.Validate)
	router.Post("/:id/send-email", handler.SendEmail)
	router.Delete("/:id", handler.Delete)
}

// setupMerchantRoutes configures merchant routes
func setupMerchantRoutes(router fiber.Router, handler *handlers.MerchantHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Patch("/:id/verify", middleware.AdminOnly(), handler.Verify)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupDistributionTypeRoutes configures distribution type admin routes
func setupDistributionTypeRoutes(router fiber.Router, handler *handlers.DistributionTypeHandler) {
	router.Post("/", handler.Create)
	router.Put("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
}

// setupAssociationRoutes configures association routes
func setupAssociationRoutes(router fiber.Router, handler *handlers.AssociationHandler) {
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/:id", handler.Get)
	router.Put("/:id", handler.Update)
	router.Patch("/:id/activate", middleware.AdminOnly(), handler.Activate)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupUserRoutes configures user routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.CoordinatorOrAdmin(), handler.List)
	router.Put("/profile", handler.UpdateProfile)
	router.Put("/change-password", handler.ChangePassword)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.CoordinatorOrAdmin(), handler.Update)
	router.Delete("/:id", middleware.CoordinatorOrAdmin(), handler.Delete)
}

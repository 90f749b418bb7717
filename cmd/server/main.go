package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solidarite-maraude/internal/adapters/http/middleware"
	"solidarite-maraude/internal/adapters/http/routes"
	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/config"
	"solidarite-maraude/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title Solidarité Maraude API
// @version 1.0
// @description Coordination backend for street outreach associations

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed reference data and bootstrap admin
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Email notifications (SES), disabled when SES_FROM_EMAIL is unset
	notifyService, err := services.NewNotificationService(context.Background(),
		cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.FromName)
	if err != nil {
		log.Fatalf("❌ Failed to init notification service: %v", err)
	}

	// Scheduled jobs: token purge 03:00, daily digest 07:30
	cronService := services.NewCronService(db, notifyService)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Solidarité Maraude API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, db, cfg, notifyService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}

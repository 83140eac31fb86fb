package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/adapters/http/routes"
	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/config"
	"sacco-hub/internal/logger"
	"sacco-hub/internal/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

// @title SACCO Hub API
// @version 1.0
// @description Membership administration API for savings and credit cooperatives
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@sacco-hub.co.ke

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

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

	// Setup structured logging with rotation
	logger.Setup(cfg.LogLevel)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed master data (contribution types, document categories, SMS templates)
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed master data: %v", err)
	}

	// Document file storage
	store, err := storage.NewDiskStore(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("❌ Failed to initialize file storage: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "SACCO Hub API v1.0",
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, storage and cfg for dependency injection)
	cronService := routes.Setup(app, db, store, cfg)

	// Start scheduled jobs (document expiry 08:30, review digest 09:00)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer cronService.Stop()

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

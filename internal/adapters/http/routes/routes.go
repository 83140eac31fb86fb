package routes

import (
	"time"

	"sacco-hub/internal/adapters/http/handlers"
	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/adapters/persistence/repositories"
	"sacco-hub/internal/config"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application. It wires repositories,
// services and handlers, and returns the cron service so the caller controls
// its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, store storage.Store, cfg *config.Config) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	accountRepo := repositories.NewAccountRepository(db)
	appRepo := repositories.NewApplicationRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	notifRepo := repositories.NewNotificationRepository(db)

	// Initialize services. The SMS service doubles as the notifier for
	// review outcomes.
	smsService := services.NewSMSService(notifRepo, userRepo, cfg.SMS)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	memberService := services.NewMemberService(userRepo, accountRepo)
	appService := services.NewApplicationService(appRepo, userRepo, smsService)
	conService := services.NewContributionService(ledgerRepo, userRepo, smsService)
	docService := services.NewDocumentService(docRepo, store)
	dashService := services.NewDashboardService(db)
	cronService := services.NewCronService(docService, appService, conService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	memberHandler := handlers.NewMemberHandler(memberService)
	appHandler := handlers.NewApplicationHandler(appService)
	conHandler := handlers.NewContributionHandler(conService)
	docHandler := handlers.NewDocumentHandler(docService)
	notifHandler := handlers.NewNotificationHandler(smsService)
	dashHandler := handlers.NewDashboardHandler(dashService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Profile routes (authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	setupProfileRoutes(profileRoutes, memberHandler)

	// Member management routes (admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, memberHandler)

	// Application review workflow
	appRoutes := apiV1.Group("/applications")
	appRoutes.Use(middleware.AuthMiddleware(cfg))
	setupApplicationRoutes(appRoutes, appHandler)

	// Contribution ledger
	conRoutes := apiV1.Group("/contributions")
	setupContributionRoutes(conRoutes, conHandler, cfg)

	// Documents
	docRoutes := apiV1.Group("/documents")
	setupDocumentRoutes(docRoutes, docHandler, cfg)

	// SMS notifications
	notifRoutes := apiV1.Group("/notifications")
	notifRoutes.Use(middleware.AuthMiddleware(cfg))
	setupNotificationRoutes(notifRoutes, notifHandler)

	// Dashboards
	dashRoutes := apiV1.Group("/dashboard")
	dashRoutes.Use(middleware.AuthMiddleware(cfg))
	dashRoutes.Use(middleware.PrivateCacheHeaders(time.Minute))
	setupDashboardRoutes(dashRoutes, dashHandler)

	return cronService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Token responses must never land in a shared cache
	router.Use(middleware.NoCacheHeaders())

	// Public routes (5 req/min/IP against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupProfileRoutes configures the calling member's profile routes,
// including spouse, children, beneficiary and next-of-kin records
func setupProfileRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	router.Get("/", handler.GetProfile)
	router.Put("/", handler.UpdateProfile)

	router.Get("/spouse", handler.GetSpouse)
	router.Put("/spouse", handler.UpsertSpouse)

	router.Get("/children", handler.ListChildren)
	router.Post("/children", handler.AddChild)
	router.Put("/children/:id", handler.UpdateChild)
	router.Delete("/children/:id", handler.RemoveChild)

	router.Get("/beneficiaries", handler.ListBeneficiaries)
	router.Post("/beneficiaries", handler.AddBeneficiary)
	router.Put("/beneficiaries/:id", handler.UpdateBeneficiary)
	router.Post("/beneficiaries/:id/deceased", handler.MarkBeneficiaryDeceased)
	router.Post("/beneficiaries/:id/replace", handler.ReplaceBeneficiary)
	router.Delete("/beneficiaries/:id", handler.RemoveBeneficiary)

	router.Get("/next-of-kin", handler.GetNextOfKin)
	router.Put("/next-of-kin", handler.UpsertNextOfKin)
}

// setupUserRoutes configures member administration routes (admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.MemberHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Patch("/:id/active", handler.SetUserActive)
	router.Patch("/:id/role", handler.SetUserRole)
	router.Delete("/:id", handler.DeleteUser)
}

// setupApplicationRoutes configures entry/exit application routes
func setupApplicationRoutes(router fiber.Router, handler *handlers.ApplicationHandler) {
	router.Post("/", handler.Submit)
	router.Get("/mine", handler.ListMine)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/pending", middleware.AdminOnly(), handler.ListPending)
	router.Post("/:id/review", middleware.AdminOnly(), handler.Review)

	router.Get("/:id", handler.Get)
}

// setupContributionRoutes configures contribution ledger routes
func setupContributionRoutes(router fiber.Router, handler *handlers.ContributionHandler, cfg *config.Config) {
	// Contribution types are public master data, cached for an hour
	router.Get("/types", middleware.MasterDataCache(), handler.ListTypes)

	router.Use(middleware.AuthMiddleware(cfg))

	router.Post("/", handler.Submit)
	router.Get("/mine", handler.ListMine)
	router.Get("/balances/mine", handler.MyBalances)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/pending", middleware.AdminOnly(), handler.ListPending)
	router.Get("/balances", middleware.AdminOnly(), handler.AllBalances)
	router.Get("/summaries", middleware.AdminOnly(), handler.Summaries)
	router.Post("/:id/verify", middleware.AdminOnly(), handler.Verify)

	router.Get("/:id", handler.Get)
}

// setupDocumentRoutes configures document routes
func setupDocumentRoutes(router fiber.Router, handler *handlers.DocumentHandler, cfg *config.Config) {
	// Categories are public master data
	router.Get("/categories", middleware.MasterDataCache(), handler.ListCategories)

	router.Use(middleware.AuthMiddleware(cfg))

	router.Post("/", handler.Upload)
	router.Get("/mine", handler.ListMine)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/pending", middleware.AdminOnly(), handler.ListPending)
	router.Post("/:id/verify", middleware.AdminOnly(), handler.Verify)

	router.Get("/:id", handler.Get)
	router.Get("/:id/file", handler.Download)
	router.Post("/:id/replace", handler.Replace)
	router.Delete("/:id", handler.Delete)
}

// setupNotificationRoutes configures SMS notification routes
func setupNotificationRoutes(router fiber.Router, handler *handlers.NotificationHandler) {
	router.Get("/mine", handler.ListMine)

	// Admin routes
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Get("/templates", middleware.AdminOnly(), handler.ListTemplates)
	router.Put("/templates/:name", middleware.AdminOnly(), handler.UpdateTemplate)
	router.Post("/send", middleware.AdminOnly(), handler.SendBulk)
}

// setupDashboardRoutes configures dashboard routes
func setupDashboardRoutes(router fiber.Router, handler *handlers.DashboardHandler) {
	router.Get("/me", handler.GetMemberDashboard)
	router.Get("/admin", middleware.AdminOnly(), handler.GetAdminDashboard)
}

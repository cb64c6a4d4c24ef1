package routes

import (
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/http/handlers"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/http/middleware"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/config"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	donorRepo := repositories.NewDonorRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	patientRepo := repositories.NewPatientRepository(db)
	caseRepo := repositories.NewCaseRepository(db)
	donationRepo := repositories.NewDonationRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)

	// Initialize services
	authService := services.NewAuthService(donorRepo, refreshTokenRepo, cfg)
	donorService := services.NewDonorService(donorRepo)
	patientService := services.NewPatientService(patientRepo)
	caseService := services.NewCaseService(db, caseRepo, patientRepo)
	donationService := services.NewDonationService(db, caseRepo, donationRepo, donorRepo)
	invoiceService := services.NewInvoiceService(caseRepo, invoiceRepo, donationRepo)
	transparencyService := services.NewTransparencyService(db, caseRepo)
	statsService := services.NewStatsService(db)
	reconcileService := services.NewReconcileService(db, donationRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	donorHandler := handlers.NewDonorHandler(donorService)
	patientHandler := handlers.NewPatientHandler(patientService)
	caseHandler := handlers.NewCaseHandler(caseService)
	donationHandler := handlers.NewDonationHandler(donationService)
	transparencyHandler := handlers.NewTransparencyHandler(transparencyService, invoiceService)
	adminHandler := handlers.NewAdminHandler(statsService, reconcileService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, stricter rate limit)
	authRoutes := apiV1.Group("/auth", middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Donation routes
	donationRoutes := apiV1.Group("/donations", middleware.NoCacheHeaders())
	setupDonationRoutes(donationRoutes, donationHandler, cfg)

	// Case routes
	caseRoutes := apiV1.Group("/cases")
	setupCaseRoutes(caseRoutes, caseHandler, cfg)

	// Transparency routes
	transparencyRoutes := apiV1.Group("/transparency")
	setupTransparencyRoutes(transparencyRoutes, transparencyHandler, cfg)

	// Donor directory routes
	donorRoutes := apiV1.Group("/donors")
	setupDonorRoutes(donorRoutes, donorHandler, cfg)

	// Patient directory routes (Admin only)
	patientRoutes := apiV1.Group("/patients")
	patientRoutes.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	setupPatientRoutes(patientRoutes, patientHandler)

	// Admin routes (Admin only)
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg), middleware.AdminOnly())
	adminRoutes.Get("/statistics", adminHandler.Statistics)
	adminRoutes.Post("/reconcile", adminHandler.Reconcile)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupDonationRoutes configures donation routes
func setupDonationRoutes(router fiber.Router, handler *handlers.DonationHandler, cfg *config.Config) {
	// Public: a case's donation feed (masked). Signed-in donors see their
	// own anonymous donations unmasked.
	router.Get("/case/:caseId", middleware.OptionalAuth(cfg), handler.ListByCase)

	// Protected
	router.Post("/", middleware.AuthMiddleware(cfg), handler.Record)
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.MyDonations)
}

// setupCaseRoutes configures treatment case routes
func setupCaseRoutes(router fiber.Router, handler *handlers.CaseHandler, cfg *config.Config) {
	// Public browsing, cacheable for a minute
	router.Get("/", middleware.PublicCache(time.Minute), handler.ListActive)

	// Protected
	router.Post("/", middleware.AuthMiddleware(cfg), handler.Create)

	// Admin lifecycle
	router.Get("/pending", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.ListPending)
	router.Put("/:id/verify", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Verify)
	router.Put("/:id/cancel", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Cancel)
	router.Put("/:id/complete", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Complete)

	// Keep after /pending so it doesn't shadow it
	router.Get("/:id", handler.GetByID)
}

// setupTransparencyRoutes configures transparency routes
func setupTransparencyRoutes(router fiber.Router, handler *handlers.TransparencyHandler, cfg *config.Config) {
	// Public dashboard
	router.Get("/case/:caseId", middleware.PublicCache(time.Minute), handler.Dashboard)
	router.Get("/case/:caseId/invoices", handler.ListInvoices)

	// Protected writes
	router.Post("/case/:caseId/invoices", middleware.AuthMiddleware(cfg), handler.AddInvoice)
	router.Post("/case/:caseId/feedback", middleware.AuthMiddleware(cfg), handler.AddFeedback)
	router.Post("/case/:caseId/updates", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.AddRecoveryUpdate)
}

// setupDonorRoutes configures donor directory routes
func setupDonorRoutes(router fiber.Router, handler *handlers.DonorHandler, cfg *config.Config) {
	// Own profile
	router.Put("/me", middleware.AuthMiddleware(cfg), handler.UpdateProfile)

	// Admin directory
	router.Get("/", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.List)
	router.Get("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.GetByID)
	router.Delete("/:id", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), handler.Deactivate)
}

// setupPatientRoutes configures patient directory routes (Admin only)
func setupPatientRoutes(router fiber.Router, handler *handlers.PatientHandler) {
	router.Post("/", handler.Register)
	router.Get("/", handler.List)
	router.Get("/:id", handler.GetByID)
}

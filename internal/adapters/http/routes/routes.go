package routes

import (
	"mfs-service/internal/adapters/http/handlers"
	"mfs-service/internal/adapters/http/middleware"
	"mfs-service/internal/adapters/persistence/repositories"
	"mfs-service/internal/config"
	"mfs-service/internal/core/services"
	"mfs-service/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, userRepo repositories.UserRepository, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) {
	// Initialize services
	authService := services.NewAuthService(userRepo, cfg, m, log)
	userService := services.NewUserService(userRepo, m, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(userRepo, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(authService, userService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus scrape endpoint
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
	)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1", middleware.NoCacheHeaders())
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, dashboardHandler,
		middleware.AuthMiddleware(authService, cfg.Cookie.Name), cfg)
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	dashboardHandler *handlers.DashboardHandler,
	requireSession fiber.Handler,
	cfg *config.Config,
) {
	// API Info
	router.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(router, authHandler, requireSession, cfg)

	// User management routes (Admin only)
	userRoutes := router.Group("/users")
	userRoutes.Use(requireSession)
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Dashboard routes (Admin only)
	dashboardRoutes := router.Group("/dashboard")
	dashboardRoutes.Use(requireSession)
	dashboardRoutes.Use(middleware.AdminOnly())
	dashboardRoutes.Get("/", dashboardHandler.GetAdminDashboard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, requireSession fiber.Handler, cfg *config.Config) {
	// 5 req/min/IP on credential endpoints
	limit := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.RateLimit.Enabled {
		limit = middleware.AuthRateLimiter()
	}

	// Public routes
	router.Post("/register", limit, handler.Register)
	router.Post("/login", limit, handler.Login)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", requireSession, handler.Me)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Patch("/:id", handler.ActivateUser)
}

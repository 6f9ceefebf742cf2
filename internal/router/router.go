package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edusphere-api/internal/config"
	"github.com/noah-isme/edusphere-api/internal/handler"
	"github.com/noah-isme/edusphere-api/internal/middleware"
	"github.com/noah-isme/edusphere-api/internal/models"
	"github.com/noah-isme/edusphere-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	AIGradingHandler  *handler.AIGradingHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
	AIEnabled         bool
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.AIEnabled))

	// seeding is guarded by its own token, not by JWT
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions", jwtMiddleware))
	}

	if deps.AIGradingHandler != nil {
		aiGroup := api.Group("/ai", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		deps.AIGradingHandler.Register(aiGroup)
	}
}

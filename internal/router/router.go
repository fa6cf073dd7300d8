package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackathon-go-api/internal/config"
	"github.com/noah-isme/hackathon-go-api/internal/handler"
	"github.com/noah-isme/hackathon-go-api/internal/middleware"
	"github.com/noah-isme/hackathon-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler          *handler.AuthHandler
	DashboardHandler     *handler.DashboardHandler
	TestHandler          *handler.TestHandler
	CertificateHandler   *handler.CertificateHandler
	EventsHandler        *handler.EventsHandler
	AdminHandler         *handler.AdminHandler
	QuestionHandler      *handler.QuestionHandler
	AdminActivityHandler *handler.AdminActivityHandler
	JWTMiddleware        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	if deps.CertificateHandler != nil {
		deps.CertificateHandler.RegisterPublic(api.Group("/verify"))
	}

	participant := []fiber.Handler{jwtMiddleware, middleware.RequireParticipant()}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api.Group("/dashboard", participant...))
	}

	if deps.TestHandler != nil {
		deps.TestHandler.Register(api.Group("/test", participant...))
	}

	if deps.CertificateHandler != nil {
		deps.CertificateHandler.Register(api.Group("/certificates", participant...))
	}

	if deps.EventsHandler != nil {
		deps.EventsHandler.Register(api.Group("/events", jwtMiddleware))
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole("admin"))
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(admin)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(admin.Group("/questions"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
}

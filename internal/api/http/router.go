package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-portal/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. One parametrized triad serves all
// principal scopes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login/:scope", cfg.Sessions.Login)
	authGroup.Get("/me/:scope", cfg.AuthMiddleware.Handle, cfg.Sessions.Me)
	authGroup.Post("/logout/:scope", cfg.Sessions.Logout)
}

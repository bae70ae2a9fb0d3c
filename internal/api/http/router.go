package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/api/http/handlers"
	"github.com/spec-kit/darshan-pass-service/internal/auth"
	"github.com/spec-kit/darshan-pass-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Verification   *handlers.VerificationHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/session", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Session)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", auth.RequireRole(domain.RoleTrustee), cfg.Requests.Submit)
	requests.Get("/", auth.RequireRole(domain.RoleTrustee), cfg.Requests.ListMine)
	requests.Get("/:id", auth.RequireAnyRole(), cfg.Requests.Get)
	requests.Delete("/:id", auth.RequireRole(domain.RoleTrustee), cfg.Requests.Remove)

	verifications := app.Group("/verifications", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleProTeam))
	verifications.Get("/:id", cfg.Verification.Resolve)
	verifications.Post("/:id/done", cfg.Verification.MarkDone)
}

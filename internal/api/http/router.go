package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Complaints     *handlers.ComplaintsHandler
	Report         *handlers.ReportHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Public routes come first: the operator group below installs its auth
	// middleware on the whole /api/complaints prefix.
	api := app.Group("/api")
	api.Get("/problem", cfg.Report.Report)
	api.Get("/complaints/report", cfg.Report.Report)
	api.Post("/complaints", cfg.Complaints.CreateComplaint)

	operators := api.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireOperator())
	operators.Get("/:id", cfg.Complaints.GetComplaint)
	operators.Get("/:id/history", cfg.Complaints.ListHistory)
	operators.Post("/:id/assign", cfg.Complaints.AssignComplaint)
	operators.Post("/:id/status", cfg.Complaints.TransitionComplaint)
	operators.Patch("/:id/priority", auth.RequireSupervisor(), cfg.Complaints.UpdatePriority)
}

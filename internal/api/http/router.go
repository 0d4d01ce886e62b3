package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vacation-manager/internal/api/http/handlers"
	"github.com/spec-kit/vacation-manager/internal/auth"
	"github.com/spec-kit/vacation-manager/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Approvals      *handlers.ApprovalsHandler
	Org            *handlers.OrgHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	requests := api.Group("/requests")
	requests.Get("", cfg.Requests.List)
	requests.Post("", cfg.Requests.Create)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Put("/:id", cfg.Requests.Edit)
	requests.Delete("/:id", cfg.Requests.Delete)
	requests.Get("/:id/attachment", cfg.Requests.DownloadSickNote)

	approvals := api.Group("/approvals", auth.RequireManager())
	approvals.Get("", cfg.Approvals.Queue)
	approvals.Post("/:id/approve", cfg.Approvals.Approve)

	api.Get("/teams", cfg.Org.ListTeams)
	api.Get("/teams/:id", cfg.Org.GetTeam)
	api.Get("/projects", cfg.Org.ListProjects)

	ceoOnly := auth.RequireRole(domain.RoleCEO)
	api.Post("/teams", ceoOnly, cfg.Org.CreateTeam)
	api.Put("/teams/:id", ceoOnly, cfg.Org.UpdateTeam)
	api.Delete("/teams/:id", ceoOnly, cfg.Org.DeleteTeam)
	api.Post("/projects", ceoOnly, cfg.Org.CreateProject)
	api.Put("/projects/:id", ceoOnly, cfg.Org.UpdateProject)
	api.Delete("/projects/:id", ceoOnly, cfg.Org.DeleteProject)
	api.Put("/users/:id/team", ceoOnly, cfg.Org.AssignTeam)
	api.Put("/users/:id/roles", ceoOnly, cfg.Org.AssignRoles)
}

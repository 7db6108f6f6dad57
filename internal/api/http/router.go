package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/social-services/internal/api/http/handlers"
	"github.com/spec-kit/social-services/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Steps          *handlers.StepsHandler
	Jobs           *handlers.JobsHandler
	CVs            *handlers.CVHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Object-level permissions are checked by the services;
// the route guards only reject callers that can never succeed.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register/standard", cfg.Accounts.RegisterStandard)
	authGroup.Post("/register/employer", cfg.Accounts.RegisterEmployer)
	authGroup.Post("/login", cfg.Accounts.Login)

	protected := cfg.AuthMiddleware.Handle
	optional := cfg.AuthMiddleware.Optional

	accounts := app.Group("/accounts", protected)
	accounts.Get("/", auth.Require(auth.ActionVerifyAccounts), cfg.Accounts.List)
	accounts.Get("/me", cfg.Accounts.Me)
	accounts.Post("/staff", auth.Require(auth.ActionVerifyAccounts), cfg.Accounts.CreateStaff)
	accounts.Post("/:id/verification", auth.Require(auth.ActionVerifyAccounts), cfg.Accounts.SetVerification)

	manageSteps := auth.Require(auth.ActionManageSteps)
	steps := app.Group("/steps")
	steps.Get("/", cfg.Steps.Tree)
	steps.Get("/step/:id", cfg.Steps.GetStep)
	steps.Post("/step", protected, manageSteps, cfg.Steps.CreateStep)
	steps.Put("/step/:id", protected, manageSteps, cfg.Steps.UpdateStep)
	steps.Delete("/step/:id", protected, manageSteps, cfg.Steps.DeleteStep)
	steps.Post("/step/:id/substeps", protected, manageSteps, cfg.Steps.CreateSubStep)
	steps.Post("/step/:id/switch", protected, manageSteps, cfg.Steps.SwitchPlaces)
	steps.Put("/substep/:id", protected, manageSteps, cfg.Steps.UpdateSubStep)
	steps.Delete("/substep/:id", protected, manageSteps, cfg.Steps.DeleteSubStep)
	steps.Post("/substep/:id/move", protected, manageSteps, cfg.Steps.MoveSubStep)

	jobs := app.Group("/job")
	jobs.Get("/offers", cfg.Jobs.ListPublic)
	jobs.Get("/offer/:id", optional, cfg.Jobs.GetOffer)
	jobs.Post("/offer-create", protected, auth.Require(auth.ActionCreateOffer), cfg.Jobs.CreateOffer)
	jobs.Put("/offer/:id", protected, cfg.Jobs.UpdateOffer)
	jobs.Delete("/offer/:id", protected, cfg.Jobs.RemoveOffer)
	jobs.Post("/offer/:id/apply", protected, auth.Require(auth.ActionApplyOffer), cfg.Jobs.Apply)
	jobs.Get("/offer/:id/applications", protected, cfg.Jobs.ListApplications)
	jobs.Get("/my-offers", protected, auth.Require(auth.ActionCreateOffer), cfg.Jobs.ListMine)
	jobs.Post("/admin/confirm/:id", protected, auth.Require(auth.ActionConfirmOffer), cfg.Jobs.ConfirmOffer)
	jobs.Get("/admin/offers", protected, auth.Require(auth.ActionModerateJobs), cfg.Jobs.ListForModeration)

	cvs := app.Group("/cv", protected)
	cvs.Post("/", auth.Require(auth.ActionManageCVs), cfg.CVs.Create)
	cvs.Get("/", auth.Require(auth.ActionManageCVs), cfg.CVs.List)
	cvs.Delete("/:id", auth.RequireVerified(), cfg.CVs.Delete)

	inbox := app.Group("/notifications", protected, auth.Require(auth.ActionReadInbox))
	inbox.Get("/", cfg.Notifications.List)
	inbox.Delete("/", cfg.Notifications.Clear)
}

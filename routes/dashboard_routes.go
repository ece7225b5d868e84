package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/waitlistpro/backend/handlers"
)

// DashboardRoutes registers the owner-facing endpoints behind the JWT guard.
func DashboardRoutes(app *fiber.App, waitlists *handlers.WaitlistHandler, dashboards *handlers.DashboardHandler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	wl := api.Group("/waitlists", protected)
	wl.Get("", waitlists.List)
	wl.Post("", waitlists.Create)
	wl.Patch("/:id", waitlists.UpdateSettings)

	dash := api.Group("/dashboard/:id", protected)
	dash.Get("", dashboards.Dashboard)
	dash.Post("/invite", dashboards.BatchInvite)
	dash.Get("/invite", dashboards.InviteStatus)
	dash.Post("/export", dashboards.Export)
}

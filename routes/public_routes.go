package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/waitlistpro/backend/handlers"
)

// PublicRoutes registers the unauthenticated widget endpoints: waitlist
// info, signup, verification and position lookup.
func PublicRoutes(app *fiber.App, waitlists *handlers.WaitlistHandler, signups *handlers.SignupHandler) {
	api := app.Group("/api/v1")

	public := api.Group("/waitlists/:slug")
	public.Get("", waitlists.GetPublic)
	public.Post("/signups", signups.Create)
	public.Post("/verify", signups.Verify)
	public.Post("/position", signups.Position)
}

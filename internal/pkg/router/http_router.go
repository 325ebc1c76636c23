package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/controllers"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/middleware"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/oauth"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// OAuth runs outside /api because the provider redirects land here.
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Post("/auth/logout", middleware.RequireAuth, controllers.HandleOAuthLogout)

	// Account activation link from the signup mail.
	app.Get("/activate", controllers.HandleActivate)

	// Payment provider webhooks. Signature verification happens in the
	// handler, no session or auth middleware applies.
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

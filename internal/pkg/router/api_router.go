package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/app/controllers"
	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	// API keys take precedence over the session for programmatic clients.
	api.Use(middleware.APIKeyAuthMiddleware())

	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Parlay Golf Ventures API",
		})
	})

	v1 := api.Group("/v1")

	// Auth
	v1.Post("/auth/register", controllers.HandleRegister)
	v1.Post("/auth/login", controllers.HandleLogin)
	v1.Post("/auth/logout", middleware.RequireAPISessionAuth, controllers.HandleLogout)

	// Account
	account := v1.Group("/account", middleware.RequireAPISessionAuth)
	account.Get("/", controllers.HandleGetAccount)
	account.Put("/", controllers.HandleUpdateProfile)
	account.Delete("/", controllers.HandleDeleteAccount)
	account.Post("/api-key", controllers.HandleGenerateAPIKey)
	account.Delete("/api-key", controllers.HandleRevokeAPIKey)
	account.Get("/contributions", controllers.HandleMyContributions)

	// Billing; handlers return 401 themselves so API key auth also works.
	v1.Get("/billing/subscription", controllers.HandleGetSubscription)
	v1.Get("/billing/invoices", controllers.HandleListInvoices)

	// Academy catalog is public, lesson progress needs a member.
	v1.Get("/academy/courses", controllers.HandleListCourses)
	v1.Get("/academy/courses/search", controllers.HandleSearchCourses)
	v1.Get("/academy/courses/:slug", controllers.HandleGetCourse)
	v1.Get("/academy/courses/id/:id/progress", middleware.RequireAPISessionAuth, controllers.HandleCourseProgress)
	v1.Post("/academy/lessons/:id/start", middleware.RequireAPISessionAuth, controllers.HandleStartLesson)
	v1.Post("/academy/lessons/:id/complete", middleware.RequireAPISessionAuth, controllers.HandleCompleteLesson)

	// Community contributions
	v1.Get("/contributions", controllers.HandleListApprovedContributions)
	v1.Get("/contributions/:uuid", controllers.HandleGetContribution)
	v1.Post("/contributions", middleware.RequireAPISessionAuth, controllers.HandleSubmitContribution)

	// Admin
	admin := v1.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/dashboard", controllers.HandleAdminDashboard)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/users/search", controllers.HandleAdminSearchUsers)
	admin.Put("/users/:id", controllers.HandleAdminUpdateUser)
	admin.Get("/contributions/pending", controllers.HandlePendingContributions)
	admin.Post("/contributions/:uuid/approve", controllers.HandleApproveContribution)
	admin.Post("/contributions/:uuid/reject", controllers.HandleRejectContribution)
	admin.Post("/metrics/flush", controllers.HandleAdminFlushCounters)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

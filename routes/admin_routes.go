package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saurabh-chakrabarthi/hermes/handlers"
	"github.com/saurabh-chakrabarthi/hermes/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/auth/login", handlers.Login)

	audit := api.Group("/audit", middleware.Protected(), middleware.AdminRequired())
	audit.Get("", handlers.ListAuditLogs)
}

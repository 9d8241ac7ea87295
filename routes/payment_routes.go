package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/saurabh-chakrabarthi/hermes/handlers"
	wshub "github.com/saurabh-chakrabarthi/hermes/websocket"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments", handlers.CreatePayment)
	api.Get("/payments", handlers.ListPayments)
	api.Get("/payments/:paymentId/receipt", handlers.GetPaymentReceipt)

	api.Get("/payments/feed", websocket.New(wshub.FeedHandler))

	// Legacy aliases for dashboard clients still polling the old paths.
	app.Post("/api/bookings", handlers.CreatePayment)
	app.Get("/api/bookings", handlers.ListPayments)
}

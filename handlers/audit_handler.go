package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/saurabh-chakrabarthi/hermes/store"
)

func ListAuditLogs(c *fiber.Ctx) error {
	entries, err := paymentService.ListAuditLogs(c.Context())
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Payment store unavailable"})
		}
		log.Printf("🔥 Failed to list audit logs: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch audit logs"})
	}
	return c.JSON(entries)
}

package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const probeTimeout = 5 * time.Second

// HealthCheck probes the store and cache independently; a single degraded
// dependency turns the overall status to degraded with a 503 so load
// balancers stop routing, while the body still names the healthy parts.
func HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), probeTimeout)
	defer cancel()

	overall := "ok"

	storeStatus := "connected"
	if err := paymentStore.Ping(ctx); err != nil {
		storeStatus = "error: " + err.Error()
		overall = "degraded"
	}

	cacheStatus := "connected"
	if err := listCache.Ping(ctx); err != nil {
		cacheStatus = "error: " + err.Error()
		overall = "degraded"
	}

	statusCode := fiber.StatusOK
	if overall != "ok" {
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": fiber.Map{
			"store": fiber.Map{"status": storeStatus},
			"cache": fiber.Map{"status": cacheStatus},
		},
	})
}

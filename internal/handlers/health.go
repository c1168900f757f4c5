// Package handlers contains the HTTP route handler functions for the golf trips API.
// Each handler corresponds to one API endpoint and is responsible for reading the
// request, calling the repository or scorecard service, and writing a response.
//
// Every exported function follows the "handler factory" pattern: it takes its
// dependencies and returns a fiber.Handler, so nothing is kept in globals.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck handles GET /health.
// It returns a simple JSON response indicating the server is alive and reachable.
// No database queries, no authentication: it's for liveness probes and load balancers.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Pinger is anything that can check its backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyCheck handles GET /ready. Unlike /health it checks the database, so
// readiness probes hold traffic back until Postgres answers.
func ReadyCheck(db Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unavailable",
				"database": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "ok"})
	}
}

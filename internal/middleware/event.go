package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
)

// EventFinder looks events up by their public slug.
type EventFinder interface {
	EventBySlug(ctx context.Context, slug string) (models.Event, error)
}

// LoadEvent resolves the :slug route parameter into the Session's Event.
// An unknown slug stops the request with a 404.
func LoadEvent(events EventFinder, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := events.EventBySlug(c.UserContext(), c.Params("slug"))
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "event not found",
			})
		}
		if err != nil {
			log.ErrorContext(c.UserContext(), "load event failed", "slug", c.Params("slug"), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load event",
			})
		}
		SessionFrom(c).Event = &event
		return c.Next()
	}
}

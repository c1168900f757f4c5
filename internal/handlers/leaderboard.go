package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/golf-trips/internal/export"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/scorecard"
	"github.com/trentd187/golf-trips/internal/scoring"
)

// Leaderboard returns a handler for GET /api/v1/events/:slug/leaderboard.
// Public; must run after middleware.LoadEvent.
func Leaderboard(svc *scorecard.Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event

		lb, err := svc.Leaderboard(c.UserContext(), event.ID)
		if err != nil {
			log.ErrorContext(c.UserContext(), "load leaderboard failed", "event_id", event.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
			})
		}
		return c.JSON(lb)
	}
}

// LeaderboardXLSX returns a handler for GET /api/v1/events/:slug/leaderboard.xlsx.
func LeaderboardXLSX(svc *scorecard.Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event

		lb, err := svc.Leaderboard(c.UserContext(), event.ID)
		if err != nil {
			log.ErrorContext(c.UserContext(), "load leaderboard failed", "event_id", event.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load leaderboard",
			})
		}

		boards := make([]scoring.RoundBoard, len(lb.Rounds))
		for i, r := range lb.Rounds {
			boards[i] = r.RoundBoard
		}
		wb, err := export.LeaderboardWorkbook(event.Name, boards)
		if err != nil {
			log.ErrorContext(c.UserContext(), "build leaderboard workbook failed", "event_id", event.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to export leaderboard",
			})
		}
		defer wb.Close()

		buf, err := wb.WriteToBuffer()
		if err != nil {
			log.ErrorContext(c.UserContext(), "write leaderboard workbook failed", "event_id", event.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to export leaderboard",
			})
		}

		c.Set(fiber.HeaderContentType, export.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", event.Slug+"-leaderboard.xlsx"))
		return c.Send(buf.Bytes())
	}
}

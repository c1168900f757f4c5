package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/repository"
)

// SetWinnerRequest is the JSON body of PUT .../contests/:contestId.
// A null winner_player_id clears the result.
type SetWinnerRequest struct {
	WinnerPlayerID *uuid.UUID `json:"winner_player_id"`
}

// ContestResponse is a skills contest after an update.
type ContestResponse struct {
	ID             string     `json:"id"`
	RoundID        string     `json:"round_id"`
	Hole           int        `json:"hole"`
	Type           string     `json:"type"`
	WinnerPlayerID *uuid.UUID `json:"winner_player_id"`
}

// SetContestWinner returns a handler for PUT /api/v1/events/:slug/contests/:contestId.
// Owner only.
func SetContestWinner(repo *repository.Repository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event

		contestID, err := uuid.Parse(c.Params("contestId"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid contest id"})
		}
		var req SetWinnerRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		contest, err := repo.SetContestWinner(c.UserContext(), event.ID, contestID, req.WinnerPlayerID)
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "contest or player not found in this event",
			})
		}
		if err != nil {
			log.ErrorContext(c.UserContext(), "set contest winner failed", "contest_id", contestID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update contest",
			})
		}

		return c.JSON(ContestResponse{
			ID:             contest.ID.String(),
			RoundID:        contest.RoundID.String(),
			Hole:           contest.HoleNumber,
			Type:           string(contest.ContestType),
			WinnerPlayerID: contest.WinnerPlayerID,
		})
	}
}

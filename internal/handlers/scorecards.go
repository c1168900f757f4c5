package handlers

// scorecards.go serves the clubhouse scorecard editor:
//
//	GET   .../clubhouse/scorecard/:roundId  current matrix
//	PUT   .../clubhouse/scorecard/:roundId  save an edited matrix
//	PATCH .../clubhouse/scorecard/:roundId  apply typed ops to the latest state
//
// All three need middleware.RequireScorer.

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scorecard"
	"github.com/trentd187/golf-trips/internal/scoring"
)

// SaveResponse is returned by PUT and PATCH: what was written plus the
// reloaded scorecard to continue editing from.
type SaveResponse struct {
	Saved     scorecard.SaveResult `json:"saved"`
	Scorecard scoring.Matrix       `json:"scorecard"`
}

// PatchRequest is the JSON body of PATCH .../scorecard/:roundId.
type PatchRequest struct {
	Ops []scoring.Op `json:"ops"`
}

func roundParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("roundId"))
}

// GetScorecard returns the current matrix of a round.
func GetScorecard(svc *scorecard.Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event
		roundID, err := roundParam(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid round id"})
		}

		m, err := svc.Load(c.UserContext(), event.ID, roundID)
		if err != nil {
			return scorecardError(c, log, err, event.ID, roundID)
		}
		return c.JSON(m)
	}
}

// PutScorecard saves an edited matrix as previously returned by GetScorecard.
func PutScorecard(svc *scorecard.Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event
		roundID, err := roundParam(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid round id"})
		}

		var m scoring.Matrix
		if err := c.BodyParser(&m); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		res, err := svc.Save(c.UserContext(), event.ID, roundID, m)
		if err != nil {
			return scorecardError(c, log, err, event.ID, roundID)
		}

		fresh, err := svc.Load(c.UserContext(), event.ID, roundID)
		if err != nil {
			return scorecardError(c, log, err, event.ID, roundID)
		}
		return c.JSON(SaveResponse{Saved: res, Scorecard: fresh})
	}
}

// PatchScorecard applies typed ops on top of the latest persisted scores.
func PatchScorecard(svc *scorecard.Service, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event
		roundID, err := roundParam(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid round id"})
		}

		var req PatchRequest
		if err := c.BodyParser(&req); err != nil || len(req.Ops) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ops are required"})
		}

		m, res, err := svc.Patch(c.UserContext(), event.ID, roundID, req.Ops)
		if err != nil {
			return scorecardError(c, log, err, event.ID, roundID)
		}
		return c.JSON(SaveResponse{Saved: res, Scorecard: m})
	}
}

// scorecardError maps service errors onto responses.
func scorecardError(c *fiber.Ctx, log *slog.Logger, err error, eventID, roundID uuid.UUID) error {
	var conflict *scorecard.ConflictError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "round not found"})
	case errors.As(err, &conflict):
		conflicts := conflict.Conflicts
		if conflicts == nil {
			conflicts = []scoring.Conflict{}
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     "someone else edited this scorecard, reload and try again",
			"conflicts": conflicts,
		})
	case scorecard.IsInvalid(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, scorecard.ErrSaveFailed):
		log.ErrorContext(c.UserContext(), "scorecard save failed", "event_id", eventID, "round_id", roundID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save scores"})
	default:
		log.ErrorContext(c.UserContext(), "scorecard load failed", "event_id", eventID, "round_id", roundID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load scorecard"})
	}
}

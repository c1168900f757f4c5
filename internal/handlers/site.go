package handlers

// site.go serves the public event microsite in one round trip:
// GET /api/v1/events/:slug returns the event plus every section the site shows.

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"golang.org/x/sync/errgroup"
)

// RoundResponse is one scheduled round on the public site.
type RoundResponse struct {
	ID          string             `json:"id"`
	CourseName  string             `json:"course_name"`
	RoundDate   *string            `json:"round_date"`
	TeeTime     *string            `json:"tee_time"`
	ScoringType models.ScoringType `json:"scoring_type"`
	Holes       int                `json:"holes"`
}

// PlayerResponse is a roster entry. Email stays private.
type PlayerResponse struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Handicap *float64            `json:"handicap"`
	Bio      *string             `json:"bio"`
	ImageURL *string             `json:"image_url"`
	Status   models.PlayerStatus `json:"status"`
}

// CourseResponse is a course played on the trip.
type CourseResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location *string `json:"location"`
	Par      *int    `json:"par"`
	Website  *string `json:"website"`
}

// PrizeResponse is a prize on offer.
type PrizeResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Amount      *string `json:"amount"`
}

// TravelResponse is lodging and logistics information.
type TravelResponse struct {
	ID       string  `json:"id"`
	Lodging  *string `json:"lodging"`
	Address  *string `json:"address"`
	CheckIn  *string `json:"check_in"`
	CheckOut *string `json:"check_out"`
	Notes    *string `json:"notes"`
}

// SiteResponse is the whole public bundle.
type SiteResponse struct {
	Event   EventResponse    `json:"event"`
	Rounds  []RoundResponse  `json:"rounds"`
	Players []PlayerResponse `json:"players"`
	Courses []CourseResponse `json:"courses"`
	Prizes  []PrizeResponse  `json:"prizes"`
	Travel  []TravelResponse `json:"travel"`
}

// section loads one list of the site bundle. A failure is logged and the
// section is served empty; the page still renders.
func section[M, R any](ctx context.Context, log *slog.Logger, eventID uuid.UUID, name string,
	load func(context.Context, uuid.UUID) ([]M, error), conv func(M) R) []R {
	rows, err := load(ctx, eventID)
	if err != nil {
		log.WarnContext(ctx, "site section failed to load", "section", name, "event_id", eventID, "error", err)
		return []R{}
	}
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		out = append(out, conv(row))
	}
	return out
}

// PublicEvent returns a handler for GET /api/v1/events/:slug.
// Must run after middleware.LoadEvent. The sections are loaded concurrently
// and the response is sent once every one of them has resolved.
func PublicEvent(repo *repository.Repository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event
		ctx := c.UserContext()

		resp := SiteResponse{Event: newEventResponse(*event)}

		// A plain Group: one section failing must not cancel the others.
		var g errgroup.Group
		g.Go(func() error {
			resp.Rounds = section(ctx, log, event.ID, "rounds", repo.Rounds, newRoundResponse)
			return nil
		})
		g.Go(func() error {
			resp.Players = section(ctx, log, event.ID, "players", repo.ActivePlayers, newPlayerResponse)
			return nil
		})
		g.Go(func() error {
			resp.Courses = section(ctx, log, event.ID, "courses", repo.Courses, newCourseResponse)
			return nil
		})
		g.Go(func() error {
			resp.Prizes = section(ctx, log, event.ID, "prizes", repo.Prizes, newPrizeResponse)
			return nil
		})
		g.Go(func() error {
			resp.Travel = section(ctx, log, event.ID, "travel", repo.Travel, newTravelResponse)
			return nil
		})
		_ = g.Wait()

		return c.JSON(resp)
	}
}

func newRoundResponse(r models.EventRound) RoundResponse {
	return RoundResponse{
		ID:          r.ID.String(),
		CourseName:  r.CourseName,
		RoundDate:   formatOptionalDate(r.RoundDate),
		TeeTime:     r.TeeTime,
		ScoringType: r.ScoringType,
		Holes:       r.Holes,
	}
}

func newPlayerResponse(p models.EventPlayer) PlayerResponse {
	return PlayerResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		Handicap: p.Handicap,
		Bio:      p.Bio,
		ImageURL: p.ImageURL,
		Status:   p.Status,
	}
}

func newCourseResponse(c models.EventCourse) CourseResponse {
	return CourseResponse{ID: c.ID.String(), Name: c.Name, Location: c.Location, Par: c.Par, Website: c.Website}
}

func newPrizeResponse(p models.EventPrize) PrizeResponse {
	return PrizeResponse{ID: p.ID.String(), Title: p.Title, Description: p.Description, Amount: p.Amount}
}

func newTravelResponse(t models.EventTravel) TravelResponse {
	return TravelResponse{
		ID:       t.ID.String(),
		Lodging:  t.Lodging,
		Address:  t.Address,
		CheckIn:  formatOptionalDate(t.CheckIn),
		CheckOut: formatOptionalDate(t.CheckOut),
		Notes:    t.Notes,
	}
}

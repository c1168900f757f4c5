package handlers

// events.go handles the owner-facing /api/v1/events routes: listing the
// caller's trips and creating a new one.
//
// --- Permission model ---
//   - "admin" users see and manage every event.
//   - Everyone else sees and manages only the events they own (events.owner_id).
//
// Per-event checks live in middleware.RequireOwner; these two routes only need
// a signed-in user.

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// EventResponse is what we send back for an event.
// We use a dedicated response struct (instead of the raw GORM model) so we control
// exactly which fields are serialised; the clubhouse password hash never leaves.
type EventResponse struct {
	ID           string  `json:"id"`
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	StartDate    *string `json:"start_date"` // "YYYY-MM-DD" or null
	EndDate      *string `json:"end_date"`
	HasClubhouse bool    `json:"has_clubhouse"` // a clubhouse password is set
	CreatedAt    string  `json:"created_at"`    // RFC 3339
}

// CreateEventRequest is the JSON body we expect on POST /api/v1/events.
type CreateEventRequest struct {
	Slug              string  `json:"slug"` // Required: lowercase letters, digits and hyphens
	Name              string  `json:"name"` // Required
	Description       *string `json:"description"`
	Location          *string `json:"location"`
	StartDate         *string `json:"start_date"` // Optional: "YYYY-MM-DD"
	EndDate           *string `json:"end_date"`
	ClubhousePassword *string `json:"clubhouse_password"` // Optional: opens the clubhouse
}

// minClubhousePassword is the shortest clubhouse password accepted.
const minClubhousePassword = 4

func newEventResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:           e.ID.String(),
		Slug:         e.Slug,
		Name:         e.Name,
		Description:  e.Description,
		Location:     e.Location,
		StartDate:    formatOptionalDate(e.StartDate),
		EndDate:      formatOptionalDate(e.EndDate),
		HasClubhouse: e.ClubhousePasswordHash != nil,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// formatOptionalDate converts a *time.Time to a *string in "2006-01-02" format.
// Returns nil if the input is nil (preserving the nullable property in the JSON response).
func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format("2006-01-02")
	return &s
}

// parseOptionalDate parses an optional date string ("YYYY-MM-DD") into a *time.Time.
// Returns nil if the input string pointer is nil or empty.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validSlug accepts 3 to 64 characters of [a-z0-9-], not starting or ending
// with a hyphen.
func validSlug(s string) bool {
	if len(s) < 3 || len(s) > 64 || strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// ListEvents returns a handler for GET /api/v1/events.
func ListEvents(repo *repository.Repository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFrom(c)

		events, err := repo.Events(c.UserContext(), sess.User.ID, sess.IsAdmin())
		if err != nil {
			log.ErrorContext(c.UserContext(), "list events failed", "user_id", sess.User.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch events",
			})
		}

		response := make([]EventResponse, 0, len(events))
		for _, e := range events {
			response = append(response, newEventResponse(e))
		}
		return c.JSON(response)
	}
}

// CreateEvent returns a handler for POST /api/v1/events.
// The caller becomes the event's owner.
func CreateEvent(repo *repository.Repository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFrom(c)

		var req CreateEventRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name is required",
			})
		}
		if !validSlug(req.Slug) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "slug must be 3-64 lowercase letters, digits or hyphens",
			})
		}

		startDate, err := parseOptionalDate(req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_date must be in YYYY-MM-DD format",
			})
		}
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "end_date must be in YYYY-MM-DD format",
			})
		}
		if startDate != nil && endDate != nil && endDate.Before(*startDate) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "end_date must not be before start_date",
			})
		}

		event := models.Event{
			Slug:        req.Slug,
			Name:        req.Name,
			Description: req.Description,
			Location:    req.Location,
			StartDate:   startDate,
			EndDate:     endDate,
			OwnerID:     sess.User.ID,
		}

		if req.ClubhousePassword != nil && *req.ClubhousePassword != "" {
			if len(*req.ClubhousePassword) < minClubhousePassword {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "clubhouse_password must be at least 4 characters",
				})
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.ClubhousePassword), bcrypt.DefaultCost)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "clubhouse_password is not usable",
				})
			}
			h := string(hash)
			event.ClubhousePasswordHash = &h
		}

		if err := repo.CreateEvent(c.UserContext(), &event); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "slug is already taken",
				})
			}
			log.ErrorContext(c.UserContext(), "create event failed", "slug", req.Slug, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create event",
			})
		}

		return c.Status(fiber.StatusCreated).JSON(newEventResponse(event))
	}
}

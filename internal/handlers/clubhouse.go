package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/trentd187/golf-trips/internal/middleware"
	"golang.org/x/crypto/bcrypt"
)

// ClubhouseLoginRequest is the JSON body of POST .../clubhouse/session.
type ClubhouseLoginRequest struct {
	Password string `json:"password"`
}

// ClubhouseSessionResponse carries the token to send back in the
// X-Clubhouse-Token header.
type ClubhouseSessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"` // RFC 3339
	EventID   string `json:"event_id"`
}

// LoginObserver is told the result of each login attempt ("ok" or "denied").
type LoginObserver func(result string)

// ClubhouseLogin returns a handler for POST /api/v1/events/:slug/clubhouse/session.
// Must run after middleware.LoadEvent; the route is rate limited per IP.
func ClubhouseLogin(tokens *middleware.ClubhouseTokens, observe LoginObserver, log *slog.Logger) fiber.Handler {
	if observe == nil {
		observe = func(string) {}
	}
	return func(c *fiber.Ctx) error {
		event := middleware.SessionFrom(c).Event

		var req ClubhouseLoginRequest
		if err := c.BodyParser(&req); err != nil || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "password is required",
			})
		}

		if event.ClubhousePasswordHash == nil {
			observe("denied")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "the clubhouse is not open for this event",
			})
		}
		if bcrypt.CompareHashAndPassword([]byte(*event.ClubhousePasswordHash), []byte(req.Password)) != nil {
			observe("denied")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "incorrect password",
			})
		}

		token, expires, err := tokens.Issue(event.ID)
		if err != nil {
			log.ErrorContext(c.UserContext(), "issue clubhouse token failed", "event_id", event.ID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to open clubhouse session",
			})
		}
		observe("ok")

		return c.Status(fiber.StatusCreated).JSON(ClubhouseSessionResponse{
			Token:     token,
			ExpiresAt: expires.UTC().Format(time.RFC3339),
			EventID:   event.ID.String(),
		})
	}
}

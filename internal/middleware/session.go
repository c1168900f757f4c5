// Package middleware contains HTTP middleware functions for the golf trips API.
// Middleware sits between the HTTP server and route handlers; it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication, event lookup and rate limiting.
//
// Everything a handler needs to know about who is calling is collected into
// one Session value. Handlers read it with SessionFrom and never look at
// headers or c.Locals themselves.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/models"
)

// sessionKey is the c.Locals key the Session lives under.
const sessionKey = "golfTripsSession"

// Session describes the caller of the current request.
type Session struct {
	// User is the signed-in owner or admin; nil for anonymous and
	// clubhouse-only callers.
	User *models.User
	// ClubhouseEventID is the event a valid clubhouse token was issued for.
	ClubhouseEventID *uuid.UUID
	// Event is the event named by the :slug route parameter, set by LoadEvent.
	Event *models.Event
}

// SessionFrom returns the request's Session, creating an empty one on first use.
func SessionFrom(c *fiber.Ctx) *Session {
	if s, ok := c.Locals(sessionKey).(*Session); ok {
		return s
	}
	s := &Session{}
	c.Locals(sessionKey, s)
	return s
}

// Authenticated reports whether the caller presented any valid credential.
func (s *Session) Authenticated() bool {
	return s.User != nil || s.ClubhouseEventID != nil
}

// IsAdmin reports whether the caller is a platform admin.
func (s *Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == models.UserRoleAdmin
}

// Owns reports whether the caller may manage the event: its owner or an admin.
func (s *Session) Owns(event models.Event) bool {
	if s.User == nil {
		return false
	}
	return s.IsAdmin() || s.User.ID == event.OwnerID
}

// CanScore reports whether the caller may read and write the event's
// scorecards: an owner, or a clubhouse session for that very event.
func (s *Session) CanScore(event models.Event) bool {
	if s.Owns(event) {
		return true
	}
	return s.ClubhouseEventID != nil && *s.ClubhouseEventID == event.ID
}

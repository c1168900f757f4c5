package middleware

// roles.go: access control on event routes.
// Owners (and admins) manage an event; clubhouse sessions may only score it.
// Both checks must run after LoadEvent and after Require or Resolve, because
// those are what fill in the Session.

import "github.com/gofiber/fiber/v2"

// RequireOwner allows the event's owner and admins.
//
//	events.Put("/:slug/contests/:contestId", auth.Require(), middleware.LoadEvent(repo, log), middleware.RequireOwner(), ...)
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess.User == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		if sess.Event == nil || !sess.Owns(*sess.Event) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient permissions",
			})
		}
		return c.Next()
	}
}

// RequireScorer allows owners plus clubhouse sessions opened for this event.
// A clubhouse token for a different event is forbidden, not unauthenticated.
func RequireScorer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if !sess.Authenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "clubhouse login required",
			})
		}
		if sess.Event == nil || !sess.CanScore(*sess.Event) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient permissions",
			})
		}
		return c.Next()
	}
}

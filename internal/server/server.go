// Package server assembles the Fiber app: global middleware and every route.
// cmd/server builds the dependencies and calls New; handler tests call New
// with an in-memory database.
package server

import (
	"errors"
	"log/slog"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// cors lets the browser app talk to the API from a different origin
	"github.com/gofiber/fiber/v2/middleware/cors"
	// logger prints request details (method, path, status, duration)
	"github.com/gofiber/fiber/v2/middleware/logger"
	// recover turns a panicking handler into a 500 instead of a crashed process
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/trentd187/golf-trips/internal/config"
	"github.com/trentd187/golf-trips/internal/handlers"
	"github.com/trentd187/golf-trips/internal/metrics"
	"github.com/trentd187/golf-trips/internal/middleware"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scorecard"
)

// Deps is everything the routes need.
type Deps struct {
	Config  *config.Config
	Repo    *repository.Repository
	Metrics *metrics.Metrics
	Log     *slog.Logger
	// AccessLog disables Fiber's request logger when false (tests).
	AccessLog bool
}

// New builds the app. The scorecard service and authenticator are created
// here so every route shares one instance.
func New(d Deps) *fiber.App {
	svc := scorecard.New(d.Repo, scorecard.WithRecorder(d.Metrics), scorecard.WithLogger(d.Log))
	auth := middleware.NewAuthenticator(d.Config, d.Repo, d.Log)
	limiter := middleware.NewIPRateLimiter(d.Config.ClubhouseLoginPerMinute, d.Config.ClubhouseLoginBurst)

	app := fiber.New(fiber.Config{
		AppName:      "Golf Trips API",
		ErrorHandler: errorHandler(d.Log),
	})

	// --- Global middleware ---
	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.ClubhouseHeader,
	}))
	app.Use(d.Metrics.Middleware())

	// --- Public routes (no auth required) ---
	app.Get("/health", handlers.HealthCheck)
	app.Get("/ready", handlers.ReadyCheck(d.Repo))
	app.Get("/metrics", d.Metrics.Handler())

	api := app.Group("/api/v1")
	loadEvent := middleware.LoadEvent(d.Repo, d.Log)

	// Owner routes
	// GET  /api/v1/events  list the caller's events (admins see all)
	// POST /api/v1/events  create an event owned by the caller
	api.Get("/events", auth.Require(), handlers.ListEvents(d.Repo, d.Log))
	api.Post("/events", auth.Require(), handlers.CreateEvent(d.Repo, d.Log))

	// Public site
	event := api.Group("/events/:slug")
	event.Get("/", loadEvent, handlers.PublicEvent(d.Repo, d.Log))
	event.Get("/leaderboard", loadEvent, handlers.Leaderboard(svc, d.Log))
	event.Get("/leaderboard.xlsx", loadEvent, handlers.LeaderboardXLSX(svc, d.Log))

	// Clubhouse: the password login is public but rate limited per IP;
	// the scorecard editor takes a clubhouse token or an owner token.
	event.Post("/clubhouse/session",
		middleware.RateLimit(limiter, func() { d.Metrics.ObserveLogin("limited") }),
		loadEvent,
		handlers.ClubhouseLogin(auth.Clubhouse(), d.Metrics.ObserveLogin, d.Log),
	)
	scorer := []fiber.Handler{auth.Resolve(), loadEvent, middleware.RequireScorer()}
	event.Get("/clubhouse/scorecard/:roundId", append(scorer, handlers.GetScorecard(svc, d.Log))...)
	event.Put("/clubhouse/scorecard/:roundId", append(scorer, handlers.PutScorecard(svc, d.Log))...)
	event.Patch("/clubhouse/scorecard/:roundId", append(scorer, handlers.PatchScorecard(svc, d.Log))...)

	// Owner management of an event
	event.Put("/contests/:contestId", auth.Require(), loadEvent, middleware.RequireOwner(),
		handlers.SetContestWinner(d.Repo, d.Log))

	return app
}

// errorHandler keeps the {"error": "..."} body shape for errors that escape
// handlers (unknown routes, panics caught by recover, bad methods).
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			log.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

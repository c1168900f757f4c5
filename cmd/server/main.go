// cmd/server/main.go
// This is the entry point for the Golf Trips API.
// In Go, the "main" package and its "main()" function is where the program starts executing.
// The "cmd/server" directory follows a common Go convention: the cmd/ folder holds executable
// binaries, and internal/ holds reusable packages that are not meant to be imported by other projects.
//
// The binary has three subcommands:
//
//	golf-trips serve                  run the HTTP API (the default)
//	golf-trips migrate up|down|version manage the database schema
//	golf-trips import --file trip.yaml create a whole trip from a YAML file
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	// urfave/cli parses subcommands and flags and prints --help text
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	// Internal packages: our own code, imported by module path
	"github.com/trentd187/golf-trips/internal/config"
	"github.com/trentd187/golf-trips/internal/database"
	"github.com/trentd187/golf-trips/internal/importer"
	"github.com/trentd187/golf-trips/internal/logging"
	"github.com/trentd187/golf-trips/internal/metrics"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/server"
)

// shutdownTimeout bounds how long in-flight requests get to finish on SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "golf-trips",
		Usage: "golf trip microsites with a shared clubhouse scorecard",
		// Running the binary with no subcommand starts the server, which is what
		// the container entrypoint does.
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage the database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply pending migrations", Action: migrateUp},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "how many migrations to revert"},
						},
						Action: migrateDown,
					},
					{Name: "version", Usage: "print the current schema version", Action: migrateVersion},
				},
			},
			{
				Name:  "import",
				Usage: "create an event, its courses, rounds and roster from a YAML trip file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "path to the trip file"},
				},
				Action: importTrip,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command uses.
func setup() (*config.Config, *slog.Logger, error) {
	// Load configuration from environment variables (and optionally a .env file).
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	// Run any pending SQL migration files (in the migrations/ directory).
	// Migrations are SQL scripts that create or alter tables. Running them on startup
	// ensures the database schema is always in sync when the server starts.
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return err
	}

	// Connect to the PostgreSQL database.
	// The returned *gorm.DB is shared by every request through the repository.
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer closeDB(db, log)

	app := server.New(server.Deps{
		Config:    cfg,
		Repo:      repository.New(db),
		Metrics:   metrics.New(),
		Log:       log,
		AccessLog: true,
	})

	// Stop accepting connections on Ctrl-C or SIGTERM (what ECS sends on deploy)
	// and let in-flight requests finish.
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		// ":" + cfg.Port produces a string like ":8080", listening on all network interfaces.
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func migrateUp(*cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func migrateDown(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	steps := c.Int("steps")
	if err := database.RollbackMigrations(cfg.DatabaseURL, cfg.MigrationsPath, steps); err != nil {
		return err
	}
	log.Info("migrations rolled back", "steps", steps)
	return nil
}

func migrateVersion(c *cli.Context) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(c.App.Writer, "%d (dirty)\n", version)
		return nil
	}
	fmt.Fprintln(c.App.Writer, version)
	return nil
}

func importTrip(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	trip, err := importer.Parse(f)
	if err != nil {
		return err
	}
	// Validate before touching the database so a bad file fails fast.
	if err := trip.Validate(); err != nil {
		return fmt.Errorf("invalid trip file:\n%w", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer closeDB(db, log)

	event, err := importer.New(db, log).Import(c.Context, trip)
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("an event with slug %q already exists", trip.Event.Slug)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %s (%s)\n", event.Slug, event.ID)
	return nil
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database", "error", err)
	}
}

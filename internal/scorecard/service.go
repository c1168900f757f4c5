// Package scorecard runs the read-modify-save cycle for round scorecards.
//
// It loads persisted rows through a Store, projects them into a
// scoring.Matrix, and writes an edited matrix back as the minimal set of
// inserts and version-guarded updates. The scoring package does the math;
// this package does the I/O around it.
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// ErrSaveFailed wraps any write failure that is not a conflict. Nothing about
// which rows landed is reported; callers should reload.
var ErrSaveFailed = errors.New("failed to save scorecard")

// ConflictError is returned when another session changed rows this matrix
// was about to overwrite. Conflicts is empty when the clash was only detected
// by the database (a lost version guard or a duplicate insert).
type ConflictError struct {
	Conflicts []scoring.Conflict
	Err       error
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return "scorecard was edited by someone else"
	}
	return fmt.Sprintf("scorecard was edited by someone else (%d holes)", len(e.Conflicts))
}

func (e *ConflictError) Unwrap() error { return e.Err }

// Store is the slice of the repository the service reads and writes through.
type Store interface {
	Round(ctx context.Context, eventID, roundID uuid.UUID) (models.EventRound, error)
	Rounds(ctx context.Context, eventID uuid.UUID) ([]models.EventRound, error)
	CourseHoles(ctx context.Context, courseName string) ([]models.CourseHole, error)
	ActivePlayers(ctx context.Context, eventID uuid.UUID) ([]models.EventPlayer, error)
	RoundEntries(ctx context.Context, eventID, roundID uuid.UUID) ([]models.Scorecard, error)
	EventEntries(ctx context.Context, eventID uuid.UUID) ([]models.Scorecard, error)
	SkillsContests(ctx context.Context, eventID uuid.UUID) ([]models.SkillsContest, error)
	ApplyScorecardPlan(ctx context.Context, eventID, roundID uuid.UUID, plan scoring.Plan) error
}

// Save outcomes reported to the Recorder.
const (
	OutcomeSaved    = "saved"
	OutcomeNoop     = "noop"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Recorder receives one observation per Save call.
type Recorder interface {
	ObserveSave(outcome string, inserted, updated, conflicts int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveSave(string, int, int, int) {}

// SaveResult counts the rows a save wrote.
type SaveResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Service is safe for concurrent use.
type Service struct {
	store Store
	log   *slog.Logger
	rec   Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sends save observations to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.rec = r }
}

// WithLogger sets the logger used for degraded reads.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New returns a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, log: slog.Default(), rec: noopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Template loads the hole template of a round's course. A course with no
// hole data gets placeholders for the round's hole count.
func (s *Service) Template(ctx context.Context, round models.EventRound) (scoring.Template, error) {
	rows, err := s.store.CourseHoles(ctx, round.CourseName)
	if err != nil {
		return scoring.Template{}, err
	}
	return scoring.NewTemplate(toHoles(rows), round.Holes), nil
}

// Load builds the current scorecard matrix for a round.
// A round that does not belong to the event returns repository.ErrNotFound.
func (s *Service) Load(ctx context.Context, eventID, roundID uuid.UUID) (scoring.Matrix, error) {
	snap, err := s.snapshot(ctx, eventID, roundID)
	if err != nil {
		return scoring.Matrix{}, err
	}
	return scoring.BuildMatrix(eventID, roundID, snap.tmpl, snap.players, snap.entries), nil
}

// snapshot is everything a round's scorecard is built from, read at one point.
type snapshot struct {
	tmpl    scoring.Template
	players []scoring.Player
	entries []scoring.Entry
}

func (s *Service) snapshot(ctx context.Context, eventID, roundID uuid.UUID) (snapshot, error) {
	// The round comes first: it scopes the round id to the event and names the
	// course the hole template is looked up by.
	round, err := s.store.Round(ctx, eventID, roundID)
	if err != nil {
		return snapshot{}, err
	}

	// Template, roster and stored entries don't depend on each other, so they
	// load concurrently. Each goroutine writes only its own field of snap.
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tmpl, err := s.Template(gctx, round)
		snap.tmpl = tmpl
		return err
	})
	g.Go(func() error {
		players, err := s.store.ActivePlayers(gctx, eventID)
		snap.players = toPlayers(players)
		return err
	})
	g.Go(func() error {
		rows, err := s.store.RoundEntries(gctx, eventID, roundID)
		snap.entries = toEntries(rows)
		return err
	})
	// Wait returns the first error; the other loads are cancelled through gctx.
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

// Save persists an edited matrix. It reads the round's rows once, reconciles,
// and writes only what changed. The matrix itself is not modified.
//
// Cells that someone else changed since m was loaded make the whole save fail
// with a *ConflictError before anything is written. Cells naming players or
// holes that are not on the round's scorecard fail with the matching scoring
// error.
func (s *Service) Save(ctx context.Context, eventID, roundID uuid.UUID, m scoring.Matrix) (SaveResult, error) {
	res, err := s.save(ctx, eventID, roundID, m)

	var conflict *ConflictError
	switch {
	case err == nil && res.Inserted+res.Updated == 0:
		s.rec.ObserveSave(OutcomeNoop, 0, 0, 0)
	case err == nil:
		s.rec.ObserveSave(OutcomeSaved, res.Inserted, res.Updated, 0)
	case errors.As(err, &conflict):
		s.rec.ObserveSave(OutcomeConflict, 0, 0, len(conflict.Conflicts))
	case IsInvalid(err):
		s.rec.ObserveSave(OutcomeInvalid, 0, 0, 0)
	default:
		s.rec.ObserveSave(OutcomeError, 0, 0, 0)
	}
	return res, err
}

func (s *Service) save(ctx context.Context, eventID, roundID uuid.UUID, m scoring.Matrix) (SaveResult, error) {
	snap, err := s.snapshot(ctx, eventID, roundID)
	if errors.Is(err, repository.ErrNotFound) {
		return SaveResult{}, err
	}
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	if err := checkShape(m, snap); err != nil {
		return SaveResult{}, err
	}

	plan := scoring.Reconcile(m, snap.entries)
	if len(plan.Conflicts) > 0 {
		return SaveResult{}, &ConflictError{Conflicts: plan.Conflicts}
	}
	if plan.Empty() {
		return SaveResult{}, nil
	}

	if err := s.store.ApplyScorecardPlan(ctx, eventID, roundID, plan); err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return SaveResult{}, &ConflictError{Err: err}
		}
		return SaveResult{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return SaveResult{Inserted: len(plan.Inserts), Updated: len(plan.Updates)}, nil
}

// checkShape rejects matrices that reference players or holes outside the
// round's scorecard, or stroke counts the editor could never produce.
func checkShape(m scoring.Matrix, snap snapshot) error {
	players := make(map[uuid.UUID]bool, len(snap.players))
	for _, p := range snap.players {
		players[p.ID] = true
	}
	holes := make(map[int]bool, len(snap.tmpl.Holes))
	for _, h := range snap.tmpl.Holes {
		holes[h.Number] = true
	}

	seenPlayers := make(map[uuid.UUID]bool, len(m.Rows))
	for _, row := range m.Rows {
		if !players[row.Player.ID] {
			return fmt.Errorf("%w: %s", scoring.ErrUnknownPlayer, row.Player.ID)
		}
		if seenPlayers[row.Player.ID] {
			return fmt.Errorf("%w: player %s has more than one row", scoring.ErrDuplicateCell, row.Player.ID)
		}
		seenPlayers[row.Player.ID] = true

		seenHoles := make(map[int]bool, len(row.Cells))
		for _, c := range row.Cells {
			if !holes[c.Hole] {
				return fmt.Errorf("%w: %d", scoring.ErrUnknownHole, c.Hole)
			}
			if seenHoles[c.Hole] {
				return fmt.Errorf("%w: player %s hole %d appears twice", scoring.ErrDuplicateCell, row.Player.ID, c.Hole)
			}
			seenHoles[c.Hole] = true
			if c.Strokes < scoring.MinStrokes || c.Strokes > scoring.MaxStrokes {
				return fmt.Errorf("%w: player %s hole %d has %d", scoring.ErrStrokesOutOfRange, row.Player.ID, c.Hole, c.Strokes)
			}
		}
	}
	return nil
}

// IsInvalid reports whether err rejects the submitted scorecard or ops
// rather than reporting a failure to read or write.
func IsInvalid(err error) bool {
	return errors.Is(err, scoring.ErrUnknownPlayer) ||
		errors.Is(err, scoring.ErrUnknownHole) ||
		errors.Is(err, scoring.ErrStrokesOutOfRange) ||
		errors.Is(err, scoring.ErrDuplicateCell) ||
		errors.Is(err, scoring.ErrUnknownOp)
}

// patchAttempts bounds how often Patch reloads after losing a race.
const patchAttempts = 3

// Patch applies ops to the latest persisted scorecard and saves the result.
// When another session writes between the load and the save, the ops are
// replayed on a fresh load. It returns the reloaded matrix.
func (s *Service) Patch(ctx context.Context, eventID, roundID uuid.UUID, ops []scoring.Op) (scoring.Matrix, SaveResult, error) {
	var lastErr error
	for attempt := 0; attempt < patchAttempts; attempt++ {
		m, err := s.Load(ctx, eventID, roundID)
		if err != nil {
			return scoring.Matrix{}, SaveResult{}, err
		}
		if err := m.Apply(ops...); err != nil {
			return scoring.Matrix{}, SaveResult{}, err
		}

		res, err := s.Save(ctx, eventID, roundID, m)
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			s.log.InfoContext(ctx, "scorecard patch lost a race, retrying",
				"event_id", eventID, "round_id", roundID, "attempt", attempt+1)
			lastErr = err
			continue
		}
		if err != nil {
			return scoring.Matrix{}, SaveResult{}, err
		}

		fresh, err := s.Load(ctx, eventID, roundID)
		if err != nil {
			return scoring.Matrix{}, res, err
		}
		return fresh, res, nil
	}
	return scoring.Matrix{}, SaveResult{}, lastErr
}

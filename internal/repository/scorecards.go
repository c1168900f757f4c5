package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/scoring"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// RoundEntries loads every persisted scorecard row of a round in one query.
func (r *Repository) RoundEntries(ctx context.Context, eventID, roundID uuid.UUID) ([]models.Scorecard, error) {
	var rows []models.Scorecard
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND round_id = ?", eventID, roundID).
		Order("player_id ASC, hole_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load scorecards for round %s: %w", roundID, err)
	}
	return rows, nil
}

// EventEntries loads every persisted scorecard row of an event.
func (r *Repository) EventEntries(ctx context.Context, eventID uuid.UUID) ([]models.Scorecard, error) {
	var rows []models.Scorecard
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("round_id ASC, player_id ASC, hole_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load scorecards for event %s: %w", eventID, err)
	}
	return rows, nil
}

// ApplyScorecardPlan writes a reconciled plan. The update batch and the insert
// batch run concurrently; if either fails the whole call fails, but rows the
// other batch already committed stay committed.
//
// Updates run in one transaction and each row is guarded by its expected
// version, so a row someone else touched since it was read aborts the batch
// with ErrStaleWrite. An insert that collides with an existing
// (round, player, hole) row is reported the same way.
func (r *Repository) ApplyScorecardPlan(ctx context.Context, eventID, roundID uuid.UUID, plan scoring.Plan) error {
	// errgroup.WithContext cancels the sibling batch as soon as one fails.
	g, ctx := errgroup.WithContext(ctx)
	if len(plan.Updates) > 0 {
		g.Go(func() error { return r.updateEntries(ctx, plan.Updates) })
	}
	if len(plan.Inserts) > 0 {
		g.Go(func() error { return r.insertEntries(ctx, eventID, roundID, plan.Inserts) })
	}
	// Wait blocks until both batches finish and returns the first error.
	return g.Wait()
}

func (r *Repository) updateEntries(ctx context.Context, updates []scoring.Update) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			// The version guard in the WHERE clause is the optimistic lock:
			// a row bumped by another session no longer matches.
			res := tx.Model(&models.Scorecard{}).
				Where("id = ? AND version = ?", u.ID, u.ExpectedVersion).
				Updates(map[string]any{
					"strokes": u.Strokes,
					"version": gorm.Expr("version + 1"),
				})
			if res.Error != nil {
				return res.Error
			}
			// Zero rows means the version moved; returning an error rolls
			// back every update already made in this transaction.
			if res.RowsAffected == 0 {
				return fmt.Errorf("update entry %s (player %s, hole %d): %w", u.ID, u.PlayerID, u.Hole, ErrStaleWrite)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

func (r *Repository) insertEntries(ctx context.Context, eventID, roundID uuid.UUID, inserts []scoring.Insert) error {
	rows := make([]models.Scorecard, len(inserts))
	for i, in := range inserts {
		rows[i] = models.Scorecard{
			EventID:    eventID,
			RoundID:    roundID,
			PlayerID:   in.PlayerID,
			HoleNumber: in.Hole,
			Strokes:    in.Strokes,
			Version:    1,
		}
	}
	// One batch INSERT. The unique (round, player, hole) index rejects a row
	// another session created first; TranslateError reports that as
	// gorm.ErrDuplicatedKey.
	err := r.db.WithContext(ctx).Create(&rows).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrStaleWrite
	}
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

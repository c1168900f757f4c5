package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/models"
	"gorm.io/gorm"
)

// EventBySlug loads the event behind a public URL.
func (r *Repository) EventBySlug(ctx context.Context, slug string) (models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&event).Error
	if err != nil {
		return models.Event{}, notFound(err)
	}
	return event, nil
}

// Events lists events owned by ownerID, newest first. With all set it lists
// every event (admins).
func (r *Repository) Events(ctx context.Context, ownerID uuid.UUID, all bool) ([]models.Event, error) {
	var events []models.Event
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if !all {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// CreateEvent inserts an event. A taken slug returns ErrDuplicate.
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Round loads one round, making sure it belongs to the event.
func (r *Repository) Round(ctx context.Context, eventID, roundID uuid.UUID) (models.EventRound, error) {
	var round models.EventRound
	err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", roundID, eventID).
		First(&round).Error
	if err != nil {
		return models.EventRound{}, notFound(err)
	}
	return round, nil
}

// Rounds lists an event's rounds in schedule order.
func (r *Repository) Rounds(ctx context.Context, eventID uuid.UUID) ([]models.EventRound, error) {
	var rounds []models.EventRound
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC, round_date ASC, created_at ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return rounds, nil
}

// CourseHoles returns the reference holes for a course name, ordered by
// hole number. No rows is not an error.
func (r *Repository) CourseHoles(ctx context.Context, courseName string) ([]models.CourseHole, error) {
	var holes []models.CourseHole
	err := r.db.WithContext(ctx).
		Where("course_name = ?", courseName).
		Order("hole_number ASC").
		Find(&holes).Error
	if err != nil {
		return nil, fmt.Errorf("load holes for %q: %w", courseName, err)
	}
	return holes, nil
}

// ActivePlayers lists players who belong on scorecards (accepted or invited),
// in roster order.
func (r *Repository) ActivePlayers(ctx context.Context, eventID uuid.UUID) ([]models.EventPlayer, error) {
	var players []models.EventPlayer
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status IN ?", eventID, models.ActivePlayerStatuses).
		Order("created_at ASC, name ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// Courses lists the courses on the trip.
func (r *Repository) Courses(ctx context.Context, eventID uuid.UUID) ([]models.EventCourse, error) {
	var courses []models.EventCourse
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC, name ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Prizes lists the prizes shown on the public site.
func (r *Repository) Prizes(ctx context.Context, eventID uuid.UUID) ([]models.EventPrize, error) {
	var prizes []models.EventPrize
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("sort_order ASC, title ASC").
		Find(&prizes).Error
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	return prizes, nil
}

// Travel lists the lodging and logistics entries.
func (r *Repository) Travel(ctx context.Context, eventID uuid.UUID) ([]models.EventTravel, error) {
	var travel []models.EventTravel
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("check_in ASC, created_at ASC").
		Find(&travel).Error
	if err != nil {
		return nil, fmt.Errorf("list travel: %w", err)
	}
	return travel, nil
}

// SkillsContests lists every contest of the event.
func (r *Repository) SkillsContests(ctx context.Context, eventID uuid.UUID) ([]models.SkillsContest, error) {
	var contests []models.SkillsContest
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("hole_number ASC, contest_type ASC").
		Find(&contests).Error
	if err != nil {
		return nil, fmt.Errorf("list skills contests: %w", err)
	}
	return contests, nil
}

// SetContestWinner records (or clears, with nil) the winner of a contest.
// The winner must be an active player of the same event.
func (r *Repository) SetContestWinner(ctx context.Context, eventID, contestID uuid.UUID, winner *uuid.UUID) (models.SkillsContest, error) {
	var contest models.SkillsContest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND event_id = ?", contestID, eventID).First(&contest).Error; err != nil {
			return notFound(err)
		}
		if winner != nil {
			var count int64
			err := tx.Model(&models.EventPlayer{}).
				Where("id = ? AND event_id = ? AND status IN ?", *winner, eventID, models.ActivePlayerStatuses).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("winner %s: %w", winner, ErrNotFound)
			}
		}
		contest.WinnerPlayerID = winner
		return tx.Model(&contest).Update("winner_player_id", winner).Error
	})
	if err != nil {
		return models.SkillsContest{}, err
	}
	return contest, nil
}

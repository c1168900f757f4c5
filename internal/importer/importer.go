package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Importer writes trips to the database.
type Importer struct {
	db  *gorm.DB
	log *slog.Logger
	// cost is the bcrypt cost for clubhouse passwords.
	cost int
}

// New returns an Importer writing through db.
func New(db *gorm.DB, log *slog.Logger) *Importer {
	return &Importer{db: db, log: log, cost: bcrypt.DefaultCost}
}

// Import validates the trip and creates everything in one transaction.
// Course hole data is shared across events by course name, so existing holes
// are updated in place rather than duplicated.
func (i *Importer) Import(ctx context.Context, trip Trip) (models.Event, error) {
	if err := trip.Validate(); err != nil {
		return models.Event{}, err
	}

	var hash *string
	if trip.Event.ClubhousePassword != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(trip.Event.ClubhousePassword), i.cost)
		if err != nil {
			return models.Event{}, fmt.Errorf("hash clubhouse password: %w", err)
		}
		s := string(h)
		hash = &s
	}

	var event models.Event
	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := models.User{
			AuthID:      trip.Owner.AuthID,
			Email:       trip.Owner.Email,
			DisplayName: trip.Owner.Name,
			Role:        models.UserRoleUser,
		}
		if owner.DisplayName == "" {
			owner.DisplayName = trip.Owner.Email
		}
		if err := tx.Where("auth_id = ?", owner.AuthID).FirstOrCreate(&owner).Error; err != nil {
			return fmt.Errorf("owner: %w", err)
		}

		event = models.Event{
			Slug:                  trip.Event.Slug,
			Name:                  trip.Event.Name,
			Description:           trip.Event.Description,
			Location:              trip.Event.Location,
			StartDate:             trip.Event.StartDate.ptr(),
			EndDate:               trip.Event.EndDate.ptr(),
			OwnerID:               owner.ID,
			ClubhousePasswordHash: hash,
		}
		if err := tx.Create(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("event %q: %w", event.Slug, repository.ErrDuplicate)
			}
			return fmt.Errorf("event: %w", err)
		}

		for n, c := range trip.Courses {
			course := models.EventCourse{
				EventID: event.ID, Name: c.Name, Location: c.Location, Par: c.Par, Website: c.Website, SortOrder: n,
			}
			if err := tx.Create(&course).Error; err != nil {
				return fmt.Errorf("course %q: %w", c.Name, err)
			}
			if len(c.Holes) == 0 {
				continue
			}
			holes := make([]models.CourseHole, len(c.Holes))
			for j, h := range c.Holes {
				holes[j] = models.CourseHole{CourseName: c.Name, HoleNumber: h.Number, Par: h.Par, Yardage: h.Yardage, Handicap: h.Handicap}
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "course_name"}, {Name: "hole_number"}},
				DoUpdates: clause.AssignmentColumns([]string{"par", "yardage", "handicap"}),
			}).Create(&holes).Error
			if err != nil {
				return fmt.Errorf("holes of %q: %w", c.Name, err)
			}
		}

		for n, r := range trip.Rounds {
			round := models.EventRound{
				EventID:     event.ID,
				CourseName:  r.Course,
				RoundDate:   r.Date.ptr(),
				TeeTime:     r.TeeTime,
				ScoringType: r.ScoringType,
				Holes:       r.Holes,
				SortOrder:   n,
			}
			if err := tx.Create(&round).Error; err != nil {
				return fmt.Errorf("round %d: %w", n+1, err)
			}
			for _, c := range r.Contests {
				contest := models.SkillsContest{EventID: event.ID, RoundID: round.ID, HoleNumber: c.Hole, ContestType: c.Type}
				if err := tx.Create(&contest).Error; err != nil {
					return fmt.Errorf("round %d contest on hole %d: %w", n+1, c.Hole, err)
				}
			}
		}

		for _, p := range trip.Players {
			player := models.EventPlayer{
				EventID: event.ID, Name: p.Name, Email: p.Email, Handicap: p.Handicap,
				Bio: p.Bio, ImageURL: p.ImageURL, Status: p.Status,
			}
			if err := tx.Create(&player).Error; err != nil {
				return fmt.Errorf("player %q: %w", p.Name, err)
			}
		}

		for n, p := range trip.Prizes {
			prize := models.EventPrize{EventID: event.ID, Title: p.Title, Description: p.Description, Amount: p.Amount, SortOrder: n}
			if err := tx.Create(&prize).Error; err != nil {
				return fmt.Errorf("prize %q: %w", p.Title, err)
			}
		}

		for n, t := range trip.Travel {
			travel := models.EventTravel{
				EventID: event.ID, Lodging: t.Lodging, Address: t.Address,
				CheckIn: t.CheckIn.ptr(), CheckOut: t.CheckOut.ptr(), Notes: t.Notes,
			}
			if err := tx.Create(&travel).Error; err != nil {
				return fmt.Errorf("travel %d: %w", n+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	i.log.InfoContext(ctx, "trip imported",
		"slug", event.Slug, "courses", len(trip.Courses), "rounds", len(trip.Rounds), "players", len(trip.Players))
	return event, nil
}

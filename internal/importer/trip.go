// Package importer loads a whole golf trip from a YAML file: the event, its
// courses and hole data, rounds with their skills contests, the roster,
// prizes and travel.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/trentd187/golf-trips/internal/models"
	"gopkg.in/yaml.v3"
)

// Date is a calendar day written as YYYY-MM-DD.
type Date struct{ time.Time }

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("line %d: date %q must be YYYY-MM-DD", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// Trip is the YAML document.
type Trip struct {
	Owner   Owner    `yaml:"owner"`
	Event   Event    `yaml:"event"`
	Courses []Course `yaml:"courses"`
	Rounds  []Round  `yaml:"rounds"`
	Players []Player `yaml:"players"`
	Prizes  []Prize  `yaml:"prizes"`
	Travel  []Travel `yaml:"travel"`
}

// Owner identifies the user the event belongs to. The user is created if
// the identity provider id has never signed in.
type Owner struct {
	AuthID string `yaml:"auth_id"`
	Email  string `yaml:"email"`
	Name   string `yaml:"name"`
}

type Event struct {
	Slug              string  `yaml:"slug"`
	Name              string  `yaml:"name"`
	Description       *string `yaml:"description"`
	Location          *string `yaml:"location"`
	StartDate         *Date   `yaml:"start_date"`
	EndDate           *Date   `yaml:"end_date"`
	ClubhousePassword string  `yaml:"clubhouse_password"`
}

type Course struct {
	Name     string  `yaml:"name"`
	Location *string `yaml:"location"`
	Par      *int    `yaml:"par"`
	Website  *string `yaml:"website"`
	Holes    []Hole  `yaml:"holes"`
}

type Hole struct {
	Number   int  `yaml:"number"`
	Par      *int `yaml:"par"`
	Yardage  *int `yaml:"yardage"`
	Handicap *int `yaml:"handicap"`
}

type Round struct {
	Course      string             `yaml:"course"`
	Date        *Date              `yaml:"date"`
	TeeTime     *string            `yaml:"tee_time"`
	ScoringType models.ScoringType `yaml:"scoring_type"`
	Holes       int                `yaml:"holes"`
	Contests    []Contest          `yaml:"contests"`
}

type Contest struct {
	Hole int                `yaml:"hole"`
	Type models.ContestType `yaml:"type"`
}

type Player struct {
	Name     string              `yaml:"name"`
	Email    *string             `yaml:"email"`
	Handicap *float64            `yaml:"handicap"`
	Bio      *string             `yaml:"bio"`
	ImageURL *string             `yaml:"image_url"`
	Status   models.PlayerStatus `yaml:"status"`
}

type Prize struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	Amount      *string `yaml:"amount"`
}

type Travel struct {
	Lodging  *string `yaml:"lodging"`
	Address  *string `yaml:"address"`
	CheckIn  *Date   `yaml:"check_in"`
	CheckOut *Date   `yaml:"check_out"`
	Notes    *string `yaml:"notes"`
}

// Parse decodes a trip file. Unknown keys are rejected so typos don't
// silently drop data.
func Parse(r io.Reader) (Trip, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var trip Trip
	if err := dec.Decode(&trip); err != nil {
		return Trip{}, fmt.Errorf("parse trip file: %w", err)
	}
	trip.applyDefaults()
	return trip, nil
}

func (t *Trip) applyDefaults() {
	for i := range t.Rounds {
		r := &t.Rounds[i]
		if r.ScoringType == "" {
			r.ScoringType = models.ScoringTypeStroke
		}
		if r.Holes == 0 {
			r.Holes = 18
		}
	}
	for i := range t.Players {
		if t.Players[i].Status == "" {
			t.Players[i].Status = models.PlayerStatusAccepted
		}
	}
}

var scoringTypes = map[models.ScoringType]bool{
	models.ScoringTypeStroke: true, models.ScoringTypeStableford: true, models.ScoringTypeScramble: true,
	models.ScoringTypeBestBall: true, models.ScoringTypeMatchPlay: true,
}

var playerStatuses = map[models.PlayerStatus]bool{
	models.PlayerStatusInvited: true, models.PlayerStatusAccepted: true, models.PlayerStatusDeclined: true,
}

// Validate reports every problem in the file at once.
func (t Trip) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if t.Owner.AuthID == "" || t.Owner.Email == "" {
		add("owner: auth_id and email are required")
	}
	if t.Event.Slug == "" || t.Event.Name == "" {
		add("event: slug and name are required")
	}
	if t.Event.StartDate != nil && t.Event.EndDate != nil && t.Event.EndDate.Before(t.Event.StartDate.Time) {
		add("event: end_date is before start_date")
	}

	courses := make(map[string]bool, len(t.Courses))
	for i, c := range t.Courses {
		if c.Name == "" {
			add("courses[%d]: name is required", i)
			continue
		}
		if courses[c.Name] {
			add("courses[%d]: %q is listed twice", i, c.Name)
		}
		courses[c.Name] = true
		seen := make(map[int]bool, len(c.Holes))
		for j, h := range c.Holes {
			if h.Number < 1 || seen[h.Number] {
				add("courses[%d].holes[%d]: number %d is invalid or repeated", i, j, h.Number)
			}
			seen[h.Number] = true
		}
	}

	for i, r := range t.Rounds {
		if !courses[r.Course] {
			add("rounds[%d]: course %q is not in courses", i, r.Course)
		}
		if !scoringTypes[r.ScoringType] {
			add("rounds[%d]: unknown scoring_type %q", i, r.ScoringType)
		}
		if r.Holes < 1 {
			add("rounds[%d]: holes must be positive", i)
		}
		for j, c := range r.Contests {
			if !c.Type.Valid() {
				add("rounds[%d].contests[%d]: unknown type %q", i, j, c.Type)
			}
			if c.Hole < 1 || c.Hole > r.Holes {
				add("rounds[%d].contests[%d]: hole %d is not on a %d-hole round", i, j, c.Hole, r.Holes)
			}
		}
	}

	for i, p := range t.Players {
		if p.Name == "" {
			add("players[%d]: name is required", i)
		}
		if !playerStatuses[p.Status] {
			add("players[%d]: unknown status %q", i, p.Status)
		}
	}
	for i, p := range t.Prizes {
		if p.Title == "" {
			add("prizes[%d]: title is required", i)
		}
	}

	return errors.Join(errs...)
}

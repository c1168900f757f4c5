// Package models defines the structs that map to database tables.
// GORM uses these structs to generate SQL queries and map rows back to Go values;
// the struct tags tell it about column constraints and indexes.
//
// The data model is a golf trip ("event") website:
//   - An Event has Courses, Rounds, Players, Prizes, Travel details and Skills Contests
//   - Course Holes carry par/yardage/handicap data, keyed by course name
//   - Scorecards hold one stroke count per (round, player, hole)
//
// The authoritative schema lives in migrations/ (golang-migrate). The tags here
// mirror it closely enough for GORM's AutoMigrate to build an equivalent schema
// in tests.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Enums ---
// Named string types plus constants, stored as text in the database.

// UserRole is a user's platform-wide permission level.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin" // Can manage every event
	UserRoleUser  UserRole = "user"  // Can create and manage their own events
)

// PlayerStatus tracks where a player is in the invite flow.
type PlayerStatus string

const (
	PlayerStatusInvited  PlayerStatus = "invited"
	PlayerStatusAccepted PlayerStatus = "accepted"
	PlayerStatusDeclined PlayerStatus = "declined"
)

// ActivePlayerStatuses are the statuses that put a player on scorecards.
var ActivePlayerStatuses = []PlayerStatus{PlayerStatusAccepted, PlayerStatusInvited}

// ScoringType is how a round is scored. Only stroke play is computed; the
// others are displayed as configured.
type ScoringType string

const (
	ScoringTypeStroke     ScoringType = "stroke_play"
	ScoringTypeStableford ScoringType = "stableford"
	ScoringTypeScramble   ScoringType = "scramble"
	ScoringTypeBestBall   ScoringType = "best_ball"
	ScoringTypeMatchPlay  ScoringType = "match_play"
)

// ContestType is the kind of skills contest held on a hole.
type ContestType string

const (
	ContestLongestDrive ContestType = "longest_drive"
	ContestClosestToPin ContestType = "closest_to_pin"
)

// Valid reports whether t is a known contest type.
func (t ContestType) Valid() bool {
	return t == ContestLongestDrive || t == ContestClosestToPin
}

// --- Models ---

// Base carries the UUID primary key. The database generates ids with
// gen_random_uuid(); the hook fills one in first so that batch inserts
// come back with ids on every dialect.
type Base struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// User is an event owner, created lazily the first time a verified
// identity-provider token reaches the API.
type User struct {
	Base
	AuthID      string   `gorm:"uniqueIndex;not null"` // "sub" claim from the identity provider
	DisplayName string   `gorm:"not null"`
	Email       string   `gorm:"uniqueIndex;not null"`
	Role        UserRole `gorm:"not null;default:'user'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Event is one golf trip or tournament with its own public microsite.
// ClubhousePasswordHash is a bcrypt hash; nil means the clubhouse is closed.
type Event struct {
	Base
	Slug                  string  `gorm:"uniqueIndex;not null"`
	Name                  string  `gorm:"not null"`
	Description           *string
	Location              *string
	StartDate             *time.Time
	EndDate               *time.Time
	OwnerID               uuid.UUID `gorm:"type:uuid;not null;index"`
	ClubhousePasswordHash *string   `json:"-"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// EventCourse is a course the group plays during the trip.
type EventCourse struct {
	Base
	EventID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Location  *string
	Par       *int
	Website   *string
	SortOrder int `gorm:"not null;default:0"`
	CreatedAt time.Time
}

// CourseHole is reference data for one hole of a course, looked up by the
// course's name. Par may be missing for courses entered without a card.
type CourseHole struct {
	Base
	CourseName string `gorm:"not null;uniqueIndex:idx_course_holes_course_hole"`
	HoleNumber int    `gorm:"not null;uniqueIndex:idx_course_holes_course_hole"`
	Par        *int
	Yardage    *int
	Handicap   *int
}

// EventRound is one scheduled round: a course on a date with a tee time.
type EventRound struct {
	Base
	EventID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	CourseName  string      `gorm:"not null"`
	RoundDate   *time.Time
	TeeTime     *string     // "08:30" style local tee time
	ScoringType ScoringType `gorm:"not null;default:'stroke_play'"`
	Holes       int         `gorm:"not null;default:18"`
	SortOrder   int         `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventPlayer is someone on the trip roster.
type EventPlayer struct {
	Base
	EventID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Name      string       `gorm:"not null"`
	Email     *string
	Handicap  *float64
	Bio       *string
	ImageURL  *string
	Status    PlayerStatus `gorm:"not null;default:'invited'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EventPrize is a prize shown on the public site.
type EventPrize struct {
	Base
	EventID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"not null"`
	Description *string
	Amount      *string
	SortOrder   int `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// EventTravel is lodging and logistics information for the trip.
// GORM would pluralize the table name; the schema calls it event_travel.
type EventTravel struct {
	Base
	EventID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Lodging   *string
	Address   *string
	CheckIn   *time.Time
	CheckOut  *time.Time
	Notes     *string
	CreatedAt time.Time
}

func (EventTravel) TableName() string { return "event_travel" }

// Scorecard is the atomic scoring fact: strokes for one player on one hole of
// one round. The unique index guarantees a single row per (round, player, hole).
// Version starts at 1 and is bumped by every update; writers must present the
// version they read.
type Scorecard struct {
	Base
	EventID    uuid.UUID `gorm:"type:uuid;not null;index"`
	RoundID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_scorecards_round_player_hole"`
	PlayerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_scorecards_round_player_hole"`
	HoleNumber int       `gorm:"not null;uniqueIndex:idx_scorecards_round_player_hole"`
	Strokes    int       `gorm:"not null;default:0"`
	Version    int       `gorm:"not null;default:1"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SkillsContest is a longest-drive or closest-to-pin contest on a hole.
type SkillsContest struct {
	Base
	EventID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	RoundID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	HoleNumber     int         `gorm:"not null"`
	ContestType    ContestType `gorm:"not null"`
	WinnerPlayerID *uuid.UUID  `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// All lists every model, in dependency order, for AutoMigrate in tests.
func All() []any {
	return []any{
		&User{}, &Event{}, &EventCourse{}, &CourseHole{}, &EventRound{},
		&EventPlayer{}, &EventPrize{}, &EventTravel{}, &Scorecard{}, &SkillsContest{},
	}
}

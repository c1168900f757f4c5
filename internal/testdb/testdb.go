// Package testdb opens throwaway SQLite databases with the full schema and
// seeds them with a ready-to-score event. It is only imported from tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/golf-trips/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory database private to the test.
// A single connection keeps the in-memory database alive and serializes the
// concurrent scorecard batches the way a row lock would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Options controls what Seed creates.
type Options struct {
	Slug              string
	Players           int
	Holes             int  // holes on the round; also how many course_holes rows are written
	NoCourseHoles     bool // leave course_holes empty so the round falls back to placeholders
	ClubhousePassword string
	Contests          bool // add a longest drive on hole 1 and closest to pin on hole 2
}

// Fixture is what Seed created.
type Fixture struct {
	Owner    models.User
	Event    models.Event
	Round    models.EventRound
	Players  []models.EventPlayer
	Holes    []models.CourseHole
	Contests []models.SkillsContest
}

// Pars cycles through for seeded holes: 18 holes of this sum to par 72.
var Pars = []int{4, 4, 3, 5, 4, 4, 3, 5, 4, 4, 4, 3, 5, 4, 4, 3, 5, 4}

// Seed creates an owner, an event with one round on one course, and a roster.
func Seed(t testing.TB, db *gorm.DB, opts Options) Fixture {
	t.Helper()

	if opts.Slug == "" {
		opts.Slug = "trip-" + uuid.NewString()[:8]
	}
	if opts.Players == 0 {
		opts.Players = 2
	}
	if opts.Holes == 0 {
		opts.Holes = 18
	}

	var f Fixture
	f.Owner = models.User{
		AuthID:      "user_" + uuid.NewString(),
		DisplayName: gofakeit.Name(),
		Email:       gofakeit.Email(),
		Role:        models.UserRoleUser,
	}
	require.NoError(t, db.Create(&f.Owner).Error)

	start := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	f.Event = models.Event{
		Slug:      opts.Slug,
		Name:      "Spring Golf Trip",
		StartDate: &start,
		OwnerID:   f.Owner.ID,
	}
	if opts.ClubhousePassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.ClubhousePassword), bcrypt.MinCost)
		require.NoError(t, err)
		h := string(hash)
		f.Event.ClubhousePasswordHash = &h
	}
	require.NoError(t, db.Create(&f.Event).Error)

	courseName := "Bandon Dunes " + uuid.NewString()[:6]
	require.NoError(t, db.Create(&models.EventCourse{EventID: f.Event.ID, Name: courseName}).Error)

	if !opts.NoCourseHoles {
		for i := 0; i < opts.Holes; i++ {
			par := Pars[i%len(Pars)]
			yards := 300 + 10*i
			hcp := i + 1
			f.Holes = append(f.Holes, models.CourseHole{
				CourseName: courseName, HoleNumber: i + 1, Par: &par, Yardage: &yards, Handicap: &hcp,
			})
		}
		require.NoError(t, db.Create(&f.Holes).Error)
	}

	f.Round = models.EventRound{
		EventID:     f.Event.ID,
		CourseName:  courseName,
		RoundDate:   &start,
		ScoringType: models.ScoringTypeStroke,
		Holes:       opts.Holes,
	}
	require.NoError(t, db.Create(&f.Round).Error)

	for i := 0; i < opts.Players; i++ {
		p := models.EventPlayer{
			EventID: f.Event.ID,
			// Prefix keeps roster order stable when created_at values tie.
			Name:   fmt.Sprintf("%02d %s", i, gofakeit.Name()),
			Status: models.PlayerStatusAccepted,
		}
		if i%2 == 1 {
			p.Status = models.PlayerStatusInvited
		}
		require.NoError(t, db.Create(&p).Error)
		f.Players = append(f.Players, p)
	}

	if opts.Contests {
		f.Contests = []models.SkillsContest{
			{EventID: f.Event.ID, RoundID: f.Round.ID, HoleNumber: 1, ContestType: models.ContestLongestDrive},
			{EventID: f.Event.ID, RoundID: f.Round.ID, HoleNumber: 2, ContestType: models.ContestClosestToPin},
		}
		require.NoError(t, db.Create(&f.Contests).Error)
	}

	return f
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

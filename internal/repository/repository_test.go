package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scoring"
	"github.com/trentd187/golf-trips/internal/testdb"
)

func TestEventBySlug(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Slug: "bandon-2026"})
	repo := repository.New(db)
	ctx := context.Background()

	event, err := repo.EventBySlug(ctx, "bandon-2026")
	require.NoError(t, err)
	assert.Equal(t, f.Event.ID, event.ID)

	_, err = repo.EventBySlug(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateEventDuplicateSlug(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Slug: "taken"})
	repo := repository.New(db)

	err := repo.CreateEvent(context.Background(), &models.Event{Slug: "taken", Name: "Again", OwnerID: f.Owner.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestEventsScopedToOwner(t *testing.T) {
	db := testdb.Open(t)
	mine := testdb.Seed(t, db, testdb.Options{})
	testdb.Seed(t, db, testdb.Options{})
	repo := repository.New(db)
	ctx := context.Background()

	events, err := repo.Events(ctx, mine.Owner.ID, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, mine.Event.ID, events[0].ID)

	all, err := repo.Events(ctx, mine.Owner.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRoundBelongsToEvent(t *testing.T) {
	db := testdb.Open(t)
	a := testdb.Seed(t, db, testdb.Options{})
	b := testdb.Seed(t, db, testdb.Options{})
	repo := repository.New(db)

	_, err := repo.Round(context.Background(), a.Event.ID, b.Round.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActivePlayersSkipsDeclined(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 2})
	require.NoError(t, db.Create(&models.EventPlayer{EventID: f.Event.ID, Name: "zz declined", Status: models.PlayerStatusDeclined}).Error)
	repo := repository.New(db)

	players, err := repo.ActivePlayers(context.Background(), f.Event.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, f.Players[0].ID, players[0].ID)
	assert.Equal(t, f.Players[1].ID, players[1].ID)
}

func TestCourseHolesOrdered(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Holes: 9})
	repo := repository.New(db)

	holes, err := repo.CourseHoles(context.Background(), f.Round.CourseName)
	require.NoError(t, err)
	require.Len(t, holes, 9)
	for i, h := range holes {
		assert.Equal(t, i+1, h.HoleNumber)
	}

	none, err := repo.CourseHoles(context.Background(), "Nowhere Links")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestApplyScorecardPlan(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 2})
	repo := repository.New(db)
	ctx := context.Background()
	p1, p2 := f.Players[0].ID, f.Players[1].ID

	err := repo.ApplyScorecardPlan(ctx, f.Event.ID, f.Round.ID, scoring.Plan{
		Inserts: []scoring.Insert{
			{PlayerID: p1, Hole: 1, Strokes: 4},
			{PlayerID: p2, Hole: 1, Strokes: 5},
		},
	})
	require.NoError(t, err)

	rows, err := repo.RoundEntries(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 1, r.Version)
	}

	first := rows[0]
	err = repo.ApplyScorecardPlan(ctx, f.Event.ID, f.Round.ID, scoring.Plan{
		Updates: []scoring.Update{{ID: first.ID, PlayerID: first.PlayerID, Hole: 1, Strokes: 6, ExpectedVersion: 1}},
		Inserts: []scoring.Insert{{PlayerID: p1, Hole: 2, Strokes: 3}},
	})
	require.NoError(t, err)

	var updated models.Scorecard
	require.NoError(t, db.First(&updated, "id = ?", first.ID).Error)
	assert.Equal(t, 6, updated.Strokes)
	assert.Equal(t, 2, updated.Version)

	entries, err := repo.EventEntries(ctx, f.Event.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestApplyScorecardPlanStaleVersion(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{})
	repo := repository.New(db)
	ctx := context.Background()

	row := models.Scorecard{EventID: f.Event.ID, RoundID: f.Round.ID, PlayerID: f.Players[0].ID, HoleNumber: 1, Strokes: 4, Version: 3}
	require.NoError(t, db.Create(&row).Error)

	err := repo.ApplyScorecardPlan(ctx, f.Event.ID, f.Round.ID, scoring.Plan{
		Updates: []scoring.Update{{ID: row.ID, PlayerID: row.PlayerID, Hole: 1, Strokes: 5, ExpectedVersion: 2}},
	})
	assert.ErrorIs(t, err, repository.ErrStaleWrite)

	var stored models.Scorecard
	require.NoError(t, db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, 4, stored.Strokes)
	assert.Equal(t, 3, stored.Version)
}

func TestApplyScorecardPlanDuplicateInsert(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{})
	repo := repository.New(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Scorecard{EventID: f.Event.ID, RoundID: f.Round.ID, PlayerID: f.Players[0].ID, HoleNumber: 1, Strokes: 4, Version: 1}).Error)

	err := repo.ApplyScorecardPlan(ctx, f.Event.ID, f.Round.ID, scoring.Plan{
		Inserts: []scoring.Insert{{PlayerID: f.Players[0].ID, Hole: 1, Strokes: 5}},
	})
	assert.ErrorIs(t, err, repository.ErrStaleWrite)
}

func TestSetContestWinner(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Contests: true})
	repo := repository.New(db)
	ctx := context.Background()
	contest := f.Contests[0]
	winner := f.Players[0].ID

	got, err := repo.SetContestWinner(ctx, f.Event.ID, contest.ID, &winner)
	require.NoError(t, err)
	require.NotNil(t, got.WinnerPlayerID)
	assert.Equal(t, winner, *got.WinnerPlayerID)

	stranger := uuid.New()
	_, err = repo.SetContestWinner(ctx, f.Event.ID, contest.ID, &stranger)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cleared, err := repo.SetContestWinner(ctx, f.Event.ID, contest.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.WinnerPlayerID)

	_, err = repo.SetContestWinner(ctx, uuid.New(), contest.ID, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSyncUser(t *testing.T) {
	db := testdb.Open(t)
	repo := repository.New(db)
	ctx := context.Background()

	id := repository.Identity{AuthID: "user_123", Email: "host@example.com", DisplayName: "Host", Role: models.UserRoleUser, RoleClaimed: true}
	created, err := repo.SyncUser(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	again, err := repo.SyncUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	id.Role = models.UserRoleAdmin
	promoted, err := repo.SyncUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, promoted.Role)

	// No role claim leaves the stored role alone.
	unclaimed, err := repo.SyncUser(ctx, repository.Identity{AuthID: "user_123"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, unclaimed.Role)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

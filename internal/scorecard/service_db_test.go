package scorecard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scorecard"
	"github.com/trentd187/golf-trips/internal/scoring"
	"github.com/trentd187/golf-trips/internal/testdb"
)

func TestSaveAgainstDatabase(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 2})
	svc := scorecard.New(repository.New(db))
	ctx := context.Background()
	p := f.Players[0].ID

	m, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	assert.True(t, m.Template.HasPar)
	for hole := 1; hole <= 9; hole++ {
		require.NoError(t, m.Set(p, hole, 4))
	}

	res, err := svc.Save(ctx, f.Event.ID, f.Round.ID, m)
	require.NoError(t, err)
	assert.Equal(t, scorecard.SaveResult{Inserted: 9}, res)

	reloaded, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, 36, reloaded.Rows[0].TotalStrokes)
	assert.Equal(t, 9, reloaded.Rows[0].HolesPlayed)

	// Saving again without edits writes nothing.
	res, err = svc.Save(ctx, f.Event.ID, f.Round.ID, reloaded)
	require.NoError(t, err)
	assert.Equal(t, scorecard.SaveResult{}, res)
}

func TestTwoSessionsAgainstDatabase(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 1})
	svc := scorecard.New(repository.New(db))
	ctx := context.Background()
	p := f.Players[0].ID

	seed, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	require.NoError(t, seed.Set(p, 3, 3))
	_, err = svc.Save(ctx, f.Event.ID, f.Round.ID, seed)
	require.NoError(t, err)

	a, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	b, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)

	require.NoError(t, a.Set(p, 3, 4))
	_, err = svc.Save(ctx, f.Event.ID, f.Round.ID, a)
	require.NoError(t, err)

	require.NoError(t, b.Set(p, 3, 5))
	_, err = svc.Save(ctx, f.Event.ID, f.Round.ID, b)
	var conflict *scorecard.ConflictError
	require.ErrorAs(t, err, &conflict)

	stored, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rows[0].Cells[2].Strokes)
}

func TestDisjointEditsAgainstDatabase(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 2})
	svc := scorecard.New(repository.New(db))
	ctx := context.Background()
	p, q := f.Players[0].ID, f.Players[1].ID

	a, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	b, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)

	// Two groups score different players on the same hole.
	require.NoError(t, a.Set(p, 1, 4))
	_, err = svc.Save(ctx, f.Event.ID, f.Round.ID, a)
	require.NoError(t, err)

	require.NoError(t, b.Set(q, 1, 5))
	res, err := svc.Save(ctx, f.Event.ID, f.Round.ID, b)
	require.NoError(t, err)
	assert.Equal(t, scorecard.SaveResult{Inserted: 1}, res)

	stored, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rows[0].Cells[0].Strokes)
	assert.Equal(t, 5, stored.Rows[1].Cells[0].Strokes)
}

func TestPlaceholderHolesAgainstDatabase(t *testing.T) {
	db := testdb.Open(t)
	f := testdb.Seed(t, db, testdb.Options{Players: 1, Holes: 9, NoCourseHoles: true})
	svc := scorecard.New(repository.New(db))
	ctx := context.Background()

	m, err := svc.Load(ctx, f.Event.ID, f.Round.ID)
	require.NoError(t, err)
	assert.False(t, m.Template.HasPar)
	require.Len(t, m.Template.Holes, 9)

	patched, _, err := svc.Patch(ctx, f.Event.ID, f.Round.ID, []scoring.Op{
		{Kind: scoring.OpSet, PlayerID: f.Players[0].ID, Hole: 9, Strokes: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, patched.Rows[0].TotalStrokes)
	assert.Nil(t, patched.Rows[0].Differential)

	lb, err := svc.Leaderboard(ctx, f.Event.ID)
	require.NoError(t, err)
	require.Len(t, lb.Rounds, 1)
	assert.False(t, lb.Rounds[0].HasPar)
	assert.Equal(t, "", lb.Rounds[0].Standings[0].ToPar)
	assert.Equal(t, scoring.BandNone, lb.Rounds[0].Standings[0].Holes[8].Band)
}

package scorecard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/repository"
	"github.com/trentd187/golf-trips/internal/scoring"
)

// fakeStore keeps scorecard rows in memory and enforces version guards the
// same way the repository does.
type fakeStore struct {
	mu       sync.Mutex
	eventID  uuid.UUID
	rounds   []models.EventRound
	holes    map[string][]models.CourseHole
	players  []models.EventPlayer
	rows     []models.Scorecard
	contests []models.SkillsContest

	applyCalls int
	applyErr   error
	// beforeApply runs once, just before the next plan is applied.
	beforeApply func()
}

func newFakeStore(players int, withPar bool) *fakeStore {
	s := &fakeStore{eventID: uuid.New(), holes: map[string][]models.CourseHole{}}
	round := models.EventRound{EventID: s.eventID, CourseName: "Pebble", Holes: 18, ScoringType: models.ScoringTypeStroke}
	round.ID = uuid.New()
	s.rounds = append(s.rounds, round)
	if withPar {
		for i := 1; i <= 18; i++ {
			par := 4
			s.holes["Pebble"] = append(s.holes["Pebble"], models.CourseHole{CourseName: "Pebble", HoleNumber: i, Par: &par})
		}
	}
	for i := 0; i < players; i++ {
		p := models.EventPlayer{EventID: s.eventID, Name: string(rune('A' + i)), Status: models.PlayerStatusAccepted}
		p.ID = uuid.New()
		s.players = append(s.players, p)
	}
	return s
}

func (s *fakeStore) round() models.EventRound { return s.rounds[0] }

func (s *fakeStore) Round(_ context.Context, eventID, roundID uuid.UUID) (models.EventRound, error) {
	for _, r := range s.rounds {
		if r.ID == roundID && r.EventID == eventID {
			return r, nil
		}
	}
	return models.EventRound{}, repository.ErrNotFound
}

func (s *fakeStore) Rounds(context.Context, uuid.UUID) ([]models.EventRound, error) {
	return s.rounds, nil
}

func (s *fakeStore) CourseHoles(_ context.Context, name string) ([]models.CourseHole, error) {
	return s.holes[name], nil
}

func (s *fakeStore) ActivePlayers(context.Context, uuid.UUID) ([]models.EventPlayer, error) {
	return s.players, nil
}

func (s *fakeStore) RoundEntries(_ context.Context, _, roundID uuid.UUID) ([]models.Scorecard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Scorecard
	for _, r := range s.rows {
		if r.RoundID == roundID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) EventEntries(context.Context, uuid.UUID) ([]models.Scorecard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Scorecard(nil), s.rows...), nil
}

func (s *fakeStore) SkillsContests(context.Context, uuid.UUID) ([]models.SkillsContest, error) {
	return s.contests, nil
}

func (s *fakeStore) ApplyScorecardPlan(_ context.Context, eventID, roundID uuid.UUID, plan scoring.Plan) error {
	if hook := s.beforeApply; hook != nil {
		s.beforeApply = nil
		hook()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyCalls++
	if s.applyErr != nil {
		return s.applyErr
	}
	for _, u := range plan.Updates {
		found := false
		for i := range s.rows {
			if s.rows[i].ID == u.ID && s.rows[i].Version == u.ExpectedVersion {
				s.rows[i].Strokes = u.Strokes
				s.rows[i].Version++
				found = true
			}
		}
		if !found {
			return repository.ErrStaleWrite
		}
	}
	for _, in := range plan.Inserts {
		row := models.Scorecard{EventID: eventID, RoundID: roundID, PlayerID: in.PlayerID, HoleNumber: in.Hole, Strokes: in.Strokes, Version: 1}
		row.ID = uuid.New()
		s.rows = append(s.rows, row)
	}
	return nil
}

// put stores a row directly, as another client would.
func (s *fakeStore) put(player uuid.UUID, hole, strokes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].PlayerID == player && s.rows[i].HoleNumber == hole {
			s.rows[i].Strokes = strokes
			s.rows[i].Version++
			return
		}
	}
	row := models.Scorecard{EventID: s.eventID, RoundID: s.round().ID, PlayerID: player, HoleNumber: hole, Strokes: strokes, Version: 1}
	row.ID = uuid.New()
	s.rows = append(s.rows, row)
}

func (s *fakeStore) strokes(player uuid.UUID, hole int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.PlayerID == player && r.HoleNumber == hole {
			return r.Strokes
		}
	}
	return 0
}

type recorded struct {
	outcome                     string
	inserted, updated, conflict int
}

type fakeRecorder struct{ saves []recorded }

func (r *fakeRecorder) ObserveSave(outcome string, inserted, updated, conflicts int) {
	r.saves = append(r.saves, recorded{outcome, inserted, updated, conflicts})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(2, true)
	a := store.players[0].ID
	store.put(a, 1, 5)
	store.put(a, 2, 3)

	m, err := New(store).Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)

	require.Len(t, m.Rows, 2)
	require.Len(t, m.Rows[0].Cells, 18)
	assert.Equal(t, 5, m.Rows[0].Cells[0].Strokes)
	assert.Equal(t, 1, m.Rows[0].Cells[0].Version)
	assert.Equal(t, 8, m.Rows[0].TotalStrokes)
	assert.Equal(t, 72, m.Rows[0].TotalPar)
	require.NotNil(t, m.Rows[0].Differential)
	assert.Equal(t, -64, *m.Rows[0].Differential)
	assert.Equal(t, 0, m.Rows[1].TotalStrokes)
}

func TestLoadUnknownRound(t *testing.T) {
	store := newFakeStore(1, true)
	_, err := New(store).Load(context.Background(), store.eventID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLoadWithoutParData(t *testing.T) {
	store := newFakeStore(1, false)
	m, err := New(store).Load(context.Background(), store.eventID, store.round().ID)
	require.NoError(t, err)

	assert.False(t, m.Template.HasPar)
	assert.Len(t, m.Template.Holes, 18)
	assert.Nil(t, m.Rows[0].Differential)
	assert.Equal(t, 0, m.Rows[0].TotalPar)
}

func TestSaveUnchangedWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(2, true)
	store.put(store.players[0].ID, 1, 4)
	rec := &fakeRecorder{}
	svc := New(store, WithRecorder(rec))

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	res, err := svc.Save(ctx, store.eventID, store.round().ID, m)
	require.NoError(t, err)

	assert.Equal(t, SaveResult{}, res)
	assert.Zero(t, store.applyCalls)
	assert.Equal(t, []recorded{{outcome: OutcomeNoop}}, rec.saves)
}

func TestSaveInsertsAndUpdates(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(2, true)
	a, b := store.players[0].ID, store.players[1].ID
	store.put(a, 1, 4)
	rec := &fakeRecorder{}
	svc := New(store, WithRecorder(rec))

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Apply(
		scoring.Op{Kind: scoring.OpIncrement, PlayerID: a, Hole: 1},
		scoring.Op{Kind: scoring.OpSet, PlayerID: b, Hole: 3, Strokes: 6},
		scoring.Op{Kind: scoring.OpSet, PlayerID: b, Hole: 4, Strokes: 0},
	))

	res, err := svc.Save(ctx, store.eventID, store.round().ID, m)
	require.NoError(t, err)

	assert.Equal(t, SaveResult{Inserted: 1, Updated: 1}, res)
	assert.Equal(t, 5, store.strokes(a, 1))
	assert.Equal(t, 6, store.strokes(b, 3))
	// Zero on a hole that was never saved stays absent.
	assert.Len(t, store.rows, 2)
	assert.Equal(t, []recorded{{outcome: OutcomeSaved, inserted: 1, updated: 1}}, rec.saves)

	reloaded, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	assert.Equal(t, m.Rows[0].TotalStrokes, reloaded.Rows[0].TotalStrokes)
	assert.Equal(t, m.Rows[1].TotalStrokes, reloaded.Rows[1].TotalStrokes)
}

func TestSaveClearedHoleWritesZero(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	a := store.players[0].ID
	store.put(a, 7, 6)
	svc := New(store)

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Set(a, 7, 0))

	res, err := svc.Save(ctx, store.eventID, store.round().ID, m)
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Updated: 1}, res)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, 0, store.strokes(a, 7))
}

func TestSaveDoesNotModifyMatrix(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	a := store.players[0].ID
	svc := New(store)

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Set(a, 1, 4))
	before := m.Clone()

	_, err = svc.Save(ctx, store.eventID, store.round().ID, m)
	require.NoError(t, err)
	assert.Equal(t, before, m)
}

func TestSaveTwoSessionsConflict(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	p := store.players[0].ID
	store.put(p, 3, 3)
	svc := New(store)
	round := store.round().ID

	sessionA, err := svc.Load(ctx, store.eventID, round)
	require.NoError(t, err)
	sessionB, err := svc.Load(ctx, store.eventID, round)
	require.NoError(t, err)

	require.NoError(t, sessionA.Set(p, 3, 4))
	_, err = svc.Save(ctx, store.eventID, round, sessionA)
	require.NoError(t, err)

	require.NoError(t, sessionB.Set(p, 3, 5))
	_, err = svc.Save(ctx, store.eventID, round, sessionB)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []scoring.Conflict{{PlayerID: p, Hole: 3, Theirs: 4, Yours: 5}}, conflict.Conflicts)
	assert.Equal(t, 4, store.strokes(p, 3))

	// After reloading, B's edit goes through.
	sessionB, err = svc.Load(ctx, store.eventID, round)
	require.NoError(t, err)
	require.NoError(t, sessionB.Set(p, 3, 5))
	_, err = svc.Save(ctx, store.eventID, round, sessionB)
	require.NoError(t, err)
	assert.Equal(t, 5, store.strokes(p, 3))
}

func TestSaveDisjointEditsBothLand(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(2, true)
	p, q := store.players[0].ID, store.players[1].ID
	svc := New(store)
	round := store.round().ID

	sessionA, err := svc.Load(ctx, store.eventID, round)
	require.NoError(t, err)
	sessionB, err := svc.Load(ctx, store.eventID, round)
	require.NoError(t, err)

	require.NoError(t, sessionA.Set(p, 1, 4))
	_, err = svc.Save(ctx, store.eventID, round, sessionA)
	require.NoError(t, err)

	// B never touched (p, 1); A's write there must not block B's own edit.
	require.NoError(t, sessionB.Set(q, 1, 5))
	res, err := svc.Save(ctx, store.eventID, round, sessionB)
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Inserted: 1}, res)
	assert.Equal(t, 4, store.strokes(p, 1))
	assert.Equal(t, 5, store.strokes(q, 1))
}

func TestSaveRejectsRepeatedRowsAndHoles(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	svc := New(store)
	p := store.players[0].ID

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Set(p, 1, 4))

	twice := m.Clone()
	twice.Rows = append(twice.Rows, m.Clone().Rows[0])
	_, err = svc.Save(ctx, store.eventID, store.round().ID, twice)
	assert.ErrorIs(t, err, scoring.ErrDuplicateCell)
	assert.True(t, IsInvalid(err))

	sameHole := m.Clone()
	sameHole.Rows[0].Cells[1] = sameHole.Rows[0].Cells[0]
	_, err = svc.Save(ctx, store.eventID, store.round().ID, sameHole)
	assert.ErrorIs(t, err, scoring.ErrDuplicateCell)

	assert.Zero(t, store.applyCalls)
}

func TestSaveLostVersionGuardIsConflict(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	p := store.players[0].ID
	store.put(p, 1, 3)
	svc := New(store)

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Set(p, 1, 4))
	// Someone writes after reconcile read the rows but before the update lands.
	store.beforeApply = func() { store.put(p, 1, 6) }

	_, err = svc.Save(ctx, store.eventID, store.round().ID, m)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, repository.ErrStaleWrite)
	assert.Equal(t, 6, store.strokes(p, 1))
}

func TestSaveFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	p := store.players[0].ID
	store.applyErr = errors.New("connection reset")
	rec := &fakeRecorder{}
	svc := New(store, WithRecorder(rec))

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)
	require.NoError(t, m.Set(p, 1, 4))

	_, err = svc.Save(ctx, store.eventID, store.round().ID, m)
	assert.ErrorIs(t, err, ErrSaveFailed)
	assert.Equal(t, 4, m.Rows[0].Cells[0].Strokes, "edits stay in memory for a retry")
	assert.Equal(t, []recorded{{outcome: OutcomeError}}, rec.saves)
}

func TestSaveRejectsForeignCells(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	svc := New(store)

	m, err := svc.Load(ctx, store.eventID, store.round().ID)
	require.NoError(t, err)

	stranger := m.Clone()
	stranger.Rows[0].Player.ID = uuid.New()
	_, err = svc.Save(ctx, store.eventID, store.round().ID, stranger)
	assert.ErrorIs(t, err, scoring.ErrUnknownPlayer)

	offCourse := m.Clone()
	offCourse.Rows[0].Cells[0].Hole = 19
	offCourse.Rows[0].Cells[0].Strokes = 4
	_, err = svc.Save(ctx, store.eventID, store.round().ID, offCourse)
	assert.ErrorIs(t, err, scoring.ErrUnknownHole)

	tooMany := m.Clone()
	tooMany.Rows[0].Cells[0].Strokes = 16
	_, err = svc.Save(ctx, store.eventID, store.round().ID, tooMany)
	assert.ErrorIs(t, err, scoring.ErrStrokesOutOfRange)

	assert.Zero(t, store.applyCalls)
}

func TestPatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	p := store.players[0].ID
	store.put(p, 2, 4)
	svc := New(store)

	m, res, err := svc.Patch(ctx, store.eventID, store.round().ID, []scoring.Op{
		{Kind: scoring.OpIncrement, PlayerID: p, Hole: 2},
		{Kind: scoring.OpSet, PlayerID: p, Hole: 1, Strokes: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, SaveResult{Inserted: 1, Updated: 1}, res)
	assert.Equal(t, 8, m.Rows[0].TotalStrokes)
	assert.Equal(t, 2, m.Rows[0].Cells[1].Version)
	assert.Equal(t, 5, store.strokes(p, 2))
}

func TestPatchReplaysAfterLostRace(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1, true)
	p := store.players[0].ID
	store.put(p, 2, 4)
	store.beforeApply = func() { store.put(p, 2, 6) }
	svc := New(store)

	m, _, err := svc.Patch(ctx, store.eventID, store.round().ID, []scoring.Op{
		{Kind: scoring.OpIncrement, PlayerID: p, Hole: 2},
	})
	require.NoError(t, err)

	// The increment lands on top of the other session's 6.
	assert.Equal(t, 7, store.strokes(p, 2))
	assert.Equal(t, 7, m.Rows[0].Cells[1].Strokes)
}

func TestPatchRejectsBadOp(t *testing.T) {
	store := newFakeStore(1, true)
	_, _, err := New(store).Patch(context.Background(), store.eventID, store.round().ID, []scoring.Op{
		{Kind: scoring.OpSet, PlayerID: store.players[0].ID, Hole: 1, Strokes: 20},
	})
	assert.ErrorIs(t, err, scoring.ErrStrokesOutOfRange)
	assert.Zero(t, store.applyCalls)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(3, true)
	a, b := store.players[0].ID, store.players[1].ID
	for hole := 1; hole <= 18; hole++ {
		store.put(a, hole, 5)
		store.put(b, hole, 4)
	}
	contest := models.SkillsContest{EventID: store.eventID, RoundID: store.round().ID, HoleNumber: 4, ContestType: models.ContestLongestDrive, WinnerPlayerID: &b}
	contest.ID = uuid.New()
	store.contests = []models.SkillsContest{contest}

	lb, err := New(store).Leaderboard(ctx, store.eventID)
	require.NoError(t, err)

	require.Len(t, lb.Rounds, 1)
	round := lb.Rounds[0]
	assert.True(t, round.HasPar)
	assert.Equal(t, 72, round.TotalPar)
	require.Len(t, round.Standings, 3)
	assert.Equal(t, b, round.Standings[0].Player.ID)
	assert.Equal(t, "E", round.Standings[0].ToPar)
	assert.Equal(t, a, round.Standings[1].Player.ID)
	assert.Equal(t, "+18", round.Standings[1].ToPar)
	assert.Equal(t, 0, round.Standings[2].Position)

	require.Len(t, round.Contests, 1)
	require.NotNil(t, round.Contests[0].WinnerName)
	assert.Equal(t, "B", *round.Contests[0].WinnerName)
}

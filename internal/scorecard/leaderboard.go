package scorecard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/scoring"
	"golang.org/x/sync/errgroup"
)

// ContestResult is a skills contest as shown next to a round's standings.
type ContestResult struct {
	ID             uuid.UUID          `json:"id"`
	Hole           int                `json:"hole"`
	Type           models.ContestType `json:"type"`
	WinnerPlayerID *uuid.UUID         `json:"winner_player_id"`
	WinnerName     *string            `json:"winner_name"`
}

// RoundLeaderboard is a round's standings plus its schedule and contests.
type RoundLeaderboard struct {
	scoring.RoundBoard
	RoundDate   *time.Time         `json:"round_date"`
	TeeTime     *string            `json:"tee_time"`
	ScoringType models.ScoringType `json:"scoring_type"`
	Contests    []ContestResult    `json:"contests"`
}

// Leaderboard is every round of an event, in schedule order.
type Leaderboard struct {
	EventID uuid.UUID          `json:"event_id"`
	Rounds  []RoundLeaderboard `json:"rounds"`
}

// Leaderboard loads all scores of an event and ranks each round.
func (s *Service) Leaderboard(ctx context.Context, eventID uuid.UUID) (Leaderboard, error) {
	var (
		rounds   []models.EventRound
		players  []models.EventPlayer
		entries  []models.Scorecard
		contests []models.SkillsContest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { rounds, err = s.store.Rounds(gctx, eventID); return })
	g.Go(func() (err error) { players, err = s.store.ActivePlayers(gctx, eventID); return })
	g.Go(func() (err error) { entries, err = s.store.EventEntries(gctx, eventID); return })
	g.Go(func() (err error) { contests, err = s.store.SkillsContests(gctx, eventID); return })
	if err := g.Wait(); err != nil {
		return Leaderboard{}, err
	}

	templates, err := s.templates(ctx, rounds)
	if err != nil {
		return Leaderboard{}, err
	}

	inputs := make([]scoring.RoundInput, len(rounds))
	for i, r := range rounds {
		inputs[i] = scoring.RoundInput{RoundID: r.ID, CourseName: r.CourseName, Template: templates[i]}
	}
	boards := scoring.BuildLeaderboard(inputs, toPlayers(players), toEntries(entries))

	names := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	byRound := make(map[uuid.UUID][]ContestResult)
	for _, c := range contests {
		res := ContestResult{ID: c.ID, Hole: c.HoleNumber, Type: c.ContestType, WinnerPlayerID: c.WinnerPlayerID}
		if c.WinnerPlayerID != nil {
			if name, ok := names[*c.WinnerPlayerID]; ok {
				res.WinnerName = &name
			}
		}
		byRound[c.RoundID] = append(byRound[c.RoundID], res)
	}

	lb := Leaderboard{EventID: eventID, Rounds: make([]RoundLeaderboard, len(boards))}
	for i, b := range boards {
		contests := byRound[b.RoundID]
		if contests == nil {
			contests = []ContestResult{}
		}
		lb.Rounds[i] = RoundLeaderboard{
			RoundBoard:  b,
			RoundDate:   rounds[i].RoundDate,
			TeeTime:     rounds[i].TeeTime,
			ScoringType: rounds[i].ScoringType,
			Contests:    contests,
		}
	}
	return lb, nil
}

// templates builds one template per round, reading each course's holes once.
func (s *Service) templates(ctx context.Context, rounds []models.EventRound) ([]scoring.Template, error) {
	var mu sync.Mutex
	byCourse := make(map[string][]scoring.Hole)
	g, gctx := errgroup.WithContext(ctx)
	seen := make(map[string]bool)
	for _, r := range rounds {
		if seen[r.CourseName] {
			continue
		}
		seen[r.CourseName] = true
		name := r.CourseName
		g.Go(func() error {
			rows, err := s.store.CourseHoles(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			byCourse[name] = toHoles(rows)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]scoring.Template, len(rounds))
	for i, r := range rounds {
		out[i] = scoring.NewTemplate(byCourse[r.CourseName], r.Holes)
	}
	return out, nil
}

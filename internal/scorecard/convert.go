package scorecard

import (
	"github.com/trentd187/golf-trips/internal/models"
	"github.com/trentd187/golf-trips/internal/scoring"
)

func toHoles(rows []models.CourseHole) []scoring.Hole {
	holes := make([]scoring.Hole, len(rows))
	for i, r := range rows {
		holes[i] = scoring.Hole{Number: r.HoleNumber, Par: r.Par, Yardage: r.Yardage, Handicap: r.Handicap}
	}
	return holes
}

func toPlayers(rows []models.EventPlayer) []scoring.Player {
	players := make([]scoring.Player, len(rows))
	for i, r := range rows {
		players[i] = scoring.Player{ID: r.ID, Name: r.Name, Handicap: r.Handicap}
	}
	return players
}

func toEntries(rows []models.Scorecard) []scoring.Entry {
	entries := make([]scoring.Entry, len(rows))
	for i, r := range rows {
		entries[i] = scoring.Entry{
			ID:       r.ID,
			RoundID:  r.RoundID,
			PlayerID: r.PlayerID,
			Hole:     r.HoleNumber,
			Strokes:  r.Strokes,
			Version:  r.Version,
		}
	}
	return entries
}

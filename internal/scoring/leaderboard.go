package scoring

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Band is the colour class of one hole score relative to par.
type Band string

const (
	BandNone        Band = ""
	BandEagle       Band = "eagle_or_better"
	BandBirdie      Band = "birdie"
	BandPar         Band = "par"
	BandBogey       Band = "bogey"
	BandDoubleBogey Band = "double_bogey"
	BandWorse       Band = "worse"
)

// Classify puts a hole score in its band. Unplayed holes and holes without a
// par have no band.
func Classify(strokes int, par *int) Band {
	if strokes <= 0 || par == nil {
		return BandNone
	}
	switch diff := strokes - *par; {
	case diff <= -2:
		return BandEagle
	case diff == -1:
		return BandBirdie
	case diff == 0:
		return BandPar
	case diff == 1:
		return BandBogey
	case diff == 2:
		return BandDoubleBogey
	default:
		return BandWorse
	}
}

// FormatDifferential renders a score to par the way a leaderboard prints it:
// "E" for even, "+3" over, "-4" under. No par data renders as "".
func FormatDifferential(d *int) string {
	switch {
	case d == nil:
		return ""
	case *d == 0:
		return "E"
	case *d > 0:
		return "+" + strconv.Itoa(*d)
	default:
		return strconv.Itoa(*d)
	}
}

// HoleScore is one hole on a leaderboard line.
type HoleScore struct {
	Hole    int  `json:"hole"`
	Par     *int `json:"par"`
	Strokes int  `json:"strokes"`
	Band    Band `json:"band"`
}

// Standing is one player's line on a round leaderboard.
type Standing struct {
	Position     int         `json:"position"`
	Player       Player      `json:"player"`
	Holes        []HoleScore `json:"holes"`
	TotalStrokes int         `json:"total_strokes"`
	TotalPar     int         `json:"total_par"`
	Differential *int        `json:"differential"`
	ToPar        string      `json:"to_par"`
	HolesPlayed  int         `json:"holes_played"`
}

// RoundInput identifies a round and the template its scores are read against.
type RoundInput struct {
	RoundID    uuid.UUID
	CourseName string
	Template   Template
}

// RoundBoard is the leaderboard for one round.
type RoundBoard struct {
	RoundID    uuid.UUID  `json:"round_id"`
	CourseName string     `json:"course_name"`
	HasPar     bool       `json:"has_par"`
	TotalPar   int        `json:"total_par"`
	Standings  []Standing `json:"standings"`
}

// BuildLeaderboard aggregates every round independently.
//
// Standings are ordered by ascending total strokes. Players who have not
// played a hole go after everyone who has. Ties keep the order of players and
// share a position; there is no tie-break.
func BuildLeaderboard(rounds []RoundInput, players []Player, entries []Entry) []RoundBoard {
	byRound := make(map[uuid.UUID][]Entry)
	for _, e := range entries {
		byRound[e.RoundID] = append(byRound[e.RoundID], e)
	}

	boards := make([]RoundBoard, 0, len(rounds))
	for _, r := range rounds {
		m := BuildMatrix(uuid.Nil, r.RoundID, r.Template, players, byRound[r.RoundID])

		standings := make([]Standing, 0, len(m.Rows))
		for _, row := range m.Rows {
			holes := make([]HoleScore, len(row.Cells))
			for i, c := range row.Cells {
				par := r.Template.Holes[i].Par
				band := BandNone
				if r.Template.HasPar {
					band = Classify(c.Strokes, par)
				}
				holes[i] = HoleScore{Hole: c.Hole, Par: par, Strokes: c.Strokes, Band: band}
			}
			standings = append(standings, Standing{
				Player:       row.Player,
				Holes:        holes,
				TotalStrokes: row.TotalStrokes,
				TotalPar:     row.TotalPar,
				Differential: row.Differential,
				ToPar:        FormatDifferential(row.Differential),
				HolesPlayed:  row.HolesPlayed,
			})
		}

		sort.SliceStable(standings, func(i, j int) bool {
			a, b := standings[i], standings[j]
			if (a.HolesPlayed == 0) != (b.HolesPlayed == 0) {
				return b.HolesPlayed == 0
			}
			return a.TotalStrokes < b.TotalStrokes
		})
		assignPositions(standings)

		boards = append(boards, RoundBoard{
			RoundID:    r.RoundID,
			CourseName: r.CourseName,
			HasPar:     r.Template.HasPar,
			TotalPar:   r.Template.TotalPar(),
			Standings:  standings,
		})
	}
	return boards
}

// assignPositions numbers sorted standings, giving equal totals the same
// position. Players with nothing played get position 0.
func assignPositions(standings []Standing) {
	for i := range standings {
		s := &standings[i]
		switch {
		case s.HolesPlayed == 0:
			s.Position = 0
		case i > 0 && standings[i-1].HolesPlayed > 0 && standings[i-1].TotalStrokes == s.TotalStrokes:
			s.Position = standings[i-1].Position
		default:
			s.Position = i + 1
		}
	}
}

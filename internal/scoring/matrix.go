package scoring

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Stroke bounds accepted by the editor. Zero means "no score entered".
const (
	MinStrokes = 0
	MaxStrokes = 15
)

var (
	ErrUnknownPlayer     = errors.New("player is not on this scorecard")
	ErrUnknownHole       = errors.New("hole is not on this scorecard")
	ErrStrokesOutOfRange = fmt.Errorf("strokes must be between %d and %d", MinStrokes, MaxStrokes)
	ErrDuplicateCell     = errors.New("scorecard repeats a player or hole")
)

// Player is the slice of an event player the scorecard needs.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Handicap *float64  `json:"handicap"`
}

// Entry is one persisted scorecard row: strokes for (round, player, hole).
// Version is bumped on every update and is what Reconcile compares against.
type Entry struct {
	ID       uuid.UUID
	RoundID  uuid.UUID
	PlayerID uuid.UUID
	Hole     int
	Strokes  int
	Version  int
}

// Cell is one hole on a player's row.
// EntryID and Version describe the persisted row this cell was loaded from;
// a nil EntryID with Version 0 means nothing was persisted at load time.
// Loaded is the stroke count at load time; a cell whose Strokes still equal
// Loaded was not edited in this session.
type Cell struct {
	Hole    int        `json:"hole"`
	Strokes int        `json:"strokes"`
	Loaded  int        `json:"loaded"`
	EntryID *uuid.UUID `json:"entry_id"`
	Version int        `json:"version"`
}

// Row is one player's scorecard for a round.
type Row struct {
	Player       Player `json:"player"`
	Cells        []Cell `json:"cells"`
	TotalStrokes int    `json:"total_strokes"`
	TotalPar     int    `json:"total_par"`
	Differential *int   `json:"differential"`
	HolesPlayed  int    `json:"holes_played"`
}

// Matrix is the full scorecard of a round: one row per active player.
type Matrix struct {
	EventID  uuid.UUID `json:"event_id"`
	RoundID  uuid.UUID `json:"round_id"`
	Template Template  `json:"template"`
	Rows     []Row     `json:"rows"`
}

// BuildMatrix left-joins the persisted entries onto the hole template for
// every player. Holes without an entry get 0 strokes. Entries for players or
// holes that are not part of the scorecard are ignored.
func BuildMatrix(eventID, roundID uuid.UUID, tmpl Template, players []Player, entries []Entry) Matrix {
	type key struct {
		player uuid.UUID
		hole   int
	}
	byKey := make(map[key]Entry, len(entries))
	for _, e := range entries {
		byKey[key{e.PlayerID, e.Hole}] = e
	}

	rows := make([]Row, 0, len(players))
	for _, p := range players {
		cells := make([]Cell, len(tmpl.Holes))
		for i, h := range tmpl.Holes {
			cells[i] = Cell{Hole: h.Number}
			if e, ok := byKey[key{p.ID, h.Number}]; ok {
				id := e.ID
				cells[i].Strokes = e.Strokes
				cells[i].Loaded = e.Strokes
				cells[i].EntryID = &id
				cells[i].Version = e.Version
			}
		}
		row := Row{Player: p, Cells: cells}
		row.recompute(tmpl)
		rows = append(rows, row)
	}

	return Matrix{EventID: eventID, RoundID: roundID, Template: tmpl, Rows: rows}
}

// recompute refreshes the derived totals from the cells.
func (r *Row) recompute(tmpl Template) {
	r.TotalStrokes = 0
	r.HolesPlayed = 0
	for _, c := range r.Cells {
		r.TotalStrokes += c.Strokes
		if c.Strokes > 0 {
			r.HolesPlayed++
		}
	}
	r.TotalPar = tmpl.TotalPar()
	r.Differential = nil
	if tmpl.HasPar {
		d := r.TotalStrokes - r.TotalPar
		r.Differential = &d
	}
}

// Row returns the row for a player.
func (m *Matrix) Row(playerID uuid.UUID) (*Row, error) {
	for i := range m.Rows {
		if m.Rows[i].Player.ID == playerID {
			return &m.Rows[i], nil
		}
	}
	return nil, ErrUnknownPlayer
}

func (m *Matrix) cell(playerID uuid.UUID, hole int) (*Row, *Cell, error) {
	row, err := m.Row(playerID)
	if err != nil {
		return nil, nil, err
	}
	for i := range row.Cells {
		if row.Cells[i].Hole == hole {
			return row, &row.Cells[i], nil
		}
	}
	return nil, nil, ErrUnknownHole
}

// Increment adds one stroke, stopping at MaxStrokes.
func (m *Matrix) Increment(playerID uuid.UUID, hole int) error {
	return m.adjust(playerID, hole, 1)
}

// Decrement removes one stroke, stopping at MinStrokes.
func (m *Matrix) Decrement(playerID uuid.UUID, hole int) error {
	return m.adjust(playerID, hole, -1)
}

func (m *Matrix) adjust(playerID uuid.UUID, hole, delta int) error {
	row, c, err := m.cell(playerID, hole)
	if err != nil {
		return err
	}
	c.Strokes = clamp(c.Strokes + delta)
	row.recompute(m.Template)
	return nil
}

// Set writes an explicit stroke count. Zero clears the hole.
func (m *Matrix) Set(playerID uuid.UUID, hole, strokes int) error {
	if strokes < MinStrokes || strokes > MaxStrokes {
		return ErrStrokesOutOfRange
	}
	row, c, err := m.cell(playerID, hole)
	if err != nil {
		return err
	}
	c.Strokes = strokes
	row.recompute(m.Template)
	return nil
}

// Clone returns a deep copy so edits on the copy leave m untouched.
func (m Matrix) Clone() Matrix {
	out := m
	out.Template.Holes = append([]Hole(nil), m.Template.Holes...)
	out.Rows = make([]Row, len(m.Rows))
	for i, r := range m.Rows {
		r.Cells = append([]Cell(nil), r.Cells...)
		if r.Differential != nil {
			d := *r.Differential
			r.Differential = &d
		}
		out.Rows[i] = r
	}
	return out
}

func clamp(strokes int) int {
	switch {
	case strokes < MinStrokes:
		return MinStrokes
	case strokes > MaxStrokes:
		return MaxStrokes
	default:
		return strokes
	}
}

package scoring

import "github.com/google/uuid"

// Update rewrites the strokes of an existing entry. The write only lands if the
// row still has ExpectedVersion.
type Update struct {
	ID              uuid.UUID
	PlayerID        uuid.UUID
	Hole            int
	Strokes         int
	ExpectedVersion int
}

// Insert creates an entry for a hole that had none.
type Insert struct {
	PlayerID uuid.UUID
	Hole     int
	Strokes  int
}

// Conflict is a cell whose persisted row changed after the matrix was loaded.
type Conflict struct {
	PlayerID uuid.UUID `json:"player_id"`
	Hole     int       `json:"hole"`
	Theirs   int       `json:"theirs"`
	Yours    int       `json:"yours"`
}

// Plan is the set of writes needed to persist a matrix.
type Plan struct {
	Updates   []Update
	Inserts   []Insert
	Conflicts []Conflict
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Inserts) == 0
}

// Reconcile diffs the in-memory matrix against what is persisted now.
//
// Only cells edited in this session are considered; a cell whose strokes
// still equal the value it was loaded with is left alone, whatever another
// session has written there since. For each edited (player, hole):
//   - persisted with the same strokes: nothing to do
//   - persisted, version moved since load: conflict
//   - persisted, same version as loaded: update
//   - not persisted and strokes > 0: insert
//
// A cleared hole that was persisted is updated to 0, never deleted.
func Reconcile(m Matrix, persisted []Entry) Plan {
	type key struct {
		player uuid.UUID
		hole   int
	}
	// Index what is stored now by (player, hole).
	current := make(map[key]Entry, len(persisted))
	for _, e := range persisted {
		current[key{e.PlayerID, e.Hole}] = e
	}

	var plan Plan
	for _, row := range m.Rows {
		for _, c := range row.Cells {
			// Untouched in this session: someone else's writes stay as they are.
			if c.Strokes == c.Loaded {
				continue
			}
			e, ok := current[key{row.Player.ID, c.Hole}]
			switch {
			case ok && e.Strokes == c.Strokes:
				// Both sessions arrived at the same value.
				continue
			case ok && e.Version != c.Version:
				// The row was written (or first created) after this matrix was loaded.
				plan.Conflicts = append(plan.Conflicts, Conflict{
					PlayerID: row.Player.ID,
					Hole:     c.Hole,
					Theirs:   e.Strokes,
					Yours:    c.Strokes,
				})
			case ok:
				plan.Updates = append(plan.Updates, Update{
					ID:              e.ID,
					PlayerID:        row.Player.ID,
					Hole:            c.Hole,
					Strokes:         c.Strokes,
					ExpectedVersion: e.Version,
				})
			case c.Strokes > 0:
				plan.Inserts = append(plan.Inserts, Insert{
					PlayerID: row.Player.ID,
					Hole:     c.Hole,
					Strokes:  c.Strokes,
				})
			}
		}
	}
	return plan
}

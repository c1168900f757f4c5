// Package scoring holds the scorecard arithmetic for a golf trip: the per-course
// hole template, the per-player stroke matrix, in-memory score edits, the diff
// that turns an edited matrix into database writes, and the leaderboard view.
//
// Nothing in this package touches the database. The scorecard service loads
// rows, hands them to these functions, and writes back whatever Reconcile plans.
package scoring

import "sort"

// DefaultHoleCount is used when a round does not say how many holes it has.
const DefaultHoleCount = 18

// Hole is one hole of the course a round is played on.
// Par, Yardage and Handicap are pointers because a course may have no hole
// data at all, in which case the template is made of placeholders.
type Hole struct {
	Number   int  `json:"number"`
	Par      *int `json:"par"`
	Yardage  *int `json:"yardage"`
	Handicap *int `json:"handicap"`
}

// Template is the ordered list of holes for a round.
//
// HasPar is false when the course had no hole rows (placeholders were
// generated) or when any hole is missing its par. Every total, differential
// and colour band must check it before using par values.
type Template struct {
	Holes  []Hole `json:"holes"`
	HasPar bool   `json:"has_par"`
}

// NewTemplate sorts the given course holes by number. When the course has no
// holes on record it returns holeCount placeholder holes with no par.
func NewTemplate(holes []Hole, holeCount int) Template {
	if len(holes) == 0 {
		if holeCount <= 0 {
			holeCount = DefaultHoleCount
		}
		placeholders := make([]Hole, holeCount)
		for i := range placeholders {
			placeholders[i] = Hole{Number: i + 1}
		}
		return Template{Holes: placeholders, HasPar: false}
	}

	sorted := make([]Hole, len(holes))
	copy(sorted, holes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	hasPar := true
	for _, h := range sorted {
		if h.Par == nil {
			hasPar = false
			break
		}
	}
	return Template{Holes: sorted, HasPar: hasPar}
}

// TotalPar sums the par of every hole, or returns 0 without par data.
func (t Template) TotalPar() int {
	if !t.HasPar {
		return 0
	}
	total := 0
	for _, h := range t.Holes {
		total += *h.Par
	}
	return total
}

// hole returns the template hole with the given number.
func (t Template) hole(number int) (Hole, bool) {
	for _, h := range t.Holes {
		if h.Number == number {
			return h, true
		}
	}
	return Hole{}, false
}

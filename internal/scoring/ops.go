package scoring

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrUnknownOp = errors.New("unknown op")

// OpKind names one kind of score edit.
type OpKind string

const (
	OpIncrement OpKind = "increment"
	OpDecrement OpKind = "decrement"
	OpSet       OpKind = "set"
)

// Op is a single typed score edit. Strokes is only read for OpSet.
type Op struct {
	Kind     OpKind    `json:"op"`
	PlayerID uuid.UUID `json:"player_id"`
	Hole     int       `json:"hole"`
	Strokes  int       `json:"strokes,omitempty"`
}

// Apply runs ops in order and stops at the first one that fails.
// Ops before the failing one stay applied.
func (m *Matrix) Apply(ops ...Op) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case OpIncrement:
			err = m.Increment(op.PlayerID, op.Hole)
		case OpDecrement:
			err = m.Decrement(op.PlayerID, op.Hole)
		case OpSet:
			err = m.Set(op.PlayerID, op.Hole, op.Strokes)
		default:
			err = fmt.Errorf("%w %q", ErrUnknownOp, op.Kind)
		}
		if err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

// Package state implements the validated state-mutation engine: AI-proposed
// edits to the game's documents are parsed, checked against the closed
// schema, clamped into per-field bounds, and applied with mode-dependent
// semantics. Nothing mutates a document without passing through Validate
// and Apply.
package state

// Mode selects the mutation semantics for a batch of edits.
type Mode int

const (
	// ModeTurn treats numeric values as deltas and list values as single
	// items to append. Bounds are tight per-turn limits.
	ModeTurn Mode = iota
	// ModeTimeskip treats numeric values as absolute replacements and
	// permits whole-sequence replacement. Bounds are wide absolute ranges.
	ModeTimeskip
)

func (m Mode) String() string {
	switch m {
	case ModeTurn:
		return "turn"
	case ModeTimeskip:
		return "timeskip"
	default:
		return "unknown"
	}
}

package state

import "strings"

// Range is an inclusive numeric interval.
type Range struct {
	Min, Max float64
}

func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// BoundsEntry maps a field-name substring to the permitted ranges per mode.
// Turn ranges bound incremental deltas; Timeskip ranges bound absolute
// replacement values.
type BoundsEntry struct {
	Match    string
	Turn     Range
	Timeskip Range
}

func (b BoundsEntry) rangeFor(mode Mode) Range {
	if mode == ModeTimeskip {
		return b.Timeskip
	}
	return b.Turn
}

// boundsTable is matched against the final path segment's key,
// first match wins. Population additionally keeps the resulting value at or
// above the minimum viable population in Turn mode (see validate.go).
var boundsTable = []BoundsEntry{
	{Match: "population", Turn: Range{-1000, 1000}, Timeskip: Range{10, 100000}},
	{Match: "food", Turn: Range{-2000, 2000}, Timeskip: Range{-5000, 20000}},
	{Match: "wealth", Turn: Range{-5000, 5000}, Timeskip: Range{-10000, 50000}},
	{Match: "age", Turn: Range{0, 2}, Timeskip: Range{0, 100}},
}

// minViablePopulation is the floor the population can never drop below.
const minViablePopulation = 10

// yearAdvance is the forced value for "...meta.year" edits per mode: the
// year counter advances by exactly one per turn, and a timeskip always
// jumps five hundred years.
func yearAdvance(mode Mode) int {
	if mode == ModeTimeskip {
		return 500
	}
	return 1
}

func lookupBounds(key string) (BoundsEntry, bool) {
	for _, entry := range boundsTable {
		if strings.Contains(key, entry.Match) {
			return entry, true
		}
	}
	return BoundsEntry{}, false
}

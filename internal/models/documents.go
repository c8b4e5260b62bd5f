// Package models holds the game's persistent documents and their
// file-backed lifecycle. Each named document is an independent nested tree
// persisted to its own YAML file; together they form the full simulation
// state. Documents are only ever mutated through the state package's
// validate/apply cycle.
package models

// Document is one named nested data tree as decoded by yaml.v3.
type Document = map[string]any

// Root document names the mutation engine accepts as path roots.
const (
	RootCivilization = "civilization"
	RootCulture      = "culture"
	RootReligion     = "religion"
	RootTechnology   = "technology"
	RootWorld        = "world"
)

// Metadata is the per-game bookkeeping document. It is persisted but never
// a valid mutation target for the narrative engine.
type Metadata struct {
	GameID              string `yaml:"game_id"`
	TurnNumber          int    `yaml:"turn_number"`
	ActivePolicy        string `yaml:"active_policy"`
	PopulationHappiness int    `yaml:"population_happiness"`
}

// GameState aggregates every persisted document. It is owned by exactly one
// process and mutated synchronously, one apply cycle at a time.
type GameState struct {
	Civilization      Document
	Culture           Document
	Religion          Document
	Technology        Document
	World             Document
	HistoryLong       Document
	HistoryCompressed Document
	Meta              Metadata

	dir string
}

// Documents returns the mutable root documents keyed by root name. The maps
// are shared with the GameState, not copies; the state applier mutates them
// in place.
func (g *GameState) Documents() map[string]Document {
	return map[string]Document{
		RootCivilization: g.Civilization,
		RootCulture:      g.Culture,
		RootReligion:     g.Religion,
		RootTechnology:   g.Technology,
		RootWorld:        g.World,
	}
}

// Dir returns the directory this game state loads from and saves to.
func (g *GameState) Dir() string { return g.dir }

// Lookup walks nested record keys and reports whether the full chain exists.
func Lookup(doc Document, keys ...string) (any, bool) {
	var cur any = doc
	for _, key := range keys {
		rec, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = rec[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// IntAt returns the integer at the key chain, or zero when absent or not a
// number.
func IntAt(doc Document, keys ...string) int {
	v, ok := Lookup(doc, keys...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// StringAt returns the string at the key chain, or "" when absent.
func StringAt(doc Document, keys ...string) string {
	v, ok := Lookup(doc, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// StringsAt returns the string elements of the sequence at the key chain.
func StringsAt(doc Document, keys ...string) []string {
	v, ok := Lookup(doc, keys...)
	if !ok {
		return nil
	}
	seq, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

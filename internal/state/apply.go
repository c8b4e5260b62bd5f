package state

import (
	"fmt"
	"log/slog"

	"github.com/tatianab/chronicle/internal/models"
)

// Op identifies the terminal operation performed for an applied edit.
type Op int

const (
	OpAppend Op = iota
	OpIndexedSet
	OpReplace
	OpIncrement
)

func (o Op) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpIndexedSet:
		return "indexed-set"
	case OpReplace:
		return "replace"
	case OpIncrement:
		return "increment"
	default:
		return "unknown"
	}
}

// SkipReason classifies a per-edit apply failure. The applier only ever
// sees validated edits, so under the single-writer model none of these
// should fire.
type SkipReason int

const (
	SkipTraversal SkipReason = iota
	SkipIndexOutOfRange
	SkipValueType
)

func (s SkipReason) String() string {
	switch s {
	case SkipTraversal:
		return "traversal error"
	case SkipIndexOutOfRange:
		return "index out of range"
	case SkipValueType:
		return "value type error"
	default:
		return "unknown"
	}
}

// Change records one applied mutation.
type Change struct {
	Path string
	Op   Op
	Old  any
	New  any
}

// Skip records one edit that could not be applied and was passed over.
type Skip struct {
	Path   string
	Reason SkipReason
	Detail string
}

// Prune records a sequence truncated by the post-apply invariant enforcer.
type Prune struct {
	Path    string
	Dropped int
}

// Report is the outcome of an apply cycle.
type Report struct {
	Applied []Change
	Skipped []Skip
	Pruned  []Prune
}

// growthLimits names the tracked sequences the invariant enforcer truncates
// after every apply cycle, keeping only the newest entries.
var growthLimits = []struct {
	root, key string
	max       int
}{
	{models.RootCulture, "values", 15},
	{models.RootCulture, "traditions", 15},
	{models.RootTechnology, "discoveries", 20},
}

// Apply mutates the documents in place with an already-validated edit set.
// A failure on one edit is recorded and skipped; it never aborts the rest
// of the batch. After all edits the growth limits are enforced.
func Apply(docs map[string]models.Document, mode Mode, accepted []Edit) Report {
	var rep Report

	for _, edit := range accepted {
		root, ok := docs[edit.Path.Root]
		if !ok {
			rep.skip(edit, SkipTraversal, fmt.Sprintf("unknown root %q", edit.Path.Root))
			continue
		}
		parent, werr := walk(root, edit.Path.Segments)
		if werr != nil {
			rep.skip(edit, SkipTraversal, werr.detail)
			continue
		}

		switch {
		case edit.Path.Append:
			rep.applyAppend(parent, edit)
		case edit.Path.Target.Indexed:
			rep.applyIndexedSet(parent, edit)
		default:
			rep.applyAssign(parent, edit, mode)
		}
	}

	enforceGrowthLimits(docs, &rep)
	return rep
}

func (r *Report) skip(edit Edit, reason SkipReason, detail string) {
	slog.Warn("skipping edit", "path", edit.Path.Raw, "reason", reason.String(), "detail", detail)
	r.Skipped = append(r.Skipped, Skip{Path: edit.Path.Raw, Reason: reason, Detail: detail})
}

func (r *Report) applied(edit Edit, op Op, old, new any) {
	r.Applied = append(r.Applied, Change{Path: edit.Path.Raw, Op: op, Old: old, New: new})
}

// applyAppend pushes the value onto the target sequence. A string already
// present is a silent no-op; structured records append unconditionally.
func (r *Report) applyAppend(parent map[string]any, edit Edit) {
	target := edit.Path.Target
	seq, ok, detail := resolveSequence(parent, target)
	if !ok {
		r.skip(edit, SkipTraversal, detail)
		return
	}

	switch v := edit.Value.(type) {
	case string:
		if sequenceContains(seq, v) {
			return
		}
	case map[string]any:
		// accepted unconditionally
	default:
		r.skip(edit, SkipValueType, fmt.Sprintf("cannot append %s value", kindOf(edit.Value)))
		return
	}

	grown := append(seq, edit.Value)
	if target.Indexed {
		parent[target.Key].([]any)[target.Index] = grown
	} else {
		parent[target.Key] = grown
	}
	r.applied(edit, OpAppend, nil, edit.Value)
}

func (r *Report) applyIndexedSet(parent map[string]any, edit Edit) {
	target := edit.Path.Target
	seq, ok := parent[target.Key].([]any)
	if !ok {
		r.skip(edit, SkipTraversal, fmt.Sprintf("%q is not a sequence", target.Key))
		return
	}
	if target.Index >= len(seq) {
		r.skip(edit, SkipIndexOutOfRange, fmt.Sprintf("index %d out of range for %q (len %d)", target.Index, target.Key, len(seq)))
		return
	}
	old := seq[target.Index]
	seq[target.Index] = edit.Value
	r.applied(edit, OpIndexedSet, old, edit.Value)
}

// applyAssign is the one place mode changes the operation itself: Turn mode
// adds numeric values onto numeric targets, Timeskip mode always replaces.
func (r *Report) applyAssign(parent map[string]any, edit Edit, mode Mode) {
	key := edit.Path.Target.Key
	old, ok := parent[key]
	if !ok {
		r.skip(edit, SkipTraversal, fmt.Sprintf("key %q vanished between validate and apply", key))
		return
	}

	if mode == ModeTurn && kindOf(old) == KindNumber && kindOf(edit.Value) == KindNumber {
		sum, err := addNumbers(old, edit.Value)
		if err != nil {
			r.skip(edit, SkipValueType, err.Error())
			return
		}
		parent[key] = sum
		r.applied(edit, OpIncrement, old, sum)
		return
	}

	parent[key] = edit.Value
	r.applied(edit, OpReplace, old, edit.Value)
}

func addNumbers(a, b any) (any, error) {
	if isInt(a) && isInt(b) {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		return int(af) + int(bf), nil
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, fmt.Errorf("cannot add %s and %s", kindOf(a), kindOf(b))
	}
	return af + bf, nil
}

// enforceGrowthLimits truncates the tracked sequences to their caps,
// discarding the oldest elements.
func enforceGrowthLimits(docs map[string]models.Document, rep *Report) {
	for _, limit := range growthLimits {
		doc, ok := docs[limit.root]
		if !ok {
			continue
		}
		seq, ok := doc[limit.key].([]any)
		if !ok || len(seq) <= limit.max {
			continue
		}
		dropped := len(seq) - limit.max
		doc[limit.key] = seq[dropped:]
		path := limit.root + "." + limit.key
		slog.Debug("pruned tracked sequence", "path", path, "dropped", dropped)
		rep.Pruned = append(rep.Pruned, Prune{Path: path, Dropped: dropped})
	}
}

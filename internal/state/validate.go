package state

import (
	"fmt"
	"sort"

	"github.com/tatianab/chronicle/internal/models"
)

// maxSequenceLen caps every append-tracked sequence.
const maxSequenceLen = 20

// Reason classifies why an edit was rejected during validation.
type Reason int

const (
	ReasonMalformedPath Reason = iota
	ReasonInvalidRoot
	ReasonPathNotFound
	ReasonKeyCreationForbidden
	ReasonAppendTargetNotSequence
	ReasonDuplicateOrOverflow
	ReasonTypeMismatch
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformedPath:
		return "malformed path"
	case ReasonInvalidRoot:
		return "invalid root key"
	case ReasonPathNotFound:
		return "path not found"
	case ReasonKeyCreationForbidden:
		return "cannot create new key"
	case ReasonAppendTargetNotSequence:
		return "cannot append to non-list"
	case ReasonDuplicateOrOverflow:
		return "duplicate or overflow"
	case ReasonTypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// Edit is a validated (path, value) pair. Values may have been clamped.
type Edit struct {
	Path  Path
	Value any
}

// Rejection records exactly one reason for one rejected edit.
type Rejection struct {
	Path   string
	Reason Reason
	Detail string
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s (%s)", r.Path, r.Detail, r.Reason)
}

// Result is the outcome of validating a batch: the edits safe to apply, in
// deterministic path order, plus one rejection per discarded edit. No edit
// is ever dropped silently.
type Result struct {
	Accepted   []Edit
	Rejections []Rejection
}

// OK reports whether every proposed edit was accepted.
func (r Result) OK() bool { return len(r.Rejections) == 0 }

// AcceptedMap returns the accepted edits keyed by raw path, mirroring the
// shape of the proposed batch.
func (r Result) AcceptedMap() map[string]any {
	out := make(map[string]any, len(r.Accepted))
	for _, e := range r.Accepted {
		out[e.Path.Raw] = e.Value
	}
	return out
}

// Reasons renders every rejection as a human-readable line.
func (r Result) Reasons() []string {
	out := make([]string, 0, len(r.Rejections))
	for _, rej := range r.Rejections {
		out = append(out, rej.String())
	}
	return out
}

// Validate checks a batch of proposed edits against the documents without
// mutating anything. The schema is closed: only keys that already exist may
// be assigned, and only sequences that already exist may be appended to.
// Numeric values on bounded fields are clamped rather than rejected; type
// mismatches, duplicate string appends and capacity overflows are hard
// rejections. Paths are processed in sorted order so the result is
// deterministic for a given batch.
func Validate(docs map[string]models.Document, mode Mode, updates map[string]any) Result {
	var res Result

	paths := make([]string, 0, len(updates))
	for p := range updates {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, raw := range paths {
		value := updates[raw]

		path, err := ParsePath(raw)
		if err != nil {
			res.reject(raw, ReasonMalformedPath, err.Error())
			continue
		}

		root, ok := docs[path.Root]
		if !ok {
			res.reject(raw, ReasonInvalidRoot, fmt.Sprintf("unknown root %q", path.Root))
			continue
		}

		parent, werr := walk(root, path.Segments)
		if werr != nil {
			res.reject(raw, ReasonPathNotFound, werr.detail)
			continue
		}

		if path.Append {
			res.validateAppend(path, parent, mode, value)
			continue
		}
		res.validateAssign(path, parent, mode, value)
	}
	return res
}

func (r *Result) reject(path string, reason Reason, detail string) {
	r.Rejections = append(r.Rejections, Rejection{Path: path, Reason: reason, Detail: detail})
}

func (r *Result) accept(path Path, value any) {
	r.Accepted = append(r.Accepted, Edit{Path: path, Value: value})
}

type walkError struct {
	detail string
}

// walk resolves the intermediate segments of a path and returns the parent
// record of the target. It never creates missing structure.
func walk(root models.Document, segs []Segment) (map[string]any, *walkError) {
	var cur any = map[string]any(root)
	for _, seg := range segs {
		rec, ok := cur.(map[string]any)
		if !ok {
			return nil, &walkError{detail: fmt.Sprintf("segment %q is not a record", seg)}
		}
		next, ok := rec[seg.Key]
		if !ok {
			return nil, &walkError{detail: fmt.Sprintf("missing key %q", seg.Key)}
		}
		if seg.Indexed {
			seq, ok := next.([]any)
			if !ok {
				return nil, &walkError{detail: fmt.Sprintf("%q is not a sequence", seg.Key)}
			}
			if seg.Index >= len(seq) {
				return nil, &walkError{detail: fmt.Sprintf("index %d out of range for %q (len %d)", seg.Index, seg.Key, len(seq))}
			}
			next = seq[seg.Index]
		}
		cur = next
	}
	rec, ok := cur.(map[string]any)
	if !ok {
		return nil, &walkError{detail: "target parent is not a record"}
	}
	return rec, nil
}

// resolveSequence fetches the sequence addressed by the target segment,
// following an index when present.
func resolveSequence(parent map[string]any, target Segment) ([]any, bool, string) {
	v, ok := parent[target.Key]
	if !ok {
		return nil, false, fmt.Sprintf("list %q does not exist", target.Key)
	}
	if target.Indexed {
		outer, ok := v.([]any)
		if !ok {
			return nil, false, fmt.Sprintf("%q is not a sequence", target.Key)
		}
		if target.Index >= len(outer) {
			return nil, false, fmt.Sprintf("index %d out of range for %q", target.Index, target.Key)
		}
		v = outer[target.Index]
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, false, fmt.Sprintf("target %q is %s, not a sequence", target.Key, kindOf(v))
	}
	return seq, true, ""
}

func (r *Result) validateAppend(path Path, parent map[string]any, mode Mode, value any) {
	seq, ok, detail := resolveSequence(parent, path.Target)
	if !ok {
		r.reject(path.Raw, ReasonAppendTargetNotSequence, detail)
		return
	}

	switch kindOf(value) {
	case KindText:
		s := value.(string)
		if sequenceContains(seq, s) {
			r.reject(path.Raw, ReasonDuplicateOrOverflow, fmt.Sprintf("%q already present", s))
			return
		}
		if len(seq) >= maxSequenceLen {
			r.reject(path.Raw, ReasonDuplicateOrOverflow, fmt.Sprintf("sequence at capacity (%d)", maxSequenceLen))
			return
		}
		r.accept(path, value)
	case KindRecord:
		// Structured records are appended without deduplication, but still
		// respect the capacity cap.
		if len(seq) >= maxSequenceLen {
			r.reject(path.Raw, ReasonDuplicateOrOverflow, fmt.Sprintf("sequence at capacity (%d)", maxSequenceLen))
			return
		}
		r.accept(path, value)
	case KindNumber, KindFlag, KindSequence, KindNil, KindUnknown:
		r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("cannot append %s value", kindOf(value)))
	}
}

func (r *Result) validateAssign(path Path, parent map[string]any, mode Mode, value any) {
	var target any
	if path.Target.Indexed {
		// Indexed assignment bypasses the key-creation check; the index
		// itself must already be in range.
		outer, ok := parent[path.Target.Key].([]any)
		if !ok {
			r.reject(path.Raw, ReasonPathNotFound, fmt.Sprintf("%q is not a sequence", path.Target.Key))
			return
		}
		if path.Target.Index >= len(outer) {
			r.reject(path.Raw, ReasonPathNotFound, fmt.Sprintf("index %d out of range for %q (len %d)", path.Target.Index, path.Target.Key, len(outer)))
			return
		}
		target = outer[path.Target.Index]
	} else {
		var ok bool
		target, ok = parent[path.Target.Key]
		if !ok {
			r.reject(path.Raw, ReasonKeyCreationForbidden, fmt.Sprintf("key %q does not exist in schema", path.Target.Key))
			return
		}
	}

	switch kindOf(target) {
	case KindNumber:
		if kindOf(value) != KindNumber {
			r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("numeric target, %s value", kindOf(value)))
			return
		}
		r.accept(path, clampForField(path, target, value, mode))
	case KindSequence:
		if mode == ModeTimeskip && kindOf(value) == KindSequence {
			// Whole-sequence replacement, truncated to the growth cap.
			seq := value.([]any)
			if len(seq) > maxSequenceLen {
				seq = seq[:maxSequenceLen]
			}
			r.accept(path, seq)
			return
		}
		r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("sequence target, %s value in %s mode", kindOf(value), mode))
	case KindText:
		if kindOf(value) != KindText {
			r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("text target, %s value", kindOf(value)))
			return
		}
		r.accept(path, value)
	case KindFlag:
		if kindOf(value) != KindFlag {
			r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("flag target, %s value", kindOf(value)))
			return
		}
		r.accept(path, value)
	case KindNil:
		// Unset optional fields accept text and flags, nothing else.
		switch kindOf(value) {
		case KindText, KindFlag:
			r.accept(path, value)
		default:
			r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("unset target, %s value", kindOf(value)))
		}
	case KindRecord, KindUnknown:
		r.reject(path.Raw, ReasonTypeMismatch, fmt.Sprintf("%s target cannot be assigned directly", kindOf(target)))
	}
}

// clampForField applies the bounds table to a numeric edit. Fields without
// a bounds entry pass through unchanged. Integer targets and values stay
// integers after clamping.
func clampForField(path Path, target, value any, mode Mode) any {
	if isMetaYear(path) {
		return yearAdvance(mode)
	}

	entry, ok := lookupBounds(path.Target.Key)
	if !ok {
		return value
	}
	v, _ := asFloat(value)
	clamped := entry.rangeFor(mode).Clamp(v)

	if entry.Match == "population" && mode == ModeTurn {
		// A delta may never push the population below the viable minimum.
		cur, _ := asFloat(target)
		if cur+clamped < minViablePopulation {
			clamped = minViablePopulation - cur
		}
	}

	if isInt(target) && isInt(value) {
		return int(clamped)
	}
	return clamped
}

// isMetaYear reports whether the path addresses a year counter under a meta
// record, which advances by a forced amount per mode.
func isMetaYear(path Path) bool {
	if path.Target.Key != "year" || path.Target.Indexed {
		return false
	}
	n := len(path.Segments)
	return n > 0 && path.Segments[n-1].Key == "meta" && !path.Segments[n-1].Indexed
}

func sequenceContains(seq []any, s string) bool {
	for _, item := range seq {
		if v, ok := item.(string); ok && v == s {
			return true
		}
	}
	return false
}

package state

import (
	"fmt"
	"strconv"
	"strings"
)

// appendMarker is the literal trailing segment that turns an edit into an
// append operation. It is stripped during parsing.
const appendMarker = "append"

// Segment is one step of a path: a plain key, or a key with a sequence
// index ("peoples[2]").
type Segment struct {
	Key     string
	Index   int
	Indexed bool
}

func (s Segment) String() string {
	if s.Indexed {
		return fmt.Sprintf("%s[%d]", s.Key, s.Index)
	}
	return s.Key
}

// Path is a parsed dot path into one root document. Segments holds the
// intermediate steps between the root and the final Target segment.
// Append is true when the raw path carried the trailing append marker.
type Path struct {
	Raw      string
	Root     string
	Segments []Segment
	Target   Segment
	Append   bool
}

// ParsePath parses a dot-separated key path such as
// "civilization.leader.age", "culture.traditions.append" or
// "world.known_peoples[2].relationship". Parsing does not consult any
// document; existence checks belong to the validator so that the two modes
// can apply different rules without re-parsing.
func ParsePath(raw string) (Path, error) {
	p := Path{Raw: raw}
	if raw == "" {
		return p, fmt.Errorf("empty path")
	}

	parts := strings.Split(raw, ".")
	if parts[len(parts)-1] == appendMarker {
		p.Append = true
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 2 {
		return p, fmt.Errorf("path %q needs a root and a target key", raw)
	}

	segs := make([]Segment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return p, fmt.Errorf("path %q: %w", raw, err)
		}
		segs = append(segs, seg)
	}
	if segs[0].Indexed {
		return p, fmt.Errorf("path %q: root segment cannot be indexed", raw)
	}

	p.Root = segs[0].Key
	p.Segments = segs[1 : len(segs)-1]
	p.Target = segs[len(segs)-1]
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsAny(part, "]") {
			return Segment{}, fmt.Errorf("malformed segment %q", part)
		}
		return Segment{Key: part}, nil
	}
	if open == 0 || !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("malformed indexed segment %q", part)
	}
	idx, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil || idx < 0 {
		return Segment{}, fmt.Errorf("malformed index in segment %q", part)
	}
	return Segment{Key: part[:open], Index: idx, Indexed: true}, nil
}

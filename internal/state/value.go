package state

// Kind classifies the value shapes that can appear in a document tree as
// decoded by yaml.v3. Validator and applier switch on Kind exhaustively so
// that a new shape has to be handled everywhere it matters.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindFlag
	KindSequence
	KindRecord
	KindNil
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindFlag:
		return "flag"
	case KindSequence:
		return "sequence"
	case KindRecord:
		return "record"
	case KindNil:
		return "nil"
	default:
		return "unknown"
	}
}

func kindOf(v any) Kind {
	switch v.(type) {
	case int, int64, float64:
		return KindNumber
	case string:
		return KindText
	case bool:
		return KindFlag
	case []any:
		return KindSequence
	case map[string]any:
		return KindRecord
	case nil:
		return KindNil
	default:
		return KindUnknown
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func isInt(v any) bool {
	switch v.(type) {
	case int, int64:
		return true
	default:
		return false
	}
}

package formskema

import (
	"encoding/json"
)

// Value is an already-parsed, untyped input tree: nil, bool, a number,
// string, map[string]any or []any. The pipeline only ever reads it.
type Value = any

// Kind classifies a Value.
type Kind int

const (
	KindInvalid Kind = iota // Not a JSON-like value (e.g. a Go struct or channel).
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// KindOf reports the Kind of v. Numbers may arrive as json.Number (the
// source package and encoding/json with UseNumber), float64 (plain
// encoding/json) or Go integer types (YAML, hand-built maps).
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	default:
		return KindInvalid
	}
}

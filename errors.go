package formskema

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reoring/formskema/i18n"
)

// Codes (exported consts for IDE completion and type safety by convention)
const (
	// Structural defects
	CodeMissingField = "missing_field"
	CodeWrongType    = "wrong_type"
	// Field violations
	CodeEmpty         = "empty"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
)

// DefectKind enumerates structural defects.
type DefectKind int

const (
	DefectMissingField DefectKind = iota
	DefectWrongType
)

// Code returns the stable code for the defect kind.
func (k DefectKind) Code() string {
	if k == DefectWrongType {
		return CodeWrongType
	}
	return CodeMissingField
}

func (k DefectKind) String() string {
	if k == DefectWrongType {
		return "WrongType"
	}
	return "MissingField"
}

// StructuralDefect reports why an input cannot be interpreted as a record at
// all. Exactly one defect ends a decode.
type StructuralDefect struct {
	Kind     DefectKind
	Path     Path
	Expected Kind // Set for DefectWrongType.
	Found    Kind // Set for DefectWrongType.
}

// MissingField builds a DefectMissingField at p.
func MissingField(p Path) *StructuralDefect {
	return &StructuralDefect{Kind: DefectMissingField, Path: p}
}

// WrongType builds a DefectWrongType at p.
func WrongType(p Path, expected, found Kind) *StructuralDefect {
	return &StructuralDefect{Kind: DefectWrongType, Path: p, Expected: expected, Found: found}
}

// Message returns the localized description of the defect.
func (d *StructuralDefect) Message() string {
	if d.Kind == DefectWrongType {
		return i18n.T(CodeWrongType, map[string]string{"expected": d.Expected.String(), "found": d.Found.String()})
	}
	return i18n.T(CodeMissingField, nil)
}

func (d *StructuralDefect) Error() string {
	// e.g. wrong_type at address.city: wrong type: expected string, found bool
	return fmt.Sprintf("%s at %s: %s", d.Kind.Code(), d.Path, d.Message())
}

// MarshalJSON renders the defect for logs and HTTP payloads.
func (d *StructuralDefect) MarshalJSON() ([]byte, error) {
	out := defectJSON{Kind: d.Kind.String(), Code: d.Kind.Code(), Path: d.Path.String(), Message: d.Message()}
	if d.Kind == DefectWrongType {
		out.Expected = d.Expected.String()
		out.Found = d.Found.String()
	}
	return marshalJSON(out)
}

type defectJSON struct {
	Kind     string `json:"kind"`
	Code     string `json:"code"`
	Path     string `json:"path"`
	Expected string `json:"expected,omitempty"`
	Found    string `json:"found,omitempty"`
	Message  string `json:"message"`
}

// ViolationKind enumerates semantic rule failures.
type ViolationKind int

const (
	ViolationEmpty ViolationKind = iota
	ViolationTooShort
	ViolationTooLong
	ViolationPattern
	ViolationInvalidFormat
)

// Code returns the stable code for the violation kind.
func (k ViolationKind) Code() string {
	switch k {
	case ViolationTooShort:
		return CodeTooShort
	case ViolationTooLong:
		return CodeTooLong
	case ViolationPattern:
		return CodePattern
	case ViolationInvalidFormat:
		return CodeInvalidFormat
	default:
		return CodeEmpty
	}
}

func (k ViolationKind) String() string {
	switch k {
	case ViolationTooShort:
		return "TooShort"
	case ViolationTooLong:
		return "TooLong"
	case ViolationPattern:
		return "Pattern"
	case ViolationInvalidFormat:
		return "InvalidFormat"
	default:
		return "Empty"
	}
}

// Violation is what a Rule reports: a kind plus optional parameters
// (e.g. {"min": 8}) used for messages.
type Violation struct {
	Kind   ViolationKind
	Params map[string]any
}

// FieldViolation is a semantic failure on a structurally valid field.
type FieldViolation struct {
	Path    Path
	Kind    ViolationKind
	Message string
	// Params carries structured parameters (e.g., {"min":8, "got":3})
	// for i18n and observability.
	Params map[string]any
}

// MarshalJSON renders the violation with its dotted path and code.
func (v FieldViolation) MarshalJSON() ([]byte, error) {
	return marshalJSON(violationJSON{
		Path:    v.Path.String(),
		Kind:    v.Kind.String(),
		Code:    v.Kind.Code(),
		Message: v.Message,
		Params:  v.Params,
	})
}

type violationJSON struct {
	Path    string         `json:"path"`
	Kind    string         `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Params  map[string]any `json:"params,omitempty"`
}

// Violations is the accumulated, ordered set of field violations. It
// implements error.
type Violations []FieldViolation

// Error summarizes the first few violations.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(vs)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. empty at address.city
		fmt.Fprintf(b, "%s at %s", vs[i].Kind.Code(), vs[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Paths returns the dotted paths of the violations in order; a path repeats
// when several rules failed on the same field.
func (vs Violations) Paths() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Path.String()
	}
	return out
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Violations, more ...FieldViolation) Violations {
	if dst == nil {
		dst = Violations{}
	}
	return append(dst, more...)
}

// AsDefect extracts a *StructuralDefect from err using errors.As.
func AsDefect(err error) (*StructuralDefect, bool) {
	if err == nil {
		return nil, false
	}
	var d *StructuralDefect
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// AsViolations extracts Violations from err using errors.As.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	return nil, false
}

// messageData stringifies rule params for the translator.
func messageData(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch t := v.(type) {
		case string:
			out[k] = t
		case int:
			out[k] = strconv.Itoa(t)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

package formskema

import (
	"strings"

	"github.com/reoring/formskema/i18n"
)

// Rule checks the raw value of one field and reports zero or more
// violations. Rules must be pure; they may run concurrently.
type Rule func(value string) []Violation

// RuleSet maps a dotted field path ("address.city") to the rules applied to
// that field, in order.
type RuleSet map[string][]Rule

// Clone returns a copy that can be modified without affecting rs.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = append([]Rule(nil), v...)
	}
	return out
}

// NonBlank reports ViolationEmpty when the value is empty after trimming
// surrounding whitespace.
func NonBlank() Rule {
	return func(s string) []Violation {
		if strings.TrimSpace(s) == "" {
			return []Violation{{Kind: ViolationEmpty}}
		}
		return nil
	}
}

// DefaultRules applies NonBlank to every field of the form.
func DefaultRules() RuleSet {
	rs := RuleSet{}
	for _, p := range formSchema.Leaves() {
		rs[p.String()] = []Rule{NonBlank()}
	}
	return rs
}

// Validator applies a RuleSet to decoded forms. A Validator is immutable once
// built and safe for concurrent use.
type Validator struct {
	rules RuleSet
}

// Option configures a Validator.
type Option func(*Validator)

// WithRules replaces the whole rule set.
func WithRules(rs RuleSet) Option {
	return func(v *Validator) { v.rules = rs.Clone() }
}

// WithRule appends rules for the field at path, keeping rules already set.
func WithRule(path string, rules ...Rule) Option {
	return func(v *Validator) {
		v.rules[path] = append(append([]Rule(nil), v.rules[path]...), rules...)
	}
}

// NewValidator returns a Validator starting from DefaultRules.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{rules: DefaultRules()}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.rules == nil {
		v.rules = RuleSet{}
	}
	return v
}

var defaultValidator = NewValidator()

// check evaluates a single field.
type check func() Violations

// collect runs every check and merges what they report. A failing check never
// prevents the remaining ones from running.
func collect(checks ...check) Violations {
	var out Violations
	for _, c := range checks {
		if vs := c(); len(vs) > 0 {
			out = AppendViolations(out, vs...)
		}
	}
	return out
}

func fieldCheck(p Path, raw string, rules []Rule) check {
	return func() Violations {
		var out Violations
		for _, r := range rules {
			if r == nil {
				continue
			}
			for _, v := range r(raw) {
				out = AppendViolations(out, FieldViolation{
					Path:    p,
					Kind:    v.Kind,
					Message: i18n.T(v.Kind.Code(), messageData(v.Params)),
					Params:  v.Params,
				})
			}
		}
		return out
	}
}

// Validate checks every field of f against the rule set. It returns the
// promoted ValidatedForm, or Violations listing every failure in field
// declaration order.
func (val *Validator) Validate(f DecodedForm) (ValidatedForm, error) {
	if val == nil {
		val = defaultValidator
	}
	leaves := formSchema.Leaves()
	checks := make([]check, 0, len(leaves))
	for _, p := range leaves {
		raw, _ := f.Get(p)
		checks = append(checks, fieldCheck(p, raw, val.rules[p.String()]))
	}
	if vs := collect(checks...); len(vs) > 0 {
		return ValidatedForm{}, vs
	}
	return ValidatedForm{form: f}, nil
}

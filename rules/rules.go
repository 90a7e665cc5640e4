// Package rules provides reusable field rules for formskema validators.
//
// Every constructor returns a formskema.Rule: a pure function from a raw
// field value to zero or more violations. Rules compose with And, Or and
// If(...).Then(...).
package rules

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	formskema "github.com/reoring/formskema"
)

// MinLength reports ViolationTooShort when the value has fewer than n
// characters (runes).
func MinLength(n int) formskema.Rule {
	return func(s string) []formskema.Violation {
		if got := utf8.RuneCountInString(s); got < n {
			return []formskema.Violation{{Kind: formskema.ViolationTooShort, Params: map[string]any{"min": n, "got": got}}}
		}
		return nil
	}
}

// MaxLength reports ViolationTooLong when the value has more than n
// characters (runes).
func MaxLength(n int) formskema.Rule {
	return func(s string) []formskema.Violation {
		if got := utf8.RuneCountInString(s); got > n {
			return []formskema.Violation{{Kind: formskema.ViolationTooLong, Params: map[string]any{"max": n, "got": got}}}
		}
		return nil
	}
}

// Matches reports ViolationPattern when re does not match the value.
func Matches(re *regexp.Regexp) formskema.Rule {
	return func(s string) []formskema.Violation {
		if !re.MatchString(s) {
			return []formskema.Violation{{Kind: formskema.ViolationPattern, Params: map[string]any{"pattern": re.String()}}}
		}
		return nil
	}
}

// Pattern compiles expr and returns a Matches rule.
func Pattern(expr string) (formskema.Rule, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("rules: pattern %q: %w", expr, err)
	}
	return Matches(re), nil
}

// Email reports ViolationInvalidFormat unless the value is a bare RFC 5322
// address such as user@example.org (no display name, no angle brackets).
func Email() formskema.Rule {
	return func(s string) []formskema.Violation {
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Name != "" || addr.Address != s {
			return []formskema.Violation{{Kind: formskema.ViolationInvalidFormat, Params: map[string]any{"format": "email"}}}
		}
		return nil
	}
}

// OneOf reports ViolationInvalidFormat unless the value equals one of the
// allowed values.
func OneOf(values ...string) formskema.Rule {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[v] = struct{}{}
	}
	return func(s string) []formskema.Violation {
		if _, ok := allowed[s]; !ok {
			return []formskema.Violation{{Kind: formskema.ViolationInvalidFormat, Params: map[string]any{
				"format": "one of " + strings.Join(values, ", "),
			}}}
		}
		return nil
	}
}

// ---------- Rule combinators ----------

// And executes all rules and concatenates their violations.
func And(rules ...formskema.Rule) formskema.Rule {
	return func(s string) []formskema.Violation {
		var out []formskema.Violation
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, r(s)...)
		}
		return out
	}
}

// Or succeeds if any rule returns no violations. When every rule fails it
// returns the branch with the fewest violations.
func Or(rules ...formskema.Rule) formskema.Rule {
	return func(s string) []formskema.Violation {
		var best []formskema.Violation
		bestSet := false
		for _, r := range rules {
			if r == nil {
				continue
			}
			vs := r(s)
			if len(vs) == 0 {
				return nil
			}
			if !bestSet || len(vs) < len(best) {
				best = vs
				bestSet = true
			}
		}
		return best
	}
}

// Conditional gates rules on a predicate over the raw value.
type Conditional struct {
	pred func(string) bool
}

// If builds a conditional from a predicate.
func If(pred func(string) bool) Conditional { return Conditional{pred: pred} }

// Then returns a rule that runs rules only when the predicate holds.
func (c Conditional) Then(rules ...formskema.Rule) formskema.Rule {
	all := And(rules...)
	return func(s string) []formskema.Violation {
		if c.pred != nil && !c.pred(s) {
			return nil
		}
		return all(s)
	}
}

// NotBlank is a predicate for If: the value has non-whitespace content.
// Use If(NotBlank).Then(...) to report format problems only on fields that
// NonBlank has not already flagged.
func NotBlank(s string) bool { return strings.TrimSpace(s) != "" }

package formskema

import (
	"fmt"
	"strings"
)

// OutcomeKind discriminates the three results of ValidateForm.
type OutcomeKind int

const (
	OutcomeUnprocessable OutcomeKind = iota + 1 // The input could not be decoded.
	OutcomeFormErrors                           // Decoded, but at least one rule failed.
	OutcomeForm                                 // Decoded and valid.
)

// String returns the wire tag of the kind ("unprocessable", "formErrors",
// "form").
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUnprocessable:
		return "unprocessable"
	case OutcomeFormErrors:
		return "formErrors"
	case OutcomeForm:
		return "form"
	default:
		return "invalid"
	}
}

// Outcome is the closed union returned by ValidateForm. Exactly one of the
// accessors Defect, Violations and Form reports ok.
type Outcome struct {
	kind       OutcomeKind
	defect     *StructuralDefect
	violations Violations
	form       ValidatedForm
}

func unprocessable(d *StructuralDefect) Outcome {
	return Outcome{kind: OutcomeUnprocessable, defect: d}
}

func formErrors(vs Violations) Outcome {
	return Outcome{kind: OutcomeFormErrors, violations: vs}
}

func form(f ValidatedForm) Outcome {
	return Outcome{kind: OutcomeForm, form: f}
}

// Kind returns the discriminant.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Defect returns the structural defect of an Unprocessable outcome.
func (o Outcome) Defect() (*StructuralDefect, bool) {
	return o.defect, o.kind == OutcomeUnprocessable
}

// Violations returns the non-empty violations of a FormErrors outcome.
func (o Outcome) Violations() (Violations, bool) {
	return o.violations, o.kind == OutcomeFormErrors
}

// Form returns the validated form of a Form outcome.
func (o Outcome) Form() (ValidatedForm, bool) {
	return o.form, o.kind == OutcomeForm
}

// Err returns the defect or the violations as an error, or nil for a Form
// outcome.
func (o Outcome) Err() error {
	switch o.kind {
	case OutcomeUnprocessable:
		return o.defect
	case OutcomeFormErrors:
		return o.violations
	default:
		return nil
	}
}

// Match calls the handler for the variant held by o and returns its result.
// All three handlers are required, so a new variant cannot be missed silently.
// The zero Outcome holds no variant: no handler runs and the zero R is
// returned.
func Match[R any](o Outcome,
	onUnprocessable func(*StructuralDefect) R,
	onFormErrors func(Violations) R,
	onForm func(ValidatedForm) R,
) R {
	switch o.kind {
	case OutcomeUnprocessable:
		return onUnprocessable(o.defect)
	case OutcomeFormErrors:
		return onFormErrors(o.violations)
	case OutcomeForm:
		return onForm(o.form)
	}
	var zero R
	return zero
}

// String renders the outcome for logs: the tag followed by the payload.
func (o Outcome) String() string {
	if o.kind != OutcomeUnprocessable && o.kind != OutcomeFormErrors && o.kind != OutcomeForm {
		return o.kind.String()
	}
	return Match(o,
		func(d *StructuralDefect) string {
			return fmt.Sprintf("%s: %s", o.kind, d.Error())
		},
		func(vs Violations) string {
			parts := make([]string, len(vs))
			for i, v := range vs {
				parts[i] = fmt.Sprintf("(%s, %s)", v.Path, v.Kind)
			}
			return fmt.Sprintf("%s: [%s]", o.kind, strings.Join(parts, " "))
		},
		func(f ValidatedForm) string {
			return fmt.Sprintf("%s: %+v", o.kind, f.Form())
		},
	)
}

// MarshalJSON renders {"type": <tag>, "value": <payload>}.
func (o Outcome) MarshalJSON() ([]byte, error) {
	var payload any
	switch o.kind {
	case OutcomeUnprocessable:
		payload = o.defect
	case OutcomeFormErrors:
		payload = o.violations
	case OutcomeForm:
		payload = o.form
	}
	return marshalJSON(outcomeJSON{Type: o.kind.String(), Value: payload})
}

type outcomeJSON struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ValidateForm classifies v with the default rules (every field non-blank).
// It never panics and is safe for concurrent use.
func ValidateForm(v Value) Outcome { return defaultValidator.ValidateForm(v) }

// ValidateForm decodes v, then validates the decoded form. A structural
// defect short-circuits: the rules never run on an undecodable input.
func (val *Validator) ValidateForm(v Value) Outcome {
	df, err := DecodeForm(v)
	if err != nil {
		d, _ := AsDefect(err)
		return unprocessable(d)
	}
	vf, err := val.Validate(df)
	if err != nil {
		vs, _ := AsViolations(err)
		return formErrors(vs)
	}
	return form(vf)
}

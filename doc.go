// Package formskema classifies untyped form submissions.
//
// A submission goes through two phases with deliberately different error
// policies:
//
// - Decode checks the shape of the input against a Schema and extracts the
//   declared string fields. It stops at the first StructuralDefect
//   (MissingField or WrongType).
// - Validate runs the per-field Rules of a RuleSet over the decoded values.
//   Every rule on every field runs; all failures are returned as Violations.
//
// ValidateForm composes both and returns an Outcome holding exactly one of
// Unprocessable (a defect), FormErrors (violations) or Form (a ValidatedForm).
//
// Design policy:
// - Keep the pipeline in the root package; wire formats live under source/,
//   reusable rules under rules/, and the CLI under cmd/formskema.
// - The pipeline is pure: no I/O, no logging, no shared mutable state.
//
// Typical usage:
//
//	v, err := source.Read(r, source.FormatJSON, source.Options{})
//	out := formskema.ValidateForm(v)
//	switch out.Kind() {
//	case formskema.OutcomeUnprocessable:
//	case formskema.OutcomeFormErrors:
//	case formskema.OutcomeForm:
//	}
//
//	val := formskema.NewValidator(formskema.WithRule("password", rules.MinLength(8)))
//	out = val.ValidateForm(v)
package formskema

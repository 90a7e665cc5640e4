// Package middleware runs formskema.ValidateForm at an HTTP boundary.
//
// The handler reads the request body with the source package, classifies
// it and maps the outcome onto a response:
//
//	unprocessable -> 400 Bad Request, {"type":"unprocessable","value":<defect>}
//	formErrors    -> 422 Unprocessable Entity, {"type":"formErrors","value":[...]}
//	form          -> next handler, with the ValidatedForm in the request context
//
// Bodies that are not well-formed JSON or YAML are answered with 400 and an
// {"error":{...}} payload before the pipeline runs.
package middleware

import (
	"context"
	"errors"
	"mime"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/source"
)

// ctxKey is a typed context key. Using a generic struct type ensures
// uniqueness per T.
type ctxKey[T any] struct{}

// ContextWithForm attaches a validated form to the context.
func ContextWithForm(ctx context.Context, f formskema.ValidatedForm) context.Context {
	return context.WithValue(ctx, ctxKey[formskema.ValidatedForm]{}, f)
}

// FormFromContext retrieves the validated form stored by ValidateForm.
func FormFromContext(ctx context.Context) (formskema.ValidatedForm, bool) {
	f, ok := ctx.Value(ctxKey[formskema.ValidatedForm]{}).(formskema.ValidatedForm)
	return f, ok
}

// DefaultSourceOptions returns the reader limits used at HTTP boundaries.
// Duplicate keys are errors.
func DefaultSourceOptions() source.Options {
	return source.Options{MaxDepth: 32, MaxBytes: 1 << 20, DuplicateKeys: source.DuplicateError}
}

type handler struct {
	next      http.Handler
	validator *formskema.Validator
	logger    *zap.Logger
	metrics   *Metrics
	source    source.Options
}

// Option configures ValidateForm.
type Option func(*handler)

// WithValidator replaces the default validator.
func WithValidator(v *formskema.Validator) Option {
	return func(h *handler) { h.validator = v }
}

// WithLogger logs each rejected request at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(h *handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics counts outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(h *handler) { h.metrics = m }
}

// WithSourceOptions overrides DefaultSourceOptions.
func WithSourceOptions(o source.Options) Option {
	return func(h *handler) { h.source = o }
}

// ValidateForm wraps next with form validation.
func ValidateForm(next http.Handler, opts ...Option) http.Handler {
	h := &handler{
		next:   next,
		logger: zap.NewNop(),
		source: DefaultSourceOptions(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v, err := source.Read(r.Body, requestFormat(r), h.source)
	if err != nil {
		h.metrics.observe(LabelSourceError)
		h.logger.Debug("form body rejected", zap.String("path", r.URL.Path), zap.Error(err))
		var se *source.Error
		if errors.As(err, &se) {
			WriteJSON(w, http.StatusBadRequest, errorPayload{Error: errorBody{Code: se.Code, Path: se.Path, Message: se.Message}})
			return
		}
		WriteJSON(w, http.StatusBadRequest, errorPayload{Error: errorBody{Code: source.CodeParseError, Message: err.Error()}})
		return
	}

	out := h.validator.ValidateForm(v)
	h.metrics.observe(out.Kind().String())

	handled := formskema.Match(out,
		func(d *formskema.StructuralDefect) bool {
			h.logger.Debug("form unprocessable", zap.String("path", r.URL.Path), zap.Error(d))
			WriteJSON(w, http.StatusBadRequest, out)
			return true
		},
		func(vs formskema.Violations) bool {
			h.logger.Debug("form invalid", zap.String("path", r.URL.Path), zap.Strings("fields", vs.Paths()))
			WriteJSON(w, http.StatusUnprocessableEntity, out)
			return true
		},
		func(f formskema.ValidatedForm) bool {
			h.next.ServeHTTP(w, r.WithContext(ContextWithForm(r.Context(), f)))
			return true
		},
	)
	if !handled {
		h.logger.Error("validator returned no outcome", zap.String("path", r.URL.Path))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type errorPayload struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// requestFormat picks YAML for YAML media types and JSON otherwise.
func requestFormat(r *http.Request) source.Format {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return source.FormatJSON
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return source.FormatYAML
	}
	return source.FormatJSON
}

// WriteJSON encodes v with status code. Encoding errors are reported as 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(b, '\n'))
}

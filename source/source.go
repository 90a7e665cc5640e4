// Package source turns wire input (JSON, YAML) into the untyped value tree
// consumed by formskema.ValidateForm.
//
// Readers enforce input limits (nesting depth, size, duplicate keys) before
// the pipeline sees anything. Their failures are *Error values and are
// distinct from formskema's structural defects: an input that is not even
// well-formed JSON or YAML never reaches the decoder.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/reoring/formskema/i18n"
)

// Error codes.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// Error reports why wire input could not be turned into a value.
type Error struct {
	Code    string
	Path    string // Dotted path of the offending value ("" for the document).
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(code, path, detail string, cause error) *Error {
	msg := i18n.T(code, nil)
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{Code: code, Path: path, Message: msg, Cause: cause}
}

// DuplicatePolicy controls how repeated object keys are handled.
type DuplicatePolicy int

const (
	DuplicateError  DuplicatePolicy = iota // Reject the input.
	DuplicateIgnore                        // Keep the last occurrence.
)

// Options bundles reader limits. Zero values disable the corresponding limit
// (duplicates are rejected by default).
type Options struct {
	MaxDepth      int
	MaxBytes      int64
	DuplicateKeys DuplicatePolicy
	// MaxNodes caps the values a YAML document may expand to through
	// aliases. Zero derives a budget from the input size; it cannot be
	// disabled.
	MaxNodes int
}

// Format names a wire format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat accepts "json", "yaml" or "yml" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatJSON, fmt.Errorf("source: unknown format %q", s)
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return FormatJSON, fmt.Errorf("source: cannot infer format of %q", path)
	}
	return ParseFormat(ext)
}

// Read decodes one document of the given format from r.
func Read(r io.Reader, f Format, opt Options) (any, error) {
	data, err := readLimited(r, opt.MaxBytes)
	if err != nil {
		return nil, err
	}
	if f == FormatYAML {
		return decodeYAML(data, opt)
	}
	return decodeJSON(data, opt)
}

// JSON decodes one JSON document from r.
func JSON(r io.Reader, opt Options) (any, error) { return Read(r, FormatJSON, opt) }

// YAML decodes one YAML document from r.
func YAML(r io.Reader, opt Options) (any, error) { return Read(r, FormatYAML, opt) }

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, newError(CodeParseError, "", err.Error(), err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, newError(CodeParseError, "", err.Error(), err)
	}
	if int64(len(data)) > maxBytes {
		return nil, newError(CodeTruncated, "", fmt.Sprintf("max bytes %d exceeded", maxBytes), nil)
	}
	return data, nil
}

package formskema

import "strings"

// Path locates a field inside a nested record, e.g. address.city.
// The zero value is the root. Paths are immutable; Field returns a copy.
type Path struct {
	parts []string
}

// ParsePath splits a dotted path ("address.city"). Empty segments are dropped.
func ParsePath(s string) Path {
	var parts []string
	for _, p := range strings.Split(s, ".") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return Path{parts: parts}
}

// Field returns the path extended with name.
func (p Path) Field(name string) Path {
	if name == "" {
		return p
	}
	return Path{parts: append(append([]string{}, p.parts...), name)}
}

// Parts returns a copy of the path segments.
func (p Path) Parts() []string { return append([]string(nil), p.parts...) }

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool { return len(p.parts) == 0 }

// String renders the dotted form. The root renders as "".
func (p Path) String() string { return strings.Join(p.parts, ".") }

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer renders p as an RFC 6901 JSON Pointer ("/address/city").
func (p Path) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p.parts {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(s))
	}
	return b.String()
}

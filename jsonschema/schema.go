package jsonschema

// Draft is the dialect emitted at the document root.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	Dialect string `json:"$schema,omitempty"`
	Title   string `json:"title,omitempty"`

	// Core
	Type string `json:"type,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
}

// Document marks s as a root document with the given title.
func Document(title string, s *Schema) *Schema {
	if s == nil {
		s = &Schema{}
	}
	s.Dialect = Draft
	s.Title = title
	return s
}

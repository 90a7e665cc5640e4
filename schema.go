package formskema

import (
	js "github.com/reoring/formskema/jsonschema"
)

// FieldSpec describes one required field. Leaves are strings; a field with
// Kind KindObject carries its nested sub-schema in Fields.
type FieldSpec struct {
	Name   string
	Kind   Kind
	Fields Schema
}

// Schema is the ordered list of fields expected in a record. Order drives
// decoding and the order of reported violations; it carries no other meaning.
type Schema []FieldSpec

// NewSchema returns a schema of the given fields in declaration order.
func NewSchema(fields ...FieldSpec) Schema { return Schema(fields) }

// String declares a required string field.
func String(name string) FieldSpec { return FieldSpec{Name: name, Kind: KindString} }

// Object declares a required nested object field.
func Object(name string, fields ...FieldSpec) FieldSpec {
	return FieldSpec{Name: name, Kind: KindObject, Fields: NewSchema(fields...)}
}

// Field paths of the form schema.
const (
	FieldEmail    = "email"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldAddress  = "address"
	FieldAddress1 = "address1"
	FieldAddress2 = "address2"
	FieldCity     = "city"
	FieldZipCode  = "zipCode"
	FieldCountry  = "country"
)

var formSchema = NewSchema(
	String(FieldEmail),
	String(FieldUsername),
	String(FieldPassword),
	Object(FieldAddress,
		String(FieldAddress1),
		String(FieldAddress2),
		String(FieldCity),
		String(FieldZipCode),
		String(FieldCountry),
	),
)

// FormSchema returns the compiled-in schema of the form. The returned value
// must not be modified.
func FormSchema() Schema { return formSchema }

// Leaves lists the paths of all string fields in declaration order,
// descending into nested objects.
func (s Schema) Leaves() []Path {
	var out []Path
	s.walkLeaves(Path{}, func(p Path) { out = append(out, p) })
	return out
}

func (s Schema) walkLeaves(base Path, fn func(Path)) {
	for _, f := range s {
		p := base.Field(f.Name)
		if f.Kind == KindObject {
			f.Fields.walkLeaves(p, fn)
			continue
		}
		fn(p)
	}
}

// Has reports whether p names a leaf of the schema.
func (s Schema) Has(p Path) bool {
	for _, l := range s.Leaves() {
		if l.String() == p.String() {
			return true
		}
	}
	return false
}

// JSONSchema projects the schema into a JSON Schema representation. Every
// property is required; unknown keys are accepted because the decoder ignores
// them.
func (s Schema) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(s))
	req := make([]string, 0, len(s))
	for _, f := range s {
		req = append(req, f.Name)
		switch f.Kind {
		case KindObject:
			ns, err := f.Fields.JSONSchema()
			if err != nil {
				return nil, err
			}
			props[f.Name] = ns
		default:
			props[f.Name] = &js.Schema{Type: "string"}
		}
	}
	return &js.Schema{Type: "object", Properties: props, Required: req, AdditionalProperties: true}, nil
}

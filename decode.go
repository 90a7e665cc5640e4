package formskema

// Record is the schema-shaped result of a successful Decode: every declared
// field is present, leaves hold strings and nested objects hold Records.
// Keys the schema does not declare are dropped.
type Record map[string]any

// Lookup returns the string stored at p.
func (r Record) Lookup(p Path) (string, bool) {
	parts := p.parts
	if len(parts) == 0 {
		return "", false
	}
	cur := r
	for _, name := range parts[:len(parts)-1] {
		next, ok := cur[name].(Record)
		if !ok {
			return "", false
		}
		cur = next
	}
	s, ok := cur[parts[len(parts)-1]].(string)
	return s, ok
}

// decodeStep decodes a single field into rec. A non-nil defect stops the
// chain.
type decodeStep func(rec Record) *StructuralDefect

// decodeChain runs steps in order and stops at the first defect.
func decodeChain(rec Record, steps ...decodeStep) *StructuralDefect {
	for _, step := range steps {
		if d := step(rec); d != nil {
			return d
		}
	}
	return nil
}

// Decode checks v against s and extracts the declared fields. It fails fast:
// the returned error is the first *StructuralDefect found in declaration
// order, descending into nested objects as they are reached.
//
// A v that is not an object reports the first declared field as missing.
func Decode(v Value, s Schema) (Record, error) {
	rec, d := decodeObject(v, s, Path{})
	if d != nil {
		return nil, d
	}
	return rec, nil
}

func decodeObject(v Value, s Schema, base Path) (Record, *StructuralDefect) {
	// a nil map answers every lookup with "absent"
	src, _ := v.(map[string]any)
	steps := make([]decodeStep, 0, len(s))
	for _, f := range s {
		steps = append(steps, fieldStep(src, f, base))
	}
	rec := make(Record, len(s))
	if d := decodeChain(rec, steps...); d != nil {
		return nil, d
	}
	return rec, nil
}

func fieldStep(src map[string]any, f FieldSpec, base Path) decodeStep {
	return func(rec Record) *StructuralDefect {
		p := base.Field(f.Name)
		raw, ok := src[f.Name]
		if !ok {
			return MissingField(p)
		}
		if found := KindOf(raw); found != f.Kind {
			return WrongType(p, f.Kind, found)
		}
		switch f.Kind {
		case KindObject:
			nested, d := decodeObject(raw, f.Fields, p)
			if d != nil {
				return d
			}
			rec[f.Name] = nested
		default:
			rec[f.Name] = raw
		}
		return nil
	}
}

// DecodeForm decodes v against FormSchema and binds the result into a
// DecodedForm. Values are kept raw (untrimmed).
func DecodeForm(v Value) (DecodedForm, error) {
	rec, err := Decode(v, formSchema)
	if err != nil {
		return DecodedForm{}, err
	}
	return bindForm(rec), nil
}

func bindForm(rec Record) DecodedForm {
	get := func(parts ...string) string {
		s, _ := rec.Lookup(Path{parts: parts})
		return s
	}
	return DecodedForm{
		Email:    get(FieldEmail),
		Username: get(FieldUsername),
		Password: get(FieldPassword),
		Address: DecodedAddress{
			Address1: get(FieldAddress, FieldAddress1),
			Address2: get(FieldAddress, FieldAddress2),
			City:     get(FieldAddress, FieldCity),
			ZipCode:  get(FieldAddress, FieldZipCode),
			Country:  get(FieldAddress, FieldCountry),
		},
	}
}

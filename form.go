package formskema

// DecodedAddress is the nested address of a DecodedForm.
type DecodedAddress struct {
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}

// DecodedForm is a structurally sound but not yet validated form. Values are
// exactly as submitted.
type DecodedForm struct {
	Email    string         `json:"email"`
	Username string         `json:"username"`
	Password string         `json:"password"`
	Address  DecodedAddress `json:"address"`
}

// Get returns the value of the leaf at p.
func (f DecodedForm) Get(p Path) (string, bool) {
	switch p.String() {
	case FieldEmail:
		return f.Email, true
	case FieldUsername:
		return f.Username, true
	case FieldPassword:
		return f.Password, true
	case FieldAddress + "." + FieldAddress1:
		return f.Address.Address1, true
	case FieldAddress + "." + FieldAddress2:
		return f.Address.Address2, true
	case FieldAddress + "." + FieldCity:
		return f.Address.City, true
	case FieldAddress + "." + FieldZipCode:
		return f.Address.ZipCode, true
	case FieldAddress + "." + FieldCountry:
		return f.Address.Country, true
	}
	return "", false
}

// Value converts the form back into an untyped tree accepted by
// ValidateForm.
func (f DecodedForm) Value() Value {
	return map[string]any{
		FieldEmail:    f.Email,
		FieldUsername: f.Username,
		FieldPassword: f.Password,
		FieldAddress: map[string]any{
			FieldAddress1: f.Address.Address1,
			FieldAddress2: f.Address.Address2,
			FieldCity:     f.Address.City,
			FieldZipCode:  f.Address.ZipCode,
			FieldCountry:  f.Address.Country,
		},
	}
}

// ValidatedForm is a DecodedForm that passed every rule. Only a Validator
// can produce a non-zero ValidatedForm.
type ValidatedForm struct {
	form DecodedForm
}

// Form returns a copy of the validated field values.
func (v ValidatedForm) Form() DecodedForm { return v.form }

func (v ValidatedForm) Email() string           { return v.form.Email }
func (v ValidatedForm) Username() string        { return v.form.Username }
func (v ValidatedForm) Password() string        { return v.form.Password }
func (v ValidatedForm) Address() DecodedAddress { return v.form.Address }

// MarshalJSON renders the validated values.
func (v ValidatedForm) MarshalJSON() ([]byte, error) { return marshalJSON(v.form) }

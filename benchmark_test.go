package formskema_test

import (
	"bytes"
	"testing"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/source"
)

var benchFormJSON = []byte(`{"email":"example@example.org","username":"example","password":"guest123456",
"address":{"address1":"MyStreet","address2":"MyApt","city":"MyCity","zipCode":"MyZipCode","country":"MyCountry"}}`)

func Benchmark_ValidateForm_Valid(b *testing.B) {
	in := validInput()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if formskema.ValidateForm(in).Kind() != formskema.OutcomeForm {
			b.Fatal("expected form")
		}
	}
}

func Benchmark_ValidateForm_AllBlank(b *testing.B) {
	in := emptyInput()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if formskema.ValidateForm(in).Kind() != formskema.OutcomeFormErrors {
			b.Fatal("expected form errors")
		}
	}
}

func Benchmark_JSONSource_ValidateForm(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchFormJSON)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := source.JSON(bytes.NewReader(benchFormJSON), source.Options{})
		if err != nil {
			b.Fatal(err)
		}
		if formskema.ValidateForm(v).Kind() != formskema.OutcomeForm {
			b.Fatal("expected form")
		}
	}
}

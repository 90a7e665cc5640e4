package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/middleware"
	"github.com/reoring/formskema/rules"
	"github.com/reoring/formskema/source"
)

const validBody = `{"email":"example@example.org","username":"example","password":"guest123456",
"address":{"address1":"MyStreet","address2":"MyApt","city":"MyCity","zipCode":"MyZipCode","country":"MyCountry"}}`

const blankBody = `{"email":"","username":"","password":"",
"address":{"address1":"","address2":"","city":"","zipCode":"","country":""}}`

func newServer(t *testing.T, opts ...middleware.Option) (http.Handler, *middleware.Metrics) {
	t.Helper()
	m, err := middleware.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := middleware.FormFromContext(r.Context())
		if !ok {
			http.Error(w, "no form", http.StatusInternalServerError)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"user": f.Username()})
	})
	return middleware.ValidateForm(next, append([]middleware.Option{middleware.WithMetrics(m)}, opts...)...), m
}

func post(h http.Handler, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, "/forms", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var m map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &m)
	return rec, m
}

func TestValidateForm_Outcomes(t *testing.T) {
	h, m := newServer(t)

	rec, body := post(h, "application/json", validBody)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "example", body["user"])

	rec, body = post(h, "application/json", blankBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "formErrors", body["type"])
	assert.Len(t, body["value"], 8)

	rec, body = post(h, "application/json", `{"email":"a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unprocessable", body["type"])
	assert.Equal(t, "username", body["value"].(map[string]any)["path"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec, body = post(h, "application/json", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, source.CodeParseError, body["error"].(map[string]any)["code"])

	c := m.Outcomes()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues("form")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues("formErrors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues("unprocessable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.WithLabelValues(middleware.LabelSourceError)))
}

func TestValidateForm_YAMLBody(t *testing.T) {
	h, _ := newServer(t)
	yml := "email: e@example.org\nusername: yaml\npassword: p\naddress:\n  address1: a\n  address2: b\n  city: c\n  zipCode: z\n  country: d\n"
	rec, body := post(h, "application/yaml; charset=utf-8", yml)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "yaml", body["user"])
}

func TestValidateForm_DuplicateKeys(t *testing.T) {
	h, _ := newServer(t)
	rec, body := post(h, "application/json", `{"email":"a","email":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := body["error"].(map[string]any)
	assert.Equal(t, source.CodeDuplicateKey, e["code"])
	assert.Equal(t, "email", e["path"])

	h, _ = newServer(t, middleware.WithSourceOptions(source.Options{DuplicateKeys: source.DuplicateIgnore}))
	rec, _ = post(h, "application/json", `{"email":"a","email":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "still missing fields")
}

func TestValidateForm_CustomValidator(t *testing.T) {
	val := formskema.NewValidator(formskema.WithRule(formskema.FieldPassword, rules.MinLength(20)))
	h, _ := newServer(t, middleware.WithValidator(val), middleware.WithLogger(nil))
	rec, body := post(h, "application/json", validBody)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	vs := body["value"].([]any)
	require.Len(t, vs, 1)
	assert.Equal(t, "password", vs[0].(map[string]any)["path"])
	assert.Equal(t, "too_short", vs[0].(map[string]any)["code"])
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := middleware.NewMetrics(reg)
	require.NoError(t, err)
	_, err = middleware.NewMetrics(reg)
	assert.Error(t, err)

	m, err := middleware.NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Outcomes())
}

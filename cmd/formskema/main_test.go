package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/internal/config"
	"github.com/reoring/formskema/internal/logging"
)

const validForm = `{"email":"example@example.org","username":"example","password":"guest123456",
"address":{"address1":"MyStreet","address2":"MyApt","city":"MyCity","zipCode":"MyZipCode","country":"MyCountry"}}`

const blankForm = `{"email":"","username":"","password":"",
"address":{"address1":"","address2":"","city":"","zipCode":"","country":""}}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { i18n.SetLanguage("en") })
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exitError
	require.True(t, errors.As(err, &ee), "unexpected error: %v", err)
	return ee.code
}

func TestCheck_Form(t *testing.T) {
	out, err := execute(t, "", "check", writeFile(t, "ok.json", validForm))
	assert.Equal(t, 0, exitCode(t, err))
	assert.True(t, strings.HasPrefix(out, headerForm+"\n"), out)
	assert.Contains(t, out, `"zipCode": "MyZipCode"`)
}

func TestCheck_FormErrors(t *testing.T) {
	out, err := execute(t, "", "check", writeFile(t, "blank.yaml", "email: ''\nusername: ''\npassword: ''\naddress: {address1: '', address2: '', city: '', zipCode: '', country: ''}\n"))
	assert.Equal(t, 1, exitCode(t, err))
	assert.True(t, strings.HasPrefix(out, headerFormErrors+"\n"), out)
	assert.Equal(t, 8, strings.Count(out, `"code": "empty"`))
}

func TestCheck_Unprocessable(t *testing.T) {
	out, err := execute(t, `{"email": false}`, "check", "-")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, headerUnprocessable)
	assert.Contains(t, out, `"code": "wrong_type"`)

	out, err = execute(t, `{"email": `, "check", "-")
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, `"code": "parse_error"`)
}

func TestCheck_SeveralFiles(t *testing.T) {
	ok := writeFile(t, "ok.json", validForm)
	bad := writeFile(t, "bad.json", blankForm)
	out, err := execute(t, "", "check", ok, bad)
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, "==> "+ok+" <==")
	assert.Contains(t, out, "==> "+bad+" <==")
}

func TestCheck_ConfigAndLanguage(t *testing.T) {
	cfg := writeFile(t, "formskema.yaml", "rules:\n  password:\n    - type: min_length\n      min: 20\n")
	out, err := execute(t, "", "--config", cfg, "--lang", "ja", "check", writeFile(t, "ok.json", validForm))
	assert.Equal(t, 1, exitCode(t, err))
	assert.Contains(t, out, `"code": "too_short"`)
	assert.Contains(t, out, i18n.T("too_short", map[string]string{"min": "20", "got": "11"}))
}

func TestCheck_IOAndConfigErrors(t *testing.T) {
	_, err := execute(t, "", "check", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	var ee *exitError
	assert.False(t, errors.As(err, &ee))

	_, err = execute(t, "", "check", writeFile(t, "form.txt", validForm))
	assert.Error(t, err)

	_, err = execute(t, "", "--config", writeFile(t, "bad.yaml", "language: fr\n"), "check", "-")
	assert.Error(t, err)

	_, err = execute(t, "", "check")
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	out, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	assert.Contains(t, out, `"zipCode"`)
}

func TestRouter(t *testing.T) {
	h, err := newRouter(config.Default(), logging.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/forms", "application/json", strings.NewReader(validForm))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"type":"form"`)

	resp, err = http.Post(srv.URL+"/forms", "application/json", strings.NewReader(blankForm))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/schema")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `formskema_outcomes_total{outcome="form"} 1`)
	assert.Contains(t, string(body), `formskema_outcomes_total{outcome="formErrors"} 1`)

	resp, err = http.Get(srv.URL + "/forms")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

package i18n

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	assert.Equal(t, "must not be blank", T("empty", nil))

	SetLanguage("ja")
	assert.Equal(t, "空にできません", T("empty", nil))

	// unsupported languages fall back to en
	SetLanguage("fr")
	assert.Equal(t, "required field missing", T("missing_field", nil))
}

func TestTranslator_FillsPlaceholders(t *testing.T) {
	msg := T("wrong_type", map[string]string{"expected": "string", "found": "bool"})
	assert.Equal(t, "wrong type: expected string, found bool", msg)

	msg = T("too_short", map[string]string{"min": "8"})
	assert.Equal(t, "too short (minimum 8 characters)", msg)
}

func TestTranslator_UnknownCodeEchoes(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X-" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	t.Cleanup(func() { SetTranslator(nil) })

	SetTranslator(upper{})
	assert.Equal(t, "X-empty", T("empty", nil))

	SetTranslator(nil)
	assert.Equal(t, "must not be blank", T("empty", nil))
}

func TestTranslator_ConcurrentSwitch(t *testing.T) {
	t.Cleanup(func() { SetLanguage("en") })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				SetLanguage("ja")
			} else {
				SetLanguage("en")
			}
		}(i)
		go func() {
			defer wg.Done()
			msg := T("empty", nil)
			assert.Contains(t, []string{"must not be blank", "空にできません"}, msg)
		}()
	}
	wg.Wait()
}

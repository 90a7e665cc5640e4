package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for defect and violation codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "found" or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "missing_field":
			return "必須フィールドがありません"
		case "wrong_type":
			return fill("型が不正です ({expected} が必要ですが {found} でした)", data)
		case "empty":
			return "空にできません"
		case "too_short":
			return fill("短すぎます (最小 {min} 文字)", data)
		case "too_long":
			return fill("長すぎます (最大 {max} 文字)", data)
		case "pattern":
			return "形式が一致しません"
		case "invalid_format":
			return fill("{format} の形式が不正です", data)
		case "duplicate_key":
			return "キーが重複しています"
		case "parse_error":
			return "解析エラー"
		case "truncated":
			return "打ち切られました"
		}
	default: // "en"
		switch code {
		case "missing_field":
			return "required field missing"
		case "wrong_type":
			return fill("wrong type: expected {expected}, found {found}", data)
		case "empty":
			return "must not be blank"
		case "too_short":
			return fill("too short (minimum {min} characters)", data)
		case "too_long":
			return fill("too long (maximum {max} characters)", data)
		case "pattern":
			return "does not match the required pattern"
		case "invalid_format":
			return fill("not a valid {format}", data)
		case "duplicate_key":
			return "duplicate key"
		case "parse_error":
			return "parse error"
		case "truncated":
			return "truncated"
		}
	}
	return code
}

// fill replaces {name} placeholders with values from data. Missing entries are
// left verbatim.
func fill(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// current holds the active Translator. It is read on every message lookup,
// possibly from many goroutines, and swapped atomically.
var current atomic.Pointer[translatorHolder]

type translatorHolder struct{ tr Translator }

func init() { current.Store(&translatorHolder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(&translatorHolder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&translatorHolder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
// Safe for concurrent use with SetLanguage and SetTranslator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }

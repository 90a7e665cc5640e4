package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"

	formskema "github.com/reoring/formskema"
)

// jsonReader builds a value tree from the go-json token stream, enforcing
// depth and duplicate-key limits as containers are opened.
type jsonReader struct {
	dec   *gojson.Decoder
	opt   Options
	depth int
}

func decodeJSON(data []byte, opt Options) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newError(CodeParseError, "", "empty input", nil)
	}
	// Decoder.Token does not check separators (colons, commas), so the
	// document is validated as a whole first.
	if !gojson.Valid(data) {
		return nil, newError(CodeParseError, "", "invalid JSON syntax", nil)
	}
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	r := &jsonReader{dec: dec, opt: opt}

	tok, err := r.next(formskema.Path{})
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(CodeParseError, "", "empty input", nil)
		}
		return nil, err
	}
	v, err := r.value(tok, formskema.Path{})
	if err != nil {
		return nil, err
	}
	// exactly one document
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, newError(CodeParseError, "", "unexpected data after document", err)
	}
	return v, nil
}

func (r *jsonReader) next(p formskema.Path) (gojson.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, newError(CodeParseError, p.String(), err.Error(), err)
	}
	return tok, nil
}

func (r *jsonReader) value(tok gojson.Token, p formskema.Path) (any, error) {
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			return r.object(p)
		case '[':
			return r.array(p)
		}
		return nil, newError(CodeParseError, p.String(), fmt.Sprintf("unexpected %q", rune(v)), nil)
	case string:
		return v, nil
	case bool:
		return v, nil
	case gojson.Number:
		return json.Number(string(v)), nil
	case float64:
		return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case nil:
		return nil, nil
	}
	return nil, newError(CodeParseError, p.String(), fmt.Sprintf("unexpected token %T", tok), nil)
}

func (r *jsonReader) enter(p formskema.Path) error {
	r.depth++
	if r.opt.MaxDepth > 0 && r.depth > r.opt.MaxDepth {
		return newError(CodeParseError, p.String(), "max depth exceeded", nil)
	}
	return nil
}

func (r *jsonReader) object(p formskema.Path) (any, error) {
	if err := r.enter(p); err != nil {
		return nil, err
	}
	m := make(map[string]any)
	for {
		tok, err := r.next(p)
		if err != nil {
			return nil, unexpectedEOF(p, err)
		}
		if d, ok := tok.(gojson.Delim); ok && d == '}' {
			r.depth--
			return m, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newError(CodeParseError, p.String(), "object key must be a string", nil)
		}
		kp := p.Field(key)
		if _, dup := m[key]; dup && r.opt.DuplicateKeys == DuplicateError {
			return nil, newError(CodeDuplicateKey, kp.String(), "key '"+key+"' duplicated", nil)
		}
		vt, err := r.next(kp)
		if err != nil {
			return nil, unexpectedEOF(kp, err)
		}
		v, err := r.value(vt, kp)
		if err != nil {
			return nil, err
		}
		m[key] = v
	}
}

func (r *jsonReader) array(p formskema.Path) (any, error) {
	if err := r.enter(p); err != nil {
		return nil, err
	}
	arr := []any{}
	for i := 0; ; i++ {
		ip := p.Field(strconv.Itoa(i))
		tok, err := r.next(ip)
		if err != nil {
			return nil, unexpectedEOF(ip, err)
		}
		if d, ok := tok.(gojson.Delim); ok && d == ']' {
			r.depth--
			return arr, nil
		}
		v, err := r.value(tok, ip)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(p formskema.Path, err error) error {
	if errors.Is(err, io.EOF) {
		return newError(CodeParseError, p.String(), "unexpected end of input", err)
	}
	return err
}

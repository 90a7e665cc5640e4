package formskema

import gojson "github.com/goccy/go-json"

// marshalJSON is the single JSON encoder used for rendering outcomes.
func marshalJSON(v any) ([]byte, error) { return gojson.Marshal(v) }

package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goliatone/go-openc2/pkg/schema"
)

// Decode converts raw input into a JSON-like mapping. Accepted inputs are
// JSON text ([]byte, json.RawMessage, string), an io.Reader yielding JSON, or
// an already decoded map. Numbers are normalised to int64 when integral and
// float64 otherwise.
func Decode(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, schema.NewParseError("input is empty")
	case map[string]any:
		return v, nil
	case json.RawMessage:
		return decodeBytes(v)
	case []byte:
		return decodeBytes(v)
	case string:
		return decodeBytes([]byte(v))
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, fmt.Errorf("dispatch: read input: %w", err)
		}
		return decodeBytes(data)
	case *schema.Object:
		return v.Values(), nil
	}
	return nil, schema.NewParseError("can't parse input of type %T", raw)
}

func decodeBytes(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, schema.NewParseError("input is empty")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, &schema.Error{Kind: schema.ErrorParse, Reason: "invalid JSON: " + err.Error(), Err: err}
	}
	if dec.More() {
		return nil, schema.NewParseError("trailing data after JSON value")
	}
	m, ok := Normalize(out).(map[string]any)
	if !ok {
		return nil, schema.NewParseError("expected a JSON object, got %s", describeJSON(out))
	}
	return m, nil
}

// Normalize walks decoded JSON replacing json.Number values with int64 or
// float64.
func Normalize(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for key, item := range v {
			v[key] = Normalize(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = Normalize(item)
		}
		return v
	}
	return value
}

func describeJSON(value any) string {
	switch value.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return "number"
}

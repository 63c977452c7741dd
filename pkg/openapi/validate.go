package openapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-openc2/pkg/schema"
)

// Validator checks wire values against the component schemas of an exported
// document. It complements schema construction: it sees the canonical wire
// form only, so it rejects inputs the constructors would normalise, such as
// lowercase hash algorithms spelled "SHA-256".
type Validator struct {
	doc *openapi3.T
}

// NewValidator wraps doc, typically the result of Export.
func NewValidator(doc *openapi3.T) (*Validator, error) {
	if doc == nil || doc.Components == nil || doc.Components.Schemas == nil {
		return nil, errors.New("openapi: document has no component schemas")
	}
	return &Validator{doc: doc}, nil
}

// Validate checks value against the flat schema registered for kind/name.
// *schema.Object values are checked in their encoded form.
func (v *Validator) Validate(kind schema.Kind, name string, value any) error {
	return v.visit(SchemaKey(kind, name), value)
}

// ValidateTarget checks a wrapped {type: specifier} target.
func (v *Validator) ValidateTarget(value any) error {
	return v.visit(TargetChoice, value)
}

// ValidateActuator checks a wrapped {type: specifier} actuator.
func (v *Validator) ValidateActuator(value any) error {
	return v.visit(ActuatorChoice, value)
}

// ValidateMessage checks a command or response, chosen the same way the
// parser chooses: "action" selects command and "status" selects response.
func (v *Validator) ValidateMessage(value any) error {
	doc, err := toJSON(value)
	if err != nil {
		return err
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return schema.NewParseError("message must be a JSON object")
	}
	switch {
	case m["action"] != nil:
		return v.visitJSON(SchemaKey(schema.KindMessage, "command"), m)
	case m["status"] != nil:
		return v.visitJSON(SchemaKey(schema.KindMessage, "response"), m)
	}
	return schema.NewParseError("message must contain an action or a status")
}

func (v *Validator) visit(key string, value any) error {
	doc, err := toJSON(value)
	if err != nil {
		return err
	}
	return v.visitJSON(key, doc)
}

func (v *Validator) visitJSON(key string, doc any) error {
	ref, ok := v.doc.Components.Schemas[key]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("openapi: no schema named %q", key)
	}
	return ref.Value.VisitJSON(doc)
}

// toJSON converts value to the generic form produced by encoding/json so
// numbers reach the schema visitor as float64.
func toJSON(value any) (any, error) {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("openapi: encode value: %w", err)
		}
		data = encoded
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, schema.NewParseError("invalid JSON: %v", err)
	}
	return out, nil
}

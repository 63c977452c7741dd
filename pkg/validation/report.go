// Package validation turns parse and wire-schema failures into a flat list
// of issues suitable for CLI and API reports.
package validation

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/openapi"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Issue represents a validation error with optional location metadata.
type Issue struct {
	Source  string `json:"source"`
	Kind    string `json:"kind,omitempty"`
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Result captures the outcome of Check.
type Result struct {
	Valid  bool           `json:"valid"`
	Type   string         `json:"type,omitempty"`
	Issues []Issue        `json:"issues,omitempty"`
	Object *schema.Object `json:"-"`
}

// Issue sources.
const (
	SourceParse   = "parse"
	SourceOpenAPI = "openapi"
)

// Option configures Check.
type Option func(*options)

type options struct {
	allowCustom bool
	validator   *openapi.Validator
}

// WithAllowCustom lets unknown content through the parser.
func WithAllowCustom(allow bool) Option {
	return func(o *options) {
		o.allowCustom = allow
	}
}

// WithValidator additionally checks the parsed object's wire form against
// an exported OpenAPI document.
func WithValidator(v *openapi.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// Check parses raw as kind and reports every issue found.
func Check(engine *dispatch.Engine, raw any, kind schema.Kind, opts ...Option) Result {
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if engine == nil {
		return Result{Issues: []Issue{{Source: SourceParse, Message: "engine is not configured"}}}
	}

	obj, err := engine.ParseKind(raw, kind, dispatch.AllowCustom(cfg.allowCustom))
	if err != nil {
		return Result{Issues: []Issue{issueFromError(err)}}
	}
	result := Result{Valid: true, Type: obj.TypeName(), Object: obj}
	if cfg.validator == nil || obj.IsCustomContent() {
		return result
	}

	var wireErr error
	switch kind {
	case schema.KindMessage:
		wireErr = cfg.validator.ValidateMessage(obj)
	case schema.KindTarget:
		wireErr = cfg.validator.ValidateTarget(obj)
	case schema.KindActuator:
		wireErr = cfg.validator.ValidateActuator(obj)
	default:
		wireErr = cfg.validator.Validate(obj.Kind(), obj.TypeName(), obj)
	}
	if wireErr != nil {
		result.Valid = false
		result.Issues = append(result.Issues, issueFromError(wireErr))
	}
	return result
}

func issueFromError(err error) Issue {
	if err == nil {
		return Issue{Source: SourceParse, Message: "unknown error"}
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := ""
		if parts := schemaErr.JSONPointer(); len(parts) > 0 {
			pointer = "#/" + strings.Join(parts, "/")
		}
		return Issue{
			Source:  SourceOpenAPI,
			Path:    pointer,
			Field:   fieldPathFromPointer(pointer),
			Message: strings.TrimSpace(schemaErr.Reason),
		}
	}

	issue := Issue{Source: SourceParse, Message: strings.TrimPrefix(strings.TrimSpace(err.Error()), "schema: ")}
	var typed *schema.Error
	if errors.As(err, &typed) {
		issue.Kind = typed.Kind.String()
		issue.Field = fieldFromError(typed)
	}
	return issue
}

func fieldFromError(err *schema.Error) string {
	var parts []string
	if err.Type != "" {
		parts = append(parts, err.Type)
	}
	switch {
	case err.Property != "" && err.Kind != schema.ErrorCustomContent:
		parts = append(parts, err.Property)
	case len(err.Properties) == 1:
		parts = append(parts, err.Properties[0])
	}
	return strings.Join(parts, ".")
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}

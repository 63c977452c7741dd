package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

const (
	// Version is the OpenAPI version emitted by Export.
	Version = "3.0.3"

	// TargetChoice and ActuatorChoice name the union schemas for the wrapped
	// {type: specifier} forms.
	TargetChoice   = "TargetChoice"
	ActuatorChoice = "ActuatorChoice"

	// CommandMediaType and ResponseMediaType label the endpoint bodies.
	CommandMediaType  = "application/json"
	ResponseMediaType = "application/json"

	defaultTitle   = "OpenC2"
	defaultVersion = "1.0"
	defaultPath    = "/openc2"
)

// Option customises the exported document.
type Option func(*config)

type config struct {
	title       string
	version     string
	description string
	path        string
	servers     []string
}

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(title) != "" {
			cfg.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(version) != "" {
			cfg.version = version
		}
	}
}

// WithDescription sets info.description.
func WithDescription(text string) Option {
	return func(cfg *config) {
		cfg.description = text
	}
}

// WithPath sets the path of the command endpoint.
func WithPath(path string) Option {
	return func(cfg *config) {
		if strings.HasPrefix(path, "/") {
			cfg.path = path
		}
	}
}

// WithServers lists server URLs.
func WithServers(urls ...string) Option {
	return func(cfg *config) {
		cfg.servers = append(cfg.servers, urls...)
	}
}

// SchemaKey returns the component schema name for a type. Colons are not
// valid in component names and are replaced with dots.
func SchemaKey(kind schema.Kind, name string) string {
	return kind.String() + "." + strings.ReplaceAll(name, ":", ".")
}

// Export builds and validates an OpenAPI document describing every type in
// reg. Messages that resolve in the registry get a POST endpoint accepting a
// command and returning a response.
func Export(ctx context.Context, reg *registry.Registry, opts ...Option) (*openapi3.T, error) {
	data, err := ExportJSON(reg, opts...)
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

// ExportJSON returns the raw JSON document without loading it.
func ExportJSON(reg *registry.Registry, opts ...Option) ([]byte, error) {
	if reg == nil {
		return nil, errors.New("openapi: registry is required")
	}
	cfg := config{title: defaultTitle, version: defaultVersion, path: defaultPath}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	b := newBuilder(reg)
	for _, entry := range reg.Entries() {
		if entry.Extension {
			if _, shadowed := reg.Lookup(entry.Type.Kind(), entry.Type.Name()); shadowed {
				continue
			}
		}
		b.add(entry.Type)
	}
	b.schemas[TargetChoice] = b.choice(schema.KindTarget)
	b.schemas[ActuatorChoice] = b.choice(schema.KindActuator)

	info := map[string]any{"title": cfg.title, "version": cfg.version}
	if cfg.description != "" {
		info["description"] = cfg.description
	}
	doc := map[string]any{
		"openapi":    Version,
		"info":       info,
		"paths":      b.paths(cfg.path),
		"components": map[string]any{"schemas": b.schemas},
	}
	if len(cfg.servers) > 0 {
		servers := make([]any, 0, len(cfg.servers))
		for _, url := range cfg.servers {
			servers = append(servers, map[string]any{"url": url})
		}
		doc["servers"] = servers
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	return data, nil
}

type builder struct {
	reg     *registry.Registry
	schemas map[string]any
	keys    map[*schema.Type]string
}

func newBuilder(reg *registry.Registry) *builder {
	return &builder{
		reg:     reg,
		schemas: make(map[string]any),
		keys:    make(map[*schema.Type]string),
	}
}

func ref(key string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + key}
}

// add registers the flat schema for t and returns its component key. Types
// are marked before their fields are walked so self references terminate.
func (b *builder) add(t *schema.Type) string {
	if key, ok := b.keys[t]; ok {
		return key
	}
	key := SchemaKey(t.Kind(), t.Name())
	b.keys[t] = key

	properties := make(map[string]any, len(t.Fields()))
	var required []any
	for _, field := range t.Fields() {
		properties[field.Name] = b.property(field.Property)
		if field.Property.Descriptor().Required {
			required = append(required, field.Name)
		}
	}

	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if desc := t.Description(); desc != "" {
		out["description"] = desc
	}
	if len(required) > 0 {
		out["required"] = required
	}
	switch {
	case t.Kind() == schema.KindArgs && t.Name() == "args":
		for _, name := range b.reg.ListExtensions(schema.KindArgs) {
			if ext, ok := b.reg.LookupExtension(schema.KindArgs, name); ok && ext != t {
				properties[name] = ref(b.add(ext))
			}
		}
		out["additionalProperties"] = false
	case t.Kind() == schema.KindMessage:
		out["additionalProperties"] = true
	default:
		out["additionalProperties"] = false
	}
	b.schemas[key] = out
	return key
}

func (b *builder) property(p schema.Property) map[string]any {
	var out map[string]any
	switch prop := p.(type) {
	case *schema.EnumProperty:
		allowed := make([]any, 0, len(prop.Allowed()))
		for _, value := range prop.Allowed() {
			allowed = append(allowed, value)
		}
		out = map[string]any{"type": "string", "enum": allowed}
	case *schema.StringProperty:
		out = map[string]any{"type": "string"}
	case *schema.IntegerProperty:
		out = map[string]any{"type": "integer", "format": "int64"}
		applyBounds(out, prop.Bounds)
	case *schema.FloatProperty:
		out = map[string]any{"type": "number"}
		applyBounds(out, prop.Bounds)
	case *schema.BooleanProperty:
		out = map[string]any{"type": "boolean"}
	case *schema.BinaryProperty:
		out = map[string]any{"type": "string", "format": "byte"}
	case *schema.DateTimeProperty:
		out = map[string]any{
			"type":        "integer",
			"format":      "int64",
			"minimum":     schema.MinDateTime,
			"description": "Milliseconds since the epoch.",
		}
	case *schema.HashesProperty:
		algorithms := make(map[string]any)
		for _, name := range prop.Algorithms() {
			algorithms[name] = map[string]any{"type": "string", "pattern": prop.Pattern(name)}
		}
		out = map[string]any{
			"type":                 "object",
			"minProperties":        1,
			"properties":           algorithms,
			"additionalProperties": false,
		}
	case *schema.DictionaryProperty:
		out = map[string]any{"type": "object", "minProperties": 1}
		if keys := prop.AllowedKeys(); len(keys) > 0 {
			allowed := make(map[string]any, len(keys))
			for _, key := range keys {
				allowed[key] = map[string]any{}
			}
			out["properties"] = allowed
			out["additionalProperties"] = false
		} else {
			out["additionalProperties"] = true
		}
	case *schema.ListProperty:
		out = map[string]any{"type": "array", "items": b.property(prop.Contained())}
		if n := prop.MaxItems(); n > 0 {
			out["maxItems"] = n
		}
		if prop.Unique() {
			out["uniqueItems"] = true
		}
	case *schema.ComponentProperty:
		if prop.Kind() == schema.KindActuator {
			return ref(ActuatorChoice)
		}
		return ref(TargetChoice)
	case *schema.ArgsProperty:
		if base, ok := b.reg.Resolve(schema.KindArgs, "args"); ok {
			return ref(b.add(base))
		}
		out = map[string]any{"type": "object"}
	case *schema.EmbeddedProperty:
		if t := prop.Type(); t != nil {
			return ref(b.add(t))
		}
		out = map[string]any{"type": "object"}
	default:
		out = map[string]any{}
	}
	if desc := p.Descriptor(); desc.HasFixed {
		out["enum"] = []any{desc.Fixed}
	}
	return out
}

func applyBounds(out map[string]any, bounds func() (float64, float64)) {
	lo, hi := bounds()
	if !math.IsNaN(lo) {
		out["minimum"] = lo
	}
	if !math.IsNaN(hi) {
		out["maximum"] = hi
	}
}

// choice builds the union of wrapped {type: specifier} forms for kind. Each
// branch requires its own single key so at most one branch matches.
func (b *builder) choice(kind schema.Kind) map[string]any {
	names := b.reg.List(kind)
	branches := make([]any, 0, len(names))
	for _, name := range names {
		t, ok := b.reg.Resolve(kind, name)
		if !ok {
			continue
		}
		flat := ref(b.add(t))
		specifier := flat
		if t.Collapsible() {
			local, _ := t.Property(t.LocalName())
			specifier = map[string]any{"anyOf": []any{b.property(local), flat}}
		}
		branches = append(branches, map[string]any{
			"type":                 "object",
			"properties":           map[string]any{name: specifier},
			"required":             []any{name},
			"additionalProperties": false,
		})
	}
	if len(branches) == 0 {
		return map[string]any{"type": "object", "minProperties": 1, "maxProperties": 1}
	}
	return map[string]any{"oneOf": branches}
}

func (b *builder) paths(path string) map[string]any {
	command, hasCommand := b.reg.Resolve(schema.KindMessage, "command")
	response, hasResponse := b.reg.Resolve(schema.KindMessage, "response")
	if !hasCommand || !hasResponse {
		return map[string]any{}
	}
	return map[string]any{
		path: map[string]any{
			"post": map[string]any{
				"operationId": "sendCommand",
				"summary":     "Send an OpenC2 command to a consumer.",
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						CommandMediaType: map[string]any{"schema": ref(b.add(command))},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "OpenC2 response.",
						"content": map[string]any{
							ResponseMediaType: map[string]any{"schema": ref(b.add(response))},
						},
					},
				},
			},
		},
	}
}

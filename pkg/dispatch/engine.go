// Package dispatch parses raw OpenC2 JSON into typed schema objects.
//
// The Engine resolves discriminants against a registry, unwraps collapsed
// specifiers, and recurses into nested targets, actuators and args by acting
// as the schema.Resolver for every object it constructs.
package dispatch

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Type names the engine expects in the registry.
const (
	CommandType  = "command"
	ResponseType = "response"
	ArgsType     = "args"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for recovery-path diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaultAllowCustom sets the allow-custom flag used when a parse call
// does not pass AllowCustom.
func WithDefaultAllowCustom(allow bool) Option {
	return func(e *Engine) {
		e.allowCustom = allow
	}
}

// ParseOption configures a single parse call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	allowCustom bool
}

// AllowCustom tolerates unknown properties and passes unregistered content
// through instead of failing.
func AllowCustom(allow bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.allowCustom = allow
	}
}

// Engine resolves raw fragments through a registry. It is safe for concurrent
// use once registration has finished.
type Engine struct {
	registry    *registry.Registry
	logger      *slog.Logger
	allowCustom bool
}

// New creates an engine bound to reg.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if e.registry == nil {
		e.registry = registry.New()
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Registry exposes the backing registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

func (e *Engine) config(opts []ParseOption) parseConfig {
	cfg := parseConfig{allowCustom: e.allowCustom}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (e *Engine) objectOptions(allowCustom bool, extra ...schema.Option) []schema.Option {
	opts := []schema.Option{schema.WithAllowCustom(allowCustom), schema.WithResolver(e)}
	return append(opts, extra...)
}

// Parse reads a top-level message: a mapping with "action" is a command and a
// mapping with "status" is a response.
func (e *Engine) Parse(raw any, opts ...ParseOption) (*schema.Object, error) {
	cfg := e.config(opts)
	if obj, ok := raw.(*schema.Object); ok && obj != nil {
		if obj.Kind() == schema.KindMessage {
			return obj, nil
		}
		return nil, schema.NewParseError("expected a command or response, got %s %q", obj.Kind(), obj.TypeName())
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	var name string
	switch {
	case hasKey(m, "action"):
		name = CommandType
	case hasKey(m, "status"):
		name = ResponseType
	default:
		return nil, schema.NewParseError("message must contain an action or a status")
	}
	t, ok := e.registry.Resolve(schema.KindMessage, name)
	if !ok {
		return nil, schema.NewParseError("no %s type is registered", name)
	}
	return schema.New(t, m, e.objectOptions(cfg.allowCustom)...)
}

// ParseTarget reads a {type: specifier} target fragment.
func (e *Engine) ParseTarget(raw any, opts ...ParseOption) (*schema.Object, error) {
	return e.ParseComponent(raw, schema.KindTarget, opts...)
}

// ParseActuator reads a {type: specifier} actuator fragment.
func (e *Engine) ParseActuator(raw any, opts ...ParseOption) (*schema.Object, error) {
	return e.ParseComponent(raw, schema.KindActuator, opts...)
}

// ParseComponent reads a single-discriminant fragment of the given kind.
func (e *Engine) ParseComponent(raw any, kind schema.Kind, opts ...ParseOption) (*schema.Object, error) {
	cfg := e.config(opts)
	if obj, ok := raw.(*schema.Object); ok && obj != nil {
		return e.ResolveComponent(obj, kind, cfg.allowCustom)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return e.ResolveComponent(m, kind, cfg.allowCustom)
}

// ParseArgs reads a command args mapping, resolving profile args keys through
// the extension table.
func (e *Engine) ParseArgs(raw any, opts ...ParseOption) (*schema.Object, error) {
	cfg := e.config(opts)
	if obj, ok := raw.(*schema.Object); ok && obj != nil {
		if obj.Kind() == schema.KindArgs {
			return obj, nil
		}
		return nil, schema.NewParseError("expected args, got %s %q", obj.Kind(), obj.TypeName())
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return e.ResolveArgs(m, cfg.allowCustom)
}

// ParseKind dispatches to the parser for kind.
func (e *Engine) ParseKind(raw any, kind schema.Kind, opts ...ParseOption) (*schema.Object, error) {
	switch kind {
	case schema.KindMessage:
		return e.Parse(raw, opts...)
	case schema.KindArgs:
		return e.ParseArgs(raw, opts...)
	}
	return e.ParseComponent(raw, kind, opts...)
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

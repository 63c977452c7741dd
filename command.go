package openc2

import (
	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// CommandOption configures NewCommand.
type CommandOption func(*commandConfig)

type commandConfig struct {
	values      map[string]any
	allowCustom bool
}

// WithArgs attaches args. raw may be an args object or a mapping.
func WithArgs(raw any) CommandOption {
	return func(cfg *commandConfig) {
		cfg.values["args"] = raw
	}
}

// WithActuator attaches an actuator object or {type: specifier} mapping.
func WithActuator(raw any) CommandOption {
	return func(cfg *commandConfig) {
		cfg.values["actuator"] = raw
	}
}

// WithCommandID sets command_id.
func WithCommandID(id string) CommandOption {
	return func(cfg *commandConfig) {
		cfg.values["command_id"] = id
	}
}

// WithGeneratedID sets command_id to a fresh random identifier.
func WithGeneratedID() CommandOption {
	return func(cfg *commandConfig) {
		cfg.values["command_id"] = catalog.NewCommandID()
	}
}

// WithCustomContent accepts unregistered targets, actuators and args.
func WithCustomContent() CommandOption {
	return func(cfg *commandConfig) {
		cfg.allowCustom = true
	}
}

// NewCommand builds a command against the default engine. target may be a
// target object or a {type: specifier} mapping.
func NewCommand(action string, target any, opts ...CommandOption) (*Object, error) {
	cfg := commandConfig{values: map[string]any{"action": action, "target": target}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return schema.New(catalog.Command, cfg.values,
		schema.WithResolver(Default()),
		schema.WithAllowCustom(cfg.allowCustom),
	)
}

// NewResponse builds a response. An empty statusText or results is omitted.
func NewResponse(status int, statusText string, results map[string]any) (*Object, error) {
	values := map[string]any{"status": status}
	if statusText != "" {
		values["status_text"] = statusText
	}
	if len(results) > 0 {
		values["results"] = results
	}
	return schema.New(catalog.Response, values)
}

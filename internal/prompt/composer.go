// Package prompt builds OpenC2 commands interactively by walking the
// registered type definitions and asking for one field at a time.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/schema"
)

const (
	skipOption    = "(skip)"
	maxEmbedDepth = 2
)

// Composer asks for a command through a Driver.
type Composer struct {
	engine *dispatch.Engine
	driver Driver
}

// NewComposer returns a composer over engine's registry.
func NewComposer(engine *dispatch.Engine, driver Driver) (*Composer, error) {
	if engine == nil {
		return nil, errors.New("prompt: engine is required")
	}
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	return &Composer{engine: engine, driver: driver}, nil
}

// Compose prompts for an action, a target, and optionally an actuator, args
// and a command id, then returns the validated command.
func (c *Composer) Compose(ctx context.Context) (*schema.Object, error) {
	reg := c.engine.Registry()
	command, ok := reg.Resolve(schema.KindMessage, dispatch.CommandType)
	if !ok {
		return nil, errors.New("prompt: no command type is registered")
	}
	values := make(map[string]any)

	actions := catalog.Actions
	if prop, ok := command.Property("action"); ok {
		if enum, ok := prop.(*schema.EnumProperty); ok {
			actions = enum.Allowed()
		}
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: "Action", Options: actions, PageSize: 10})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(actions) {
		return nil, fmt.Errorf("prompt: invalid action selection %d", idx)
	}
	values["action"] = actions[idx]

	target, err := c.component(ctx, schema.KindTarget, true)
	if err != nil {
		return nil, err
	}
	values["target"] = target

	actuator, err := c.component(ctx, schema.KindActuator, false)
	if err != nil {
		return nil, err
	}
	if actuator != nil {
		values["actuator"] = actuator
	}

	args, err := c.args(ctx)
	if err != nil {
		return nil, err
	}
	if args != nil {
		values["args"] = args
	}

	withID, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Generate a command id?", Default: true})
	if err != nil {
		return nil, err
	}
	if withID {
		values["command_id"] = catalog.NewCommandID()
	}

	return schema.New(command, values, schema.WithResolver(c.engine))
}

// component selects a type of kind and fills its fields. Optional components
// are offered behind a confirmation and return nil when declined.
func (c *Composer) component(ctx context.Context, kind schema.Kind, required bool) (*schema.Object, error) {
	reg := c.engine.Registry()
	names := reg.List(kind)
	if len(names) == 0 {
		if required {
			return nil, fmt.Errorf("prompt: no %s types are registered", kind)
		}
		return nil, nil
	}
	if !required {
		add, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add " + articleFor(kind.String()) + " " + kind.String() + "?"})
		if err != nil || !add {
			return nil, err
		}
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: strings.ToUpper(kind.String()[:1]) + kind.String()[1:] + " type", Options: names, PageSize: 12})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(names) {
		return nil, fmt.Errorf("prompt: invalid %s selection %d", kind, idx)
	}
	t, _ := reg.Resolve(kind, names[idx])
	if desc := t.Description(); desc != "" {
		if err := c.driver.Info(ctx, desc); err != nil {
			return nil, err
		}
	}
	values, err := c.fields(ctx, t, 0)
	if err != nil {
		return nil, err
	}
	return schema.New(t, values, schema.WithResolver(c.engine))
}

func (c *Composer) args(ctx context.Context) (*schema.Object, error) {
	reg := c.engine.Registry()
	base, ok := reg.Lookup(schema.KindArgs, dispatch.ArgsType)
	if !ok {
		return nil, nil
	}
	add, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add args?"})
	if err != nil || !add {
		return nil, err
	}
	values, err := c.fields(ctx, base, 0)
	if err != nil {
		return nil, err
	}
	for _, name := range reg.ListExtensions(schema.KindArgs) {
		ext, _ := reg.LookupExtension(schema.KindArgs, name)
		addExt, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add " + name + " args?"})
		if err != nil {
			return nil, err
		}
		if !addExt {
			continue
		}
		extValues, err := c.fields(ctx, ext, 0)
		if err != nil {
			return nil, err
		}
		values[name] = extValues
	}
	if len(values) == 0 {
		return nil, nil
	}
	return c.engine.ResolveArgs(values, false)
}

// fields asks for every declared field of t. Empty answers skip optional
// fields.
func (c *Composer) fields(ctx context.Context, t *schema.Type, depth int) (map[string]any, error) {
	values := make(map[string]any)
	for _, field := range t.Fields() {
		value, ok, err := c.field(ctx, t, field, depth)
		if err != nil {
			return nil, err
		}
		if ok {
			values[field.Name] = value
		}
	}
	return values, nil
}

func (c *Composer) field(ctx context.Context, t *schema.Type, field schema.Field, depth int) (any, bool, error) {
	label := t.Name() + "." + field.Name
	required := field.Property.Descriptor().Required

	switch prop := field.Property.(type) {
	case *schema.EnumProperty:
		options := prop.Allowed()
		if !required {
			options = append([]string{skipOption}, options...)
		}
		idx, err := c.driver.Select(ctx, SelectConfig{Message: label, Options: options})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(options) || options[idx] == skipOption {
			return nil, false, nil
		}
		return options[idx], true, nil

	case *schema.BooleanProperty:
		value, err := c.driver.Confirm(ctx, ConfirmConfig{Message: label})
		if err != nil {
			return nil, false, err
		}
		return value, value || required, nil

	case *schema.ListProperty:
		if enum, ok := prop.Contained().(*schema.EnumProperty); ok {
			idx, err := c.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: enum.Allowed()})
			if err != nil {
				return nil, false, err
			}
			items := make([]any, 0, len(idx))
			for _, i := range idx {
				items = append(items, enum.Allowed()[i])
			}
			return items, len(items) > 0, nil
		}
		text, err := c.input(ctx, label+" (comma separated)", field.Property, required)
		if err != nil || text == "" {
			return nil, false, err
		}
		return splitList(text), true, nil

	case *schema.HashesProperty, *schema.DictionaryProperty:
		text, err := c.input(ctx, label+" (key=value, comma separated)", field.Property, required)
		if err != nil || text == "" {
			return nil, false, err
		}
		return splitPairs(text), true, nil

	case *schema.EmbeddedProperty:
		inner := prop.Type()
		if inner == nil || depth >= maxEmbedDepth {
			return nil, false, nil
		}
		add, err := c.driver.Confirm(ctx, ConfirmConfig{Message: "Add " + label + "?", Default: required})
		if err != nil || !add {
			return nil, false, err
		}
		values, err := c.fields(ctx, inner, depth+1)
		if err != nil {
			return nil, false, err
		}
		return values, len(values) > 0, nil

	case *schema.ComponentProperty, *schema.ArgsProperty:
		return nil, false, nil
	}

	text, err := c.input(ctx, label, field.Property, required)
	if err != nil || text == "" {
		return nil, false, err
	}
	return text, true, nil
}

// input asks for free text. The validator runs the property's own cleaning
// so bad values are re-asked at the prompt.
func (c *Composer) input(ctx context.Context, label string, prop schema.Property, required bool) (string, error) {
	text, err := c.driver.Input(ctx, InputConfig{
		Message: label,
		Validator: func(answer string) error {
			answer = strings.TrimSpace(answer)
			if answer == "" {
				if required {
					return errors.New("a value is required")
				}
				return nil
			}
			var candidate any = answer
			switch prop.(type) {
			case *schema.ListProperty:
				candidate = splitList(answer)
			case *schema.HashesProperty, *schema.DictionaryProperty:
				candidate = splitPairs(answer)
			}
			_, err := schema.CleanValue(prop, candidate, schema.CleanContext{})
			return err
		},
	})
	return strings.TrimSpace(text), err
}

func splitList(text string) []any {
	var out []any
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitPairs(text string) map[string]any {
	out := make(map[string]any)
	for _, part := range strings.Split(text, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			out[key] = strings.TrimSpace(value)
		}
	}
	return out
}

func articleFor(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

package schema

import "errors"

var errNoResolver = errors.New("no resolver configured for polymorphic property")

// ComponentProperty holds a target or actuator resolved through the dispatch
// engine from either an object or its {type: specifier} mapping.
type ComponentProperty struct {
	propertyConfig
	kind Kind
}

// Target declares a property holding any registered target.
func Target(opts ...PropertyOption) *ComponentProperty {
	return &ComponentProperty{propertyConfig: newConfig(opts), kind: KindTarget}
}

// Actuator declares a property holding any registered actuator.
func Actuator(opts ...PropertyOption) *ComponentProperty {
	return &ComponentProperty{propertyConfig: newConfig(opts), kind: KindActuator}
}

// Kind returns the component kind the property resolves.
func (p *ComponentProperty) Kind() Kind {
	return p.kind
}

func (p *ComponentProperty) Clean(value any, ctx CleanContext) (any, error) {
	if obj, ok := value.(*Object); ok && obj != nil {
		if obj.Kind() == p.kind || obj.Kind() == KindProperty {
			return obj, nil
		}
		return nil, invalid(value, "expected a %s, got %s %q", p.kind, obj.Kind(), obj.TypeName())
	}
	if _, ok := toMap(value); !ok {
		return nil, invalid(value, "this property may only contain a dictionary or object")
	}
	if ctx.Resolver == nil {
		return nil, &ValueError{Value: value, Reason: errNoResolver.Error(), Err: errNoResolver}
	}
	return ctx.Resolver.ResolveComponent(value, p.kind, ctx.AllowCustom)
}

// ArgsProperty holds command args resolved through the dispatch engine, which
// also resolves per-profile extension args.
type ArgsProperty struct {
	propertyConfig
}

// Args declares an args property.
func Args(opts ...PropertyOption) *ArgsProperty {
	return &ArgsProperty{propertyConfig: newConfig(opts)}
}

func (p *ArgsProperty) Clean(value any, ctx CleanContext) (any, error) {
	if obj, ok := value.(*Object); ok && obj != nil {
		if obj.Kind() == KindArgs {
			return obj, nil
		}
		return nil, invalid(value, "expected args, got %s %q", obj.Kind(), obj.TypeName())
	}
	if _, ok := toMap(value); !ok {
		return nil, invalid(value, "this property may only contain a dictionary or object")
	}
	if ctx.Resolver == nil {
		return nil, &ValueError{Value: value, Reason: errNoResolver.Error(), Err: errNoResolver}
	}
	return ctx.Resolver.ResolveArgs(value, ctx.AllowCustom)
}

// EmbeddedProperty holds an instance of one specific type, built from a
// mapping when necessary. Embedded objects always encode flat.
type EmbeddedProperty struct {
	propertyConfig
	target func() *Type
}

// Embedded declares a property holding an instance of t.
func Embedded(t *Type, opts ...PropertyOption) *EmbeddedProperty {
	return &EmbeddedProperty{propertyConfig: newConfig(opts), target: func() *Type { return t }}
}

// EmbeddedRef is Embedded for self-referential types, where the *Type is
// not available until after its own fields are declared.
func EmbeddedRef(fn func() *Type, opts ...PropertyOption) *EmbeddedProperty {
	return &EmbeddedProperty{propertyConfig: newConfig(opts), target: fn}
}

// Type returns the embedded type.
func (p *EmbeddedProperty) Type() *Type {
	if p.target == nil {
		return nil
	}
	return p.target()
}

func (p *EmbeddedProperty) Clean(value any, ctx CleanContext) (any, error) {
	t := p.Type()
	if t == nil {
		return nil, invalid(value, "embedded property has no type")
	}
	if obj, ok := value.(*Object); ok && obj != nil {
		if obj.Type() == t {
			return obj, nil
		}
		return nil, invalid(value, "expected a %s object, got %s", t.Name(), obj.TypeName())
	}
	dict, ok := toMap(value)
	if !ok {
		return nil, invalid(value, "must be a %s object or a dictionary", t.Name())
	}
	obj, err := New(t, dict, WithAllowCustom(ctx.AllowCustom), WithResolver(ctx.Resolver))
	if err != nil {
		return nil, &ValueError{Value: value, Reason: err.Error(), Err: err}
	}
	return obj, nil
}

package dispatch

import (
	"github.com/goliatone/go-openc2/pkg/schema"
)

var _ schema.Resolver = (*Engine)(nil)

// ResolveComponent resolves a {type: specifier} fragment. Unknown types pass
// through as opaque content under allow-custom. When construction fails for a
// non-property kind, the discriminant is retried once as a property
// extension before the original error is returned.
func (e *Engine) ResolveComponent(raw any, kind schema.Kind, allowCustom bool) (*schema.Object, error) {
	if obj, ok := raw.(*schema.Object); ok && obj != nil {
		if obj.Kind() == kind || obj.Kind() == schema.KindProperty {
			return obj, nil
		}
		return nil, schema.NewParseError("expected a %s, got %s %q", kind, obj.Kind(), obj.TypeName())
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(m) != 1 {
		return nil, schema.NewParseError("%s must contain exactly one type key, got %d", kind, len(m))
	}
	var name string
	var specifier any
	for key, value := range m {
		name, specifier = key, value
	}

	t, ok := e.registry.Lookup(kind, name)
	if !ok {
		t, ok = e.registry.LookupExtension(kind, name)
	}
	if !ok {
		if allowCustom {
			e.logger.Debug("dispatch: passing through unknown content", "kind", kind.String(), "type", name)
			return schema.Opaque(kind, name, specifier), nil
		}
		return nil, schema.NewCustomContentError(kind, name)
	}

	obj, err := e.construct(t, specifier, allowCustom)
	if err == nil || kind == schema.KindProperty {
		return obj, err
	}
	if propType, ok := e.registry.LookupExtension(schema.KindProperty, name); ok {
		e.logger.Debug("dispatch: retrying as property extension",
			"kind", kind.String(), "type", name, "error", err)
		if fallback, propErr := e.construct(propType, specifier, allowCustom); propErr == nil {
			return fallback, nil
		}
	}
	return nil, err
}

// construct unwraps a specifier into constructor values. Mapping specifiers
// that name declared fields are used directly; anything else becomes the
// value of the type's eponymous field.
func (e *Engine) construct(t *schema.Type, specifier any, allowCustom bool) (*schema.Object, error) {
	values, err := specifierValues(t, specifier)
	if err != nil {
		return nil, err
	}
	return schema.New(t, values, e.objectOptions(allowCustom)...)
}

func specifierValues(t *schema.Type, specifier any) (map[string]any, error) {
	if specifier == nil {
		return map[string]any{}, nil
	}
	if obj, ok := specifier.(*schema.Object); ok && !t.Eponymous() {
		return obj.Values(), nil
	}
	if dict, ok := specifier.(map[string]any); ok {
		if len(dict) == 0 || !t.Eponymous() {
			return dict, nil
		}
		for key := range dict {
			if t.Has(key) {
				return dict, nil
			}
		}
		return map[string]any{t.LocalName(): dict}, nil
	}
	if t.Eponymous() {
		return map[string]any{t.LocalName(): specifier}, nil
	}
	return nil, schema.NewParseError("%s %q requires an object specifier", t.Kind(), t.Name())
}

// ResolveArgs resolves an args mapping. Keys outside the base args schema are
// looked up as args extensions; unknown keys pass through verbatim only under
// allow-custom.
func (e *Engine) ResolveArgs(raw any, allowCustom bool) (*schema.Object, error) {
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
	base, ok := e.registry.Lookup(schema.KindArgs, ArgsType)
	if !ok {
		return nil, &schema.Error{Kind: schema.ErrorCustomContent, Type: ArgsType, Reason: "no base args type is registered"}
	}

	values := make(map[string]any, len(m))
	var extensions []string
	for key, value := range m {
		if value == nil {
			continue
		}
		if base.Has(key) {
			values[key] = value
			continue
		}
		extType, ok := e.registry.LookupExtension(schema.KindArgs, key)
		if !ok {
			if !allowCustom {
				return nil, &schema.Error{
					Kind:   schema.ErrorCustomContent,
					Type:   key,
					Reason: "can't parse unknown args extension \"" + key + "\"",
				}
			}
			values[key] = value
			continue
		}

		switch v := value.(type) {
		case *schema.Object:
			if v.Type() != extType {
				return nil, schema.NewInvalidValueError(ArgsType, key, "expected "+extType.Name()+" args, got "+v.TypeName())
			}
			values[key] = v
		case map[string]any:
			obj, err := schema.New(extType, v, e.objectOptions(allowCustom)...)
			if err != nil {
				return nil, err
			}
			values[key] = obj
		default:
			return nil, schema.NewInvalidValueError(ArgsType, key, "cannot determine extension type")
		}
		e.logger.Debug("dispatch: resolved args extension", "key", key, "type", extType.Name())
		extensions = append(extensions, key)
	}
	return schema.New(base, values, e.objectOptions(allowCustom, schema.WithExtensionKeys(extensions...))...)
}

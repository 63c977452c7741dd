package schema

import (
	"sort"
)

// Option configures object construction.
type Option func(*buildConfig)

type buildConfig struct {
	allowCustom bool
	resolver    Resolver
	extensions  map[string]struct{}
}

// WithAllowCustom tolerates undeclared properties and unknown nested content.
func WithAllowCustom(allow bool) Option {
	return func(cfg *buildConfig) {
		cfg.allowCustom = allow
	}
}

// WithResolver sets the resolver used by target, actuator and args properties.
func WithResolver(r Resolver) Option {
	return func(cfg *buildConfig) {
		cfg.resolver = r
	}
}

// WithExtensionKeys accepts the named undeclared keys without allow-custom.
// The dispatch engine uses it for profile args it has already validated.
func WithExtensionKeys(keys ...string) Option {
	return func(cfg *buildConfig) {
		if cfg.extensions == nil {
			cfg.extensions = make(map[string]struct{}, len(keys))
		}
		for _, key := range keys {
			cfg.extensions[key] = struct{}{}
		}
	}
}

// Object is an immutable, validated instance of a Type. Declared fields are
// read through the typed getters; undeclared values accepted under
// allow-custom or as extension keys are read through Extra.
type Object struct {
	typ      *Type
	values   map[string]any
	extras   []string
	defaults map[string]struct{}
	cfg      buildConfig

	opaque  bool
	payload any
}

// New validates values against t and returns the frozen object.
func New(t *Type, values map[string]any, opts ...Option) (*Object, error) {
	if t == nil {
		return nil, NewDefinitionError("<nil>", "type is required")
	}
	cfg := buildConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if _, ok := values[ReservedTypeKey]; ok {
		return nil, &Error{Kind: ErrorImmutable, Type: t.name, Property: ReservedTypeKey}
	}

	var extra []string
	for key := range values {
		if t.Has(key) {
			continue
		}
		if _, ok := cfg.extensions[key]; ok {
			continue
		}
		extra = append(extra, key)
	}
	if len(extra) > 0 && !cfg.allowCustom {
		return nil, newPropertiesError(ErrorExtraProperties, t.name, extra)
	}

	supplied := make(map[string]any, len(values))
	for key, value := range values {
		if isEmpty(value) {
			continue
		}
		supplied[key] = value
	}

	var missing []string
	for _, field := range t.fields {
		if !field.Property.Descriptor().Required {
			continue
		}
		if _, ok := supplied[field.Name]; !ok {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		return nil, newPropertiesError(ErrorMissingProperties, t.name, missing)
	}

	obj := &Object{
		typ:      t,
		values:   make(map[string]any, len(supplied)),
		defaults: make(map[string]struct{}),
		cfg:      cfg,
	}
	ctx := CleanContext{AllowCustom: cfg.allowCustom, Resolver: cfg.resolver}

	for _, field := range t.fields {
		desc := field.Property.Descriptor()
		raw, ok := supplied[field.Name]
		if !ok {
			if desc.Default == nil {
				continue
			}
			obj.values[field.Name] = deepCopy(desc.Default())
			obj.defaults[field.Name] = struct{}{}
			continue
		}
		cleaned, err := CleanValue(field.Property, raw, ctx)
		if err != nil {
			return nil, wrapInvalid(t.name, field.Name, err)
		}
		obj.values[field.Name] = deepCopy(cleaned)
		if desc.Default != nil && valuesEqual(cleaned, desc.Default()) {
			obj.defaults[field.Name] = struct{}{}
		}
	}

	for key, value := range supplied {
		if t.Has(key) {
			continue
		}
		obj.values[key] = deepCopy(value)
		obj.extras = append(obj.extras, key)
	}
	sort.Strings(obj.extras)

	for _, check := range t.constraints {
		if err := check(obj); err != nil {
			return nil, err
		}
	}
	if t.init != nil {
		if err := t.init(obj); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// MustNew panics when New fails.
func MustNew(t *Type, values map[string]any, opts ...Option) *Object {
	obj, err := New(t, values, opts...)
	if err != nil {
		panic(err)
	}
	return obj
}

// Opaque wraps unregistered content accepted under allow-custom. The payload
// is kept verbatim and re-emitted unchanged by the encoder.
func Opaque(kind Kind, name string, payload any) *Object {
	return &Object{
		typ:     &Type{name: name, kind: kind, index: map[string]int{}},
		values:  map[string]any{},
		opaque:  true,
		payload: deepCopy(payload),
	}
}

// IsCustomContent reports whether the object wraps unregistered content.
func (o *Object) IsCustomContent() bool {
	return o.opaque
}

// Payload returns a copy of the verbatim specifier of custom content.
func (o *Object) Payload() any {
	return deepCopy(o.payload)
}

func (o *Object) Type() *Type {
	return o.typ
}

func (o *Object) TypeName() string {
	return o.typ.name
}

func (o *Object) Kind() Kind {
	return o.typ.kind
}

// AllowCustom reports the flag the object was built with.
func (o *Object) AllowCustom() bool {
	return o.cfg.allowCustom
}

// Get returns a copy of a populated value, declared or extra.
func (o *Object) Get(name string) (any, bool) {
	value, ok := o.values[name]
	return deepCopy(value), ok
}

// Has reports whether name is populated.
func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// GetString returns a string value, or "" when absent or not a string.
func (o *Object) GetString(name string) string {
	if s, ok := o.values[name].(string); ok {
		return s
	}
	return ""
}

// GetInt returns an integral value.
func (o *Object) GetInt(name string) (int64, bool) {
	value, ok := o.values[name]
	if !ok {
		return 0, false
	}
	return toInt64(value)
}

// GetFloat returns a numeric value as float64.
func (o *Object) GetFloat(name string) (float64, bool) {
	value, ok := o.values[name]
	if !ok {
		return 0, false
	}
	return toFloat64(value)
}

// GetBool returns a boolean value.
func (o *Object) GetBool(name string) (bool, bool) {
	b, ok := o.values[name].(bool)
	return b, ok
}

// GetObject returns a nested object, or nil.
func (o *Object) GetObject(name string) *Object {
	obj, _ := o.values[name].(*Object)
	return obj
}

// GetList returns a copy of a list value.
func (o *Object) GetList(name string) []any {
	items, ok := o.values[name].([]any)
	if !ok {
		return nil
	}
	return deepCopy(items).([]any)
}

// GetStrings returns the string items of a list value.
func (o *Object) GetStrings(name string) []string {
	items, ok := o.values[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// GetMap returns a copy of a dictionary value.
func (o *Object) GetMap(name string) map[string]any {
	m, ok := o.values[name].(map[string]any)
	if !ok {
		return nil
	}
	return deepCopy(m).(map[string]any)
}

// Extra returns an undeclared value kept under allow-custom or as an
// extension key.
func (o *Object) Extra(name string) (any, bool) {
	if o.typ.Has(name) {
		return nil, false
	}
	value, ok := o.values[name]
	return deepCopy(value), ok
}

// Extras returns the sorted undeclared keys.
func (o *Object) Extras() []string {
	return append([]string(nil), o.extras...)
}

// Keys returns populated keys in schema order followed by sorted extras.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for _, field := range o.typ.fields {
		if _, ok := o.values[field.Name]; ok {
			keys = append(keys, field.Name)
		}
	}
	return append(keys, o.extras...)
}

// Values returns a deep copy of the populated properties. Nested objects
// are shared.
func (o *Object) Values() map[string]any {
	out := make(map[string]any, len(o.values))
	for key, value := range o.values {
		out[key] = deepCopy(value)
	}
	return out
}

// IsDefault reports whether name holds its descriptor's default value.
func (o *Object) IsDefault(name string) bool {
	_, ok := o.defaults[name]
	return ok
}

// Set always fails: objects are immutable. Use Clone to derive a new value.
func (o *Object) Set(name string, _ any) error {
	return &Error{Kind: ErrorImmutable, Type: o.typ.name, Property: name}
}

// Equal reports whether both objects share a type and populated properties.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.opaque || other.opaque {
		return o.opaque == other.opaque &&
			o.typ.name == other.typ.name &&
			o.typ.kind == other.typ.kind &&
			valuesEqual(o.payload, other.payload)
	}
	if o.typ != other.typ || len(o.values) != len(other.values) {
		return false
	}
	for key, value := range o.values {
		theirs, ok := other.values[key]
		if !ok || !valuesEqual(value, theirs) {
			return false
		}
	}
	return true
}

// Clone builds a new object from the current properties merged with
// overrides. A nil override removes the property; the type can never change.
func (o *Object) Clone(overrides map[string]any) (*Object, error) {
	if _, ok := overrides[ReservedTypeKey]; ok {
		return nil, &Error{Kind: ErrorUnmodifiable, Type: o.typ.name, Properties: []string{ReservedTypeKey}}
	}
	if o.opaque {
		if len(overrides) > 0 {
			return nil, &Error{Kind: ErrorUnmodifiable, Type: o.typ.name, Properties: sortedKeys(overrides)}
		}
		return Opaque(o.typ.kind, o.typ.name, o.payload), nil
	}
	merged := o.Values()
	for key, value := range overrides {
		merged[key] = value
	}
	for key, value := range merged {
		if value == nil {
			delete(merged, key)
		}
	}
	opts := []Option{WithAllowCustom(o.cfg.allowCustom), WithResolver(o.cfg.resolver)}
	if len(o.cfg.extensions) > 0 {
		keys := make([]string, 0, len(o.cfg.extensions))
		for key := range o.cfg.extensions {
			keys = append(keys, key)
		}
		opts = append(opts, WithExtensionKeys(keys...))
	}
	return New(o.typ, merged, opts...)
}

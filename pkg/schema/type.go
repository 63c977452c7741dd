package schema

import "strings"

// ReservedTypeKey is the discriminant key no schema may declare.
const ReservedTypeKey = "type"

// Field pairs a property name with its descriptor.
type Field struct {
	Name     string
	Property Property
}

// Prop declares a schema field.
func Prop(name string, p Property) Field {
	return Field{Name: name, Property: p}
}

// Constraint checks cross-property invariants after every field is cleaned.
type Constraint func(*Object) error

// InitFunc runs after construction and constraint checks succeed.
type InitFunc func(*Object) error

// TypeOption configures a Type.
type TypeOption func(*Type)

// WithConstraints appends cross-property checks.
func WithConstraints(constraints ...Constraint) TypeOption {
	return func(t *Type) {
		t.constraints = append(t.constraints, constraints...)
	}
}

// WithInit sets the post-construction hook.
func WithInit(fn InitFunc) TypeOption {
	return func(t *Type) {
		t.init = fn
	}
}

// WithDescription attaches human readable text used by schema exports.
func WithDescription(text string) TypeOption {
	return func(t *Type) {
		t.description = strings.TrimSpace(text)
	}
}

// Type is the schema descriptor shared by every instance of one OpenC2 type:
// its discriminant, kind, ordered fields and invariants. Types are immutable
// once built and safe for concurrent use.
type Type struct {
	name        string
	kind        Kind
	fields      []Field
	index       map[string]int
	constraints []Constraint
	init        InitFunc
	description string
}

// NewType validates and builds a schema descriptor.
func NewType(kind Kind, name string, fields []Field, opts ...TypeOption) (*Type, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewDefinitionError("<unnamed>", "type name is required")
	}
	t := &Type{
		name:   name,
		kind:   kind,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, field := range fields {
		if field.Name == ReservedTypeKey {
			return nil, NewPresenceError(name, ReservedTypeKey, "the type key is reserved")
		}
		if strings.TrimSpace(field.Name) == "" {
			return nil, NewDefinitionError(name, "field name is required")
		}
		if field.Property == nil {
			return nil, NewDefinitionError(name, "field %q has no property", field.Name)
		}
		if _, exists := t.index[field.Name]; exists {
			return nil, NewDefinitionError(name, "duplicate field %q", field.Name)
		}
		t.index[field.Name] = len(t.fields)
		t.fields = append(t.fields, field)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

// MustType panics when NewType fails. Intended for package-level declarations.
func MustType(kind Kind, name string, fields []Field, opts ...TypeOption) *Type {
	t, err := NewType(kind, name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Type) Name() string {
	return t.name
}

func (t *Type) Kind() Kind {
	return t.kind
}

func (t *Type) Description() string {
	return t.description
}

// Namespace returns the ns part of an ns:name type, or "".
func (t *Type) Namespace() string {
	if ns, _, ok := strings.Cut(t.name, ":"); ok {
		return ns
	}
	return ""
}

// LocalName returns the part after the namespace separator, or the full name.
func (t *Type) LocalName() string {
	if _, local, ok := strings.Cut(t.name, ":"); ok {
		return local
	}
	return t.name
}

// Fields returns the ordered schema.
func (t *Type) Fields() []Field {
	return append([]Field(nil), t.fields...)
}

// FieldNames returns field names in schema order.
func (t *Type) FieldNames() []string {
	names := make([]string, len(t.fields))
	for i, field := range t.fields {
		names[i] = field.Name
	}
	return names
}

// Property looks up a field descriptor.
func (t *Type) Property(name string) (Property, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.fields[idx].Property, true
}

// Has reports whether the schema declares name.
func (t *Type) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Eponymous reports whether the schema declares a field named after the
// type's local name. Such types accept a bare scalar specifier on the wire.
func (t *Type) Eponymous() bool {
	return t.Has(t.LocalName())
}

// Collapsible reports whether an instance with only the eponymous field
// populated encodes as {type: value}.
func (t *Type) Collapsible() bool {
	if !t.Eponymous() {
		return false
	}
	return len(t.fields) == 1 || t.Namespace() != ""
}

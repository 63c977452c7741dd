// Package custom registers vendor and profile types at runtime.
//
// A custom type is data: a name, a kind and an ordered field list stored in
// the registry's extension table. Instances are ordinary schema objects that
// carry their type by reference.
package custom

import (
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// MaxNamespaceLength bounds the namespace part of ns:name type names.
const MaxNamespaceLength = 16

// CustomFieldPrefix marks vendor fields that are ordered after all others.
const CustomFieldPrefix = "x_"

var namePart = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Target registers a custom target. name must use the ns:name form.
func Target(reg *registry.Registry, name string, fields []schema.Field, opts ...schema.TypeOption) (*schema.Type, error) {
	return build(reg, schema.KindTarget, name, fields, opts)
}

// Actuator registers a custom actuator. name must start with "x-".
func Actuator(reg *registry.Registry, name string, fields []schema.Field, opts ...schema.TypeOption) (*schema.Type, error) {
	return build(reg, schema.KindActuator, name, fields, opts)
}

// Args registers custom args, attached to a command's args under name. name
// must start with "x-".
func Args(reg *registry.Registry, name string, fields []schema.Field, opts ...schema.TypeOption) (*schema.Type, error) {
	return build(reg, schema.KindArgs, name, fields, opts)
}

// Property registers a custom property type that can be embedded in other
// types or stand in for a target or actuator of the same name. name must use
// the ns:name form.
func Property(reg *registry.Registry, name string, fields []schema.Field, opts ...schema.TypeOption) (*schema.Type, error) {
	return build(reg, schema.KindProperty, name, fields, opts)
}

// Register builds a custom type of any supported kind.
func Register(reg *registry.Registry, kind schema.Kind, name string, fields []schema.Field, opts ...schema.TypeOption) (*schema.Type, error) {
	return build(reg, kind, name, fields, opts)
}

func build(reg *registry.Registry, kind schema.Kind, name string, fields []schema.Field, opts []schema.TypeOption) (*schema.Type, error) {
	if reg == nil {
		return nil, schema.NewDefinitionError(name, "registry is required")
	}
	if err := ValidateName(kind, name); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, schema.NewDefinitionError(name, "must supply at least one property")
	}
	t, err := schema.NewType(kind, name, OrderFields(fields), opts...)
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterExtension(t); err != nil {
		return nil, schema.NewDefinitionError(name, "%v", err)
	}
	return t, nil
}

// ValidateName checks the naming rule for kind: ns:name for targets and
// properties, an x- prefix for actuators and args.
func ValidateName(kind schema.Kind, name string) error {
	switch kind {
	case schema.KindTarget, schema.KindProperty:
		ns, local, ok := strings.Cut(name, ":")
		if !ok || strings.Contains(local, ":") {
			return schema.NewDefinitionError(name, "must use the namespace:name format")
		}
		if len(ns) > MaxNamespaceLength {
			return schema.NewDefinitionError(name, "namespace %q must be at most %d characters", ns, MaxNamespaceLength)
		}
		if !namePart.MatchString(ns) || !namePart.MatchString(local) {
			return schema.NewDefinitionError(name, "namespace and name must be non-empty and contain only letters, digits, '.', '_' or '-'")
		}
	case schema.KindActuator, schema.KindArgs:
		if !strings.HasPrefix(name, "x-") || len(name) == len("x-") {
			return schema.NewDefinitionError(name, "must start with x-")
		}
		if !namePart.MatchString(name) {
			return schema.NewDefinitionError(name, "must contain only letters, digits, '.', '_' or '-'")
		}
	default:
		return schema.NewDefinitionError(name, "custom %s types are not supported", kind)
	}
	return nil
}

// OrderFields keeps caller order for ordinary fields and moves x_ fields to
// the end, sorted by name.
func OrderFields(fields []schema.Field) []schema.Field {
	ordered := make([]schema.Field, 0, len(fields))
	var vendor []schema.Field
	for _, field := range fields {
		if strings.HasPrefix(field.Name, CustomFieldPrefix) {
			vendor = append(vendor, field)
			continue
		}
		ordered = append(ordered, field)
	}
	sort.SliceStable(vendor, func(i, j int) bool {
		return vendor[i].Name < vendor[j].Name
	})
	return append(ordered, vendor...)
}

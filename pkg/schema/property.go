package schema

import (
	"fmt"
	"math"
	"regexp"
)

// Resolver turns raw component and args fragments into typed objects. The
// dispatch engine implements it; properties that embed polymorphic values
// (targets, actuators, args) call back into it while cleaning.
type Resolver interface {
	ResolveComponent(raw any, kind Kind, allowCustom bool) (*Object, error)
	ResolveArgs(raw any, allowCustom bool) (*Object, error)
}

// CleanContext carries the construction flags a property may need while
// cleaning nested values.
type CleanContext struct {
	AllowCustom bool
	Resolver    Resolver
}

// Property validates and normalises a raw value for one schema field.
type Property interface {
	Clean(value any, ctx CleanContext) (any, error)
	Descriptor() Descriptor
}

// Descriptor exposes the presence rules shared by every property kind.
type Descriptor struct {
	Required bool
	Default  func() any
	Fixed    any
	HasFixed bool
}

// PropertyOption configures a property at construction time. Options that do
// not apply to a property kind are ignored.
type PropertyOption func(*propertyConfig)

type propertyConfig struct {
	required    bool
	def         func() any
	fixed       any
	hasFixed    bool
	min         *float64
	max         *float64
	maxItems    int
	unique      bool
	allowedKeys []string
	keyPattern  *regexp.Regexp
}

// Required marks the property as mandatory at construction.
func Required() PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.required = true
	}
}

// WithDefault supplies a value when the property is absent.
func WithDefault(fn func() any) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.def = fn
	}
}

// Fixed pins the property to a constant: cleaning requires strict equality and
// the constant doubles as the default.
func Fixed(value any) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.fixed = value
		cfg.hasFixed = true
		cfg.def = func() any { return value }
	}
}

// Min sets an inclusive lower bound for numeric properties.
func Min(v float64) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.min = &v
	}
}

// Max sets an inclusive upper bound for numeric properties.
func Max(v float64) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.max = &v
	}
}

// MaxItems bounds list length.
func MaxItems(n int) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.maxItems = n
	}
}

// Unique rejects duplicate list items.
func Unique() PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.unique = true
	}
}

// AllowedKeys restricts dictionary keys to an explicit list.
func AllowedKeys(keys ...string) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.allowedKeys = append([]string(nil), keys...)
	}
}

// KeyPattern overrides the default dictionary key pattern.
func KeyPattern(pattern *regexp.Regexp) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.keyPattern = pattern
	}
}

func newConfig(opts []PropertyOption) propertyConfig {
	var cfg propertyConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (c propertyConfig) Descriptor() Descriptor {
	return Descriptor{
		Required: c.required,
		Default:  c.def,
		Fixed:    c.fixed,
		HasFixed: c.hasFixed,
	}
}

// Bounds returns the configured numeric range; absent bounds are NaN.
func (c propertyConfig) Bounds() (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	if c.min != nil {
		lo = *c.min
	}
	if c.max != nil {
		hi = *c.max
	}
	return lo, hi
}

func (c propertyConfig) checkRange(value float64, raw any) error {
	if c.min != nil && value < *c.min {
		return invalid(raw, "value must be >= %v", *c.min)
	}
	if c.max != nil && value > *c.max {
		return invalid(raw, "value must be <= %v", *c.max)
	}
	return nil
}

// CleanValue runs p.Clean and enforces a fixed value when one is configured.
// The fixed comparison uses the cleaned value so mapping input can match a
// fixed object.
func CleanValue(p Property, value any, ctx CleanContext) (any, error) {
	cleaned, err := p.Clean(value, ctx)
	if err != nil {
		return nil, err
	}
	if desc := p.Descriptor(); desc.HasFixed && !valuesEqual(cleaned, desc.Fixed) {
		return nil, invalid(value, "must equal %s", describe(desc.Fixed))
	}
	return cleaned, nil
}

func describe(v any) string {
	if obj, ok := v.(*Object); ok {
		return obj.String()
	}
	return fmt.Sprintf("%v", v)
}

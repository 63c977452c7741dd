package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// StringProperty coerces scalar input to its string form.
type StringProperty struct {
	propertyConfig
}

// String declares a string property.
func String(opts ...PropertyOption) *StringProperty {
	return &StringProperty{propertyConfig: newConfig(opts)}
}

func (p *StringProperty) Clean(value any, _ CleanContext) (any, error) {
	return cleanString(value)
}

func cleanString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case *Object:
		return "", invalid(value, "must be a string, got %s object", v.TypeName())
	case fmt.Stringer:
		return v.String(), nil
	}
	if i, ok := toInt64(value); ok && isNumber(value) {
		return strconv.FormatInt(i, 10), nil
	}
	if f, ok := toFloat64(value); ok && isNumber(value) {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return "", invalid(value, "must be a string, got %s", typeLabel(value))
}

// EnumProperty accepts strings drawn from a fixed vocabulary.
type EnumProperty struct {
	propertyConfig
	allowed []string
}

// Enum declares a string property restricted to allowed.
func Enum(allowed []string, opts ...PropertyOption) *EnumProperty {
	return &EnumProperty{
		propertyConfig: newConfig(opts),
		allowed:        append([]string(nil), allowed...),
	}
}

// Allowed returns the vocabulary in declaration order.
func (p *EnumProperty) Allowed() []string {
	return append([]string(nil), p.allowed...)
}

func (p *EnumProperty) Clean(value any, _ CleanContext) (any, error) {
	text, err := cleanString(value)
	if err != nil {
		return nil, err
	}
	for _, candidate := range p.allowed {
		if candidate == text {
			return text, nil
		}
	}
	return nil, invalid(value, "value %q is not valid for this enumeration", text)
}

// IntegerProperty accepts integral numbers within optional inclusive bounds.
type IntegerProperty struct {
	propertyConfig
}

// Integer declares an integer property. Cleaned values are int64.
func Integer(opts ...PropertyOption) *IntegerProperty {
	return &IntegerProperty{propertyConfig: newConfig(opts)}
}

func (p *IntegerProperty) Clean(value any, _ CleanContext) (any, error) {
	if _, isBool := value.(bool); isBool {
		return nil, invalid(value, "must be an integer")
	}
	i, ok := toInt64(value)
	if !ok {
		return nil, invalid(value, "must be an integer")
	}
	if err := p.checkRange(float64(i), value); err != nil {
		return nil, err
	}
	return i, nil
}

// FloatProperty accepts any number within optional inclusive bounds.
type FloatProperty struct {
	propertyConfig
}

// Float declares a floating point property. Cleaned values are float64.
func Float(opts ...PropertyOption) *FloatProperty {
	return &FloatProperty{propertyConfig: newConfig(opts)}
}

func (p *FloatProperty) Clean(value any, _ CleanContext) (any, error) {
	if _, isBool := value.(bool); isBool {
		return nil, invalid(value, "must be a float")
	}
	f, ok := toFloat64(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(value, "must be a float")
	}
	if err := p.checkRange(f, value); err != nil {
		return nil, err
	}
	return f, nil
}

// BooleanProperty accepts booleans and their common textual or 0/1 forms.
type BooleanProperty struct {
	propertyConfig
}

// Boolean declares a boolean property.
func Boolean(opts ...PropertyOption) *BooleanProperty {
	return &BooleanProperty{propertyConfig: newConfig(opts)}
}

func (p *BooleanProperty) Clean(value any, _ CleanContext) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "t", "1":
			return true, nil
		case "false", "f", "0":
			return false, nil
		}
	default:
		if i, ok := toInt64(value); ok && (i == 0 || i == 1) {
			return i == 1, nil
		}
	}
	return nil, invalid(value, "must be a boolean value")
}

// BinaryProperty holds base64 text. Byte slices are encoded on the way in.
type BinaryProperty struct {
	propertyConfig
}

// Binary declares a base64 property.
func Binary(opts ...PropertyOption) *BinaryProperty {
	return &BinaryProperty{propertyConfig: newConfig(opts)}
}

func (p *BinaryProperty) Clean(value any, _ CleanContext) (any, error) {
	switch v := value.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case string:
		if _, err := base64.StdEncoding.DecodeString(v); err != nil {
			return nil, &ValueError{Value: value, Reason: "must contain a base64 encoded string", Err: err}
		}
		return v, nil
	}
	return nil, invalid(value, "must contain a base64 encoded string")
}

// Millisecond bounds accepted by DateTimeProperty. The upper bound stops one
// short of the int64 maximum.
const (
	MinDateTime int64 = 0
	MaxDateTime int64 = math.MaxInt64 - 1
)

// DateTimeProperty stores instants as integer milliseconds since the epoch.
type DateTimeProperty struct {
	propertyConfig
}

// DateTime declares a timestamp property.
func DateTime(opts ...PropertyOption) *DateTimeProperty {
	return &DateTimeProperty{propertyConfig: newConfig(opts)}
}

func (p *DateTimeProperty) Clean(value any, _ CleanContext) (any, error) {
	var ms int64
	switch v := value.(type) {
	case time.Time:
		ms = v.UTC().UnixMilli()
	case *time.Time:
		if v == nil {
			return nil, invalid(value, "must be a timestamp")
		}
		ms = v.UTC().UnixMilli()
	case bool:
		return nil, invalid(value, "must be a timestamp")
	default:
		i, ok := toInt64(value)
		if !ok {
			return nil, invalid(value, "must be a timestamp or integer milliseconds")
		}
		ms = i
	}
	if ms < MinDateTime || ms > MaxDateTime {
		return nil, invalid(value, "timestamp must be between %d and %d milliseconds", MinDateTime, MaxDateTime)
	}
	if err := p.checkRange(float64(ms), value); err != nil {
		return nil, err
	}
	return ms, nil
}

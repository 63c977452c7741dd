package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies validation and parse failures so callers can branch on
// the failure without matching message text.
type ErrorKind int

const (
	ErrorParse ErrorKind = iota + 1
	ErrorCustomContent
	ErrorPropertyPresence
	ErrorMissingProperties
	ErrorExtraProperties
	ErrorMutuallyExclusive
	ErrorAtLeastOne
	ErrorDependentProperties
	ErrorInvalidValue
	ErrorImmutable
	ErrorUnmodifiable
	ErrorDictionaryKey
	ErrorDefinition
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorParse:
		return "parse"
	case ErrorCustomContent:
		return "custom_content"
	case ErrorPropertyPresence:
		return "property_presence"
	case ErrorMissingProperties:
		return "missing_properties"
	case ErrorExtraProperties:
		return "extra_properties"
	case ErrorMutuallyExclusive:
		return "mutually_exclusive"
	case ErrorAtLeastOne:
		return "at_least_one"
	case ErrorDependentProperties:
		return "dependent_properties"
	case ErrorInvalidValue:
		return "invalid_value"
	case ErrorImmutable:
		return "immutable"
	case ErrorUnmodifiable:
		return "unmodifiable"
	case ErrorDictionaryKey:
		return "dictionary_key"
	case ErrorDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// IsPresence reports whether the kind belongs to the property-presence family.
func (k ErrorKind) IsPresence() bool {
	switch k {
	case ErrorPropertyPresence, ErrorMissingProperties, ErrorExtraProperties,
		ErrorMutuallyExclusive, ErrorAtLeastOne, ErrorDependentProperties:
		return true
	}
	return false
}

// Sentinels for errors.Is. ErrPropertyPresence matches every presence kind.
var (
	ErrParse               = &Error{Kind: ErrorParse, sentinel: true}
	ErrCustomContent       = &Error{Kind: ErrorCustomContent, sentinel: true}
	ErrPropertyPresence    = &Error{Kind: ErrorPropertyPresence, sentinel: true}
	ErrMissingProperties   = &Error{Kind: ErrorMissingProperties, sentinel: true}
	ErrExtraProperties     = &Error{Kind: ErrorExtraProperties, sentinel: true}
	ErrMutuallyExclusive   = &Error{Kind: ErrorMutuallyExclusive, sentinel: true}
	ErrAtLeastOne          = &Error{Kind: ErrorAtLeastOne, sentinel: true}
	ErrDependentProperties = &Error{Kind: ErrorDependentProperties, sentinel: true}
	ErrInvalidValue        = &Error{Kind: ErrorInvalidValue, sentinel: true}
	ErrImmutable           = &Error{Kind: ErrorImmutable, sentinel: true}
	ErrUnmodifiable        = &Error{Kind: ErrorUnmodifiable, sentinel: true}
	ErrDictionaryKey       = &Error{Kind: ErrorDictionaryKey, sentinel: true}
	ErrDefinition          = &Error{Kind: ErrorDefinition, sentinel: true}
)

// Error is the structured failure returned by construction, cleaning and
// parsing. Only the fields relevant to Kind are populated.
type Error struct {
	Kind       ErrorKind
	Type       string
	Property   string
	Properties []string
	Key        string
	Reason     string
	Err        error

	sentinel bool
}

func (e *Error) Error() string {
	if e.sentinel {
		return "schema: " + strings.ReplaceAll(e.Kind.String(), "_", " ")
	}
	props := strings.Join(e.Properties, ", ")
	switch e.Kind {
	case ErrorParse:
		return "schema: parse: " + e.Reason
	case ErrorCustomContent:
		if e.Reason != "" {
			return "schema: " + e.Reason
		}
		return fmt.Sprintf("schema: can't parse unknown %s type %q", e.Property, e.Type)
	case ErrorPropertyPresence:
		return fmt.Sprintf("schema: property %q is not allowed for %s: %s", e.Property, e.Type, e.Reason)
	case ErrorMissingProperties:
		return fmt.Sprintf("schema: no values for required properties for %s: (%s)", e.Type, props)
	case ErrorExtraProperties:
		return fmt.Sprintf("schema: unexpected properties for %s: (%s)", e.Type, props)
	case ErrorMutuallyExclusive:
		if e.Reason != "" {
			return fmt.Sprintf("schema: the (%s) properties for %s are mutually exclusive: %s", props, e.Type, e.Reason)
		}
		return fmt.Sprintf("schema: the (%s) properties for %s are mutually exclusive", props, e.Type)
	case ErrorAtLeastOne:
		return fmt.Sprintf("schema: at least one of the (%s) properties for %s must be populated", props, e.Type)
	case ErrorDependentProperties:
		return fmt.Sprintf("schema: the property dependencies for %s are not met: %s requires (%s)", e.Type, e.Property, props)
	case ErrorInvalidValue:
		return fmt.Sprintf("schema: invalid value for %s %q: %s", e.Type, e.Property, e.Reason)
	case ErrorImmutable:
		return fmt.Sprintf("schema: cannot modify %q property in %s after creation", e.Property, e.Type)
	case ErrorUnmodifiable:
		return fmt.Sprintf("schema: these properties cannot be changed when making a new version: %s", props)
	case ErrorDictionaryKey:
		return fmt.Sprintf("schema: invalid dictionary key %q: %s", e.Key, e.Reason)
	case ErrorDefinition:
		return fmt.Sprintf("schema: invalid definition for %s: %s", e.Type, e.Reason)
	}
	return "schema: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels, so errors.Is(err, ErrMissingProperties) holds for
// any missing-properties error regardless of type or property names.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return t.Kind == ErrorPropertyPresence && e.Kind.IsPresence()
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return 0, false
}

// ValueError is returned by Property.Clean when a raw value is rejected.
type ValueError struct {
	Value  any
	Reason string
	Err    error
}

func (e *ValueError) Error() string {
	return e.Reason
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

func invalid(value any, format string, args ...any) error {
	return &ValueError{Value: value, Reason: fmt.Sprintf(format, args...)}
}

// NewParseError reports a structurally invalid message or fragment.
func NewParseError(format string, args ...any) *Error {
	return &Error{Kind: ErrorParse, Reason: fmt.Sprintf(format, args...)}
}

// NewCustomContentError reports an unregistered discriminant of the given kind.
func NewCustomContentError(kind Kind, name string) *Error {
	return &Error{Kind: ErrorCustomContent, Type: name, Property: kind.String()}
}

// NewInvalidValueError reports a rejected property value on typeName.
func NewInvalidValueError(typeName, property, reason string) *Error {
	return &Error{Kind: ErrorInvalidValue, Type: typeName, Property: property, Reason: reason}
}

// NewPresenceError reports a property that may not appear on typeName.
func NewPresenceError(typeName, property, reason string) *Error {
	return &Error{Kind: ErrorPropertyPresence, Type: typeName, Property: property, Reason: reason}
}

// NewDefinitionError reports an invalid type definition.
func NewDefinitionError(typeName, format string, args ...any) *Error {
	return &Error{Kind: ErrorDefinition, Type: typeName, Reason: fmt.Sprintf(format, args...)}
}

func newPropertiesError(kind ErrorKind, typeName string, props []string) *Error {
	sorted := append([]string(nil), props...)
	sort.Strings(sorted)
	return &Error{Kind: kind, Type: typeName, Properties: sorted}
}

func wrapInvalid(typeName, property string, err error) error {
	var existing *Error
	if errors.As(err, &existing) && existing.Kind == ErrorInvalidValue {
		return existing
	}
	return &Error{
		Kind:     ErrorInvalidValue,
		Type:     typeName,
		Property: property,
		Reason:   err.Error(),
		Err:      err,
	}
}

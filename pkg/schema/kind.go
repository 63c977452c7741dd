package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a Type for dispatch and encoding. Targets and actuators are
// wrapped under their type name on the wire; everything else encodes flat.
type Kind int

const (
	KindData Kind = iota
	KindTarget
	KindActuator
	KindArgs
	KindProperty
	KindMessage
)

var kindNames = map[Kind]string{
	KindData:     "data",
	KindTarget:   "target",
	KindActuator: "actuator",
	KindArgs:     "args",
	KindProperty: "property",
	KindMessage:  "message",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Wrapped reports whether instances of the kind serialize as {type: specifier}.
func (k Kind) Wrapped() bool {
	return k == KindTarget || k == KindActuator
}

// ParseKind converts a kind label (singular or plural) back into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "data":
		return KindData, nil
	case "target", "targets":
		return KindTarget, nil
	case "actuator", "actuators":
		return KindActuator, nil
	case "args", "arg":
		return KindArgs, nil
	case "property", "properties":
		return KindProperty, nil
	case "message", "messages":
		return KindMessage, nil
	}
	return KindData, fmt.Errorf("schema: unknown kind %q", raw)
}

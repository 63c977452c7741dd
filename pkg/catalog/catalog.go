// Package catalog declares the built-in OpenC2 v1.0 types: the command and
// response messages, the base args, the payload data type and every
// language-defined target.
package catalog

import (
	"fmt"

	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Types returns every built-in type.
func Types() []*schema.Type {
	types := []*schema.Type{Command, Response, Args, Payload}
	return append(types, Targets()...)
}

// Install registers the built-in types into reg's core tables. Installing
// twice into the same registry is a no-op.
func Install(reg *registry.Registry) error {
	if reg == nil {
		return fmt.Errorf("catalog: registry is required")
	}
	for _, t := range Types() {
		if err := reg.Register(t); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

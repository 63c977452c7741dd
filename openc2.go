// Package openc2 is the entry point for building, parsing and serialising
// OpenC2 commands and responses.
//
// The package-level parse functions use a process-wide engine whose registry
// holds the built-in catalog and the SLPF profile. Custom types registered
// against DefaultRegistry must be registered during program start-up, before
// any concurrent parsing.
package openc2

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-openc2/pkg/catalog"
	"github.com/goliatone/go-openc2/pkg/dispatch"
	"github.com/goliatone/go-openc2/pkg/profile/slpf"
	"github.com/goliatone/go-openc2/pkg/registry"
	"github.com/goliatone/go-openc2/pkg/schema"
)

// Object aliases schema.Object so callers can stay on the root package for
// common flows.
type Object = schema.Object

// Engine aliases dispatch.Engine.
type Engine = dispatch.Engine

// ParseOption aliases dispatch.ParseOption.
type ParseOption = dispatch.ParseOption

// AllowCustom lets unknown content pass through a parse call.
func AllowCustom(allow bool) ParseOption {
	return dispatch.AllowCustom(allow)
}

// NewRegistry returns a registry with the built-in catalog and the SLPF
// profile installed.
func NewRegistry() (*registry.Registry, error) {
	reg := registry.New()
	if err := catalog.Install(reg); err != nil {
		return nil, err
	}
	if err := slpf.Install(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewEngine returns an engine over a fresh NewRegistry.
func NewEngine(opts ...dispatch.Option) (*Engine, error) {
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	return dispatch.New(reg, opts...), nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine.
func Default() *Engine {
	defaultOnce.Do(func() {
		engine, err := NewEngine()
		if err != nil {
			panic(fmt.Sprintf("openc2: build default engine: %v", err))
		}
		defaultEngine = engine
	})
	return defaultEngine
}

// DefaultRegistry returns the registry behind Default.
func DefaultRegistry() *registry.Registry {
	return Default().Registry()
}

// Parse reads a command or response.
func Parse(raw any, opts ...ParseOption) (*Object, error) {
	return Default().Parse(raw, opts...)
}

// ParseTarget reads a {type: specifier} target.
func ParseTarget(raw any, opts ...ParseOption) (*Object, error) {
	return Default().ParseTarget(raw, opts...)
}

// ParseActuator reads a {type: specifier} actuator.
func ParseActuator(raw any, opts ...ParseOption) (*Object, error) {
	return Default().ParseActuator(raw, opts...)
}

// ParseArgs reads command args.
func ParseArgs(raw any, opts ...ParseOption) (*Object, error) {
	return Default().ParseArgs(raw, opts...)
}

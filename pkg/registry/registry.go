// Package registry maps (kind, type name) pairs to schema descriptors.
//
// A Registry holds two tables per kind: the core table for the built-in
// catalog and an extension table for profile and custom types. Entries are
// never removed. Register during program start-up before parsing begins; the
// lock keeps lookups safe, but interleaving registration with parsing from
// several goroutines gives no ordering guarantees.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-openc2/pkg/schema"
)

// Registry stores schema types by kind and name.
type Registry struct {
	mu        sync.RWMutex
	core      map[schema.Kind]map[string]*schema.Type
	extension map[schema.Kind]map[string]*schema.Type
}

// New creates an empty registry instance.
func New() *Registry {
	return &Registry{
		core:      make(map[schema.Kind]map[string]*schema.Type),
		extension: make(map[schema.Kind]map[string]*schema.Type),
	}
}

// Register adds a core type. Registering the same *Type twice is a no-op; a
// different type under a taken name returns an error.
func (r *Registry) Register(t *schema.Type) error {
	return r.add(r.core, t, "type")
}

// RegisterExtension adds a profile or custom type to the extension table.
func (r *Registry) RegisterExtension(t *schema.Type) error {
	return r.add(r.extension, t, "extension")
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(types ...*schema.Type) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// MustRegisterExtension panics on registration failure.
func (r *Registry) MustRegisterExtension(types ...*schema.Type) {
	for _, t := range types {
		if err := r.RegisterExtension(t); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) add(table map[schema.Kind]map[string]*schema.Type, t *schema.Type, label string) error {
	if t == nil {
		return fmt.Errorf("registry: %s is required", label)
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("registry: %s name is required", label)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byName, ok := table[t.Kind()]
	if !ok {
		byName = make(map[string]*schema.Type)
		table[t.Kind()] = byName
	}
	if existing, exists := byName[name]; exists {
		if existing == t {
			return nil
		}
		return fmt.Errorf("registry: %s %s %q already registered", t.Kind(), label, name)
	}
	byName[name] = t
	return nil
}

// Lookup returns a core type.
func (r *Registry) Lookup(kind schema.Kind, name string) (*schema.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.core[kind][name]
	return t, ok
}

// LookupExtension returns an extension type.
func (r *Registry) LookupExtension(kind schema.Kind, name string) (*schema.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.extension[kind][name]
	return t, ok
}

// Resolve checks the core table and then the extension table.
func (r *Registry) Resolve(kind schema.Kind, name string) (*schema.Type, bool) {
	if t, ok := r.Lookup(kind, name); ok {
		return t, true
	}
	return r.LookupExtension(kind, name)
}

// MustResolve panics if the type is missing.
func (r *Registry) MustResolve(kind schema.Kind, name string) *schema.Type {
	t, ok := r.Resolve(kind, name)
	if !ok {
		panic(fmt.Errorf("registry: %s %q not found", kind, name))
	}
	return t
}

// Has reports whether a type is registered in either table.
func (r *Registry) Has(kind schema.Kind, name string) bool {
	_, ok := r.Resolve(kind, name)
	return ok
}

// List returns the sorted names registered for kind across both tables.
func (r *Registry) List(kind schema.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range r.core[kind] {
		seen[name] = struct{}{}
	}
	for name := range r.extension[kind] {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListExtensions returns the sorted extension names for kind.
func (r *Registry) ListExtensions(kind schema.Kind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extension[kind]))
	for name := range r.extension[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry describes one registered type.
type Entry struct {
	Type      *schema.Type
	Extension bool
}

// Entries returns every registered type ordered by kind, then name, with core
// entries before extensions of the same name.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Entry
	for _, byName := range r.core {
		for _, t := range byName {
			out = append(out, Entry{Type: t})
		}
	}
	for _, byName := range r.extension {
		for _, t := range byName {
			out = append(out, Entry{Type: t, Extension: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type.Kind() != b.Type.Kind() {
			return a.Type.Kind() < b.Type.Kind()
		}
		if a.Type.Name() != b.Type.Name() {
			return a.Type.Name() < b.Type.Name()
		}
		return !a.Extension && b.Extension
	})
	return out
}

package model

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores type descriptors by name so configuration files and HTTP
// routes can refer to types by identifier.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]Type),
	}
}

// Register adds a type by its Name. Duplicate names return an error.
func (r *Registry) Register(t Type) error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("model: type name is required")
	}
	t.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return fmt.Errorf("model: type %q already registered", name)
	}
	r.types[name] = t
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(types ...Type) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	if r == nil {
		return Type{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[strings.TrimSpace(name)]
	return t, ok
}

// Get retrieves a type by name.
func (r *Registry) Get(name string) (Type, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return Type{}, fmt.Errorf("model: type %q not found", name)
	}
	return t, nil
}

// ByRoute resolves a URL segment to a type. overrides maps type names to
// custom segments and wins over the default plural route key.
func (r *Registry) ByRoute(segment string, overrides map[string]string) (Type, bool) {
	segment = strings.Trim(strings.TrimSpace(segment), "/")
	if r == nil || segment == "" {
		return Type{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name, custom := range overrides {
		if strings.Trim(custom, "/") == segment {
			if t, ok := r.types[name]; ok {
				return t, true
			}
		}
	}
	for name, t := range r.types {
		if _, overridden := overrides[name]; overridden {
			continue
		}
		if t.RouteKey() == segment {
			return t, true
		}
	}
	return Type{}, false
}

// List returns a sorted list of registered type names.
func (r *Registry) List() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

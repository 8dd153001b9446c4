package schema

import (
	"fmt"
	"sync"
)

// Registry holds the declared types by name.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	order []*Type
}

// NewRegistry returns a registry holding the given types.
func NewRegistry(types ...*Type) (*Registry, error) {
	r := &Registry{types: make(map[string]*Type)}
	if err := r.Register(types...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register validates and adds types to the registry.
func (r *Registry) Register(types ...*Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range types {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := r.types[t.Name]; ok {
			return NewSchemaError(t.Name, "type already registered", nil)
		}
		r.types[t.Name] = t
		r.order = append(r.order, t)
	}
	return nil
}

// Lookup returns the type registered with the given name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// MustLookup is like Lookup but panics if the type is not registered.
func (r *Registry) MustLookup(name string) *Type {
	t, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("persist: type %q is not registered", name))
	}
	return t
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Type(nil), r.order...)
}

// Check reports the first edge whose related type is not registered.
func (r *Registry) Check() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.order {
		for _, d := range t.EdgeDescriptors() {
			if d.Type == "" {
				continue
			}
			if _, ok := r.types[d.Type]; !ok {
				return NewEdgeError(t.Name, d.Type, d.Name, "related type is not registered")
			}
		}
	}
	return nil
}

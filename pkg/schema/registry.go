package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// Registry holds schemas keyed by entity type name. Each name may be
// registered once.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
	order   []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds s. It returns ErrDuplicateEntity if the type name or table
// name is already taken.
func (r *Registry) Register(s *Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schemas[s.Name()]; ok {
		return fmt.Errorf("%w: %s", types.ErrDuplicateEntity, s.Name())
	}
	for _, other := range r.schemas {
		if other.Table() == s.Table() {
			return fmt.Errorf("%w: %s and %s share table %s", types.ErrDuplicateEntity, other.Name(), s.Name(), s.Table())
		}
	}
	r.schemas[s.Name()] = s
	r.order = append(r.order, s.Name())
	return nil
}

// Define builds a schema and registers it in one step.
func (r *Registry) Define(typeName string, fields ...*Field) (*Schema, error) {
	s, err := Define(typeName, fields...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup finds a schema by type name or table name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.schemas[name]; ok {
		return s, true
	}
	for _, s := range r.schemas {
		if s.Table() == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the registered type names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Sorted returns the registered type names sorted alphabetically.
func (r *Registry) Sorted() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}

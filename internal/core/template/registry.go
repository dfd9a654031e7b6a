package template

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zeusync/compose/internal/core/entity"
)

// Constructor builds a fresh capability for one entity. It is called once per
// created entity, so capabilities are never shared between entities.
type Constructor func(params Params) (entity.Capability, error)

// Registry maps capability type names used in documents to constructors.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("template: register %q: empty name or nil constructor", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.ctors[name] = ctor
	return nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[name]
	return ok
}

// New constructs a capability of the named type.
func (r *Registry) New(name string, params Params) (entity.Capability, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, name)
	}
	if params == nil {
		params = Params{}
	}
	c, err := ctor(params)
	if err != nil {
		return nil, fmt.Errorf("template: construct %s: %w", name, err)
	}
	return c, nil
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

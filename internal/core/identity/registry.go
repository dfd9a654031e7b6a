package identity

import (
	"runtime"
	"sync"
	"weak"
)

// Registry maps IDs back to live instances without keeping them alive.
// Entries disappear once the instance is garbage collected.
type Registry[T any] struct {
	mu   sync.RWMutex
	refs map[ID]weak.Pointer[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		refs: make(map[ID]weak.Pointer[T]),
	}
}

// Register records v under id. A nil v or the Nil id is ignored.
func (r *Registry[T]) Register(id ID, v *T) {
	if v == nil || id == Nil {
		return
	}
	r.mu.Lock()
	r.refs[id] = weak.Make(v)
	r.mu.Unlock()

	runtime.AddCleanup(v, r.collected, id)
}

// Lookup returns the instance registered under id if it is still alive.
func (r *Registry[T]) Lookup(id ID) (*T, bool) {
	r.mu.RLock()
	ref, ok := r.refs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	v := ref.Value()
	return v, v != nil
}

// Forget drops id from the registry.
func (r *Registry[T]) Forget(id ID) {
	r.mu.Lock()
	delete(r.refs, id)
	r.mu.Unlock()
}

// Len reports the number of tracked IDs, including ones whose instance was
// collected but whose cleanup has not run yet.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.refs)
}

func (r *Registry[T]) collected(id ID) {
	r.mu.Lock()
	if ref, ok := r.refs[id]; ok && ref.Value() == nil {
		delete(r.refs, id)
	}
	r.mu.Unlock()
}

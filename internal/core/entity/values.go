package entity

import (
	"fmt"
	"maps"
	"slices"

	"github.com/zeusync/compose/internal/core/keys"
)

// GetValue returns the value stored under k or ErrValueNotFound.
func (e *Entity) GetValue(k Key) (any, error) {
	v, ok := e.values[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrValueNotFound, k)
	}
	return v, nil
}

func (e *Entity) TryGetValue(k Key) (any, bool) {
	v, ok := e.values[k]
	return v, ok
}

// AddValue stores v only when k is free. It reports false and leaves the
// store unchanged otherwise.
func (e *Entity) AddValue(k Key, v any) bool {
	if _, ok := e.values[k]; ok {
		return false
	}
	e.insert(k, v)
	return true
}

// AddValues adds every pair whose key is free, in ascending key order, and
// returns how many were added.
func (e *Entity) AddValues(values map[Key]any) int {
	added := 0
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if e.AddValue(k, values[k]) {
			added++
		}
	}
	return added
}

// SetValue inserts or overwrites. Overwriting sends ValueChanged with the
// previous value, inserting sends ValueAdded.
func (e *Entity) SetValue(k Key, v any) {
	e.SwapValue(k, v)
}

// SwapValue is SetValue that also returns what k held before.
func (e *Entity) SwapValue(k Key, v any) (any, bool) {
	prev, ok := e.values[k]
	if !ok {
		e.insert(k, v)
		return nil, false
	}
	e.values[k] = v
	e.events.ValueChanged.Emit(ValueEvent{Entity: e, Key: k, Value: v, Previous: prev})
	return prev, true
}

func (e *Entity) DelValue(k Key) bool {
	_, ok := e.TakeValue(k)
	return ok
}

// TakeValue removes k and returns what it held.
func (e *Entity) TakeValue(k Key) (any, bool) {
	v, ok := e.values[k]
	if !ok {
		return nil, false
	}
	delete(e.values, k)
	if i := slices.Index(e.valueKeys, k); i >= 0 {
		e.valueKeys = slices.Delete(e.valueKeys, i, i+1)
	}
	e.events.ValueDeleted.Emit(ValueEvent{Entity: e, Key: k, Value: v})
	return v, true
}

// ClearValues empties the store with a single ValuesCleared notification.
func (e *Entity) ClearValues() bool {
	if len(e.values) == 0 {
		return false
	}
	clear(e.values)
	e.valueKeys = e.valueKeys[:0]
	e.events.ValuesCleared.Emit(e)
	return true
}

func (e *Entity) HasValue(k Key) bool {
	_, ok := e.values[k]
	return ok
}

func (e *Entity) ValueCount() int {
	return len(e.values)
}

// ValueKeys returns the stored keys in insertion order.
func (e *Entity) ValueKeys() []Key {
	return slices.Clone(e.valueKeys)
}

func (e *Entity) insert(k Key, v any) {
	e.values[k] = v
	e.valueKeys = append(e.valueKeys, k)
	e.events.ValueAdded.Emit(ValueEvent{Entity: e, Key: k, Value: v})
}

func (e *Entity) AddNamedValue(name string, v any) bool {
	return e.AddValue(keys.Of(name), v)
}

func (e *Entity) SetNamedValue(name string, v any) {
	e.SetValue(keys.Of(name), v)
}

func (e *Entity) GetNamedValue(name string) (any, error) {
	return e.GetValue(keys.Hash(name))
}

func (e *Entity) TryGetNamedValue(name string) (any, bool) {
	return e.TryGetValue(keys.Hash(name))
}

func (e *Entity) DelNamedValue(name string) bool {
	return e.DelValue(keys.Hash(name))
}

func (e *Entity) HasNamedValue(name string) bool {
	return e.HasValue(keys.Hash(name))
}

// Value returns the value under k as a T. It fails with ErrValueNotFound when
// k is missing and ErrValueType when the stored value is not a T.
func Value[T any](e *Entity, k Key) (T, error) {
	var zero T
	v, err := e.GetValue(k)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrValueType, k, v)
	}
	return t, nil
}

// TryValue is Value without the error detail.
func TryValue[T any](e *Entity, k Key) (T, bool) {
	v, ok := e.values[k]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

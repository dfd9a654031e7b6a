package entity

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/pkg/sequence"
)

// AddCapability attaches c and brings it in line with the entity state: Init
// runs when the entity is initialized, scheduling and Enable follow when it is
// enabled. It reports false when c is nil or already attached.
//
// c stays attached when one of its hooks fails; the error is returned with
// true and no CapabilityAdded notification is sent.
func (e *Entity) AddCapability(c Capability) (bool, error) {
	if c == nil {
		return false, nil
	}
	if !isComparable(c) {
		return false, fmt.Errorf("%w: %T", ErrCapabilityNotComparable, c)
	}
	if _, ok := e.index[c]; ok {
		return false, nil
	}

	e.seq++
	seq := e.seq
	e.index[c] = seq
	e.capabilities = append(e.capabilities, member{capability: c, seq: seq})

	if e.initialized {
		if h, ok := c.(Initializer); ok {
			if err := h.Init(e); err != nil {
				return true, err
			}
		}
	}
	if e.enabled && e.attached(c, seq) {
		if err := e.activate(c); err != nil {
			return true, err
		}
	}

	e.events.CapabilityAdded.Emit(CapabilityEvent{Entity: e, Capability: c})
	return true, nil
}

// AddCapabilities attaches each capability in order and stops at the first
// error.
func (e *Entity) AddCapabilities(cs ...Capability) error {
	for _, c := range cs {
		if _, err := e.AddCapability(c); err != nil {
			return err
		}
	}
	return nil
}

// RemoveCapability detaches c, then runs its Disable hook when the current
// enable cycle brought it up and its Dispose hook when the entity is initialized. It reports
// false when c was not attached.
func (e *Entity) RemoveCapability(c Capability) (bool, error) {
	if c == nil || !isComparable(c) {
		return false, nil
	}
	seq, ok := e.index[c]
	if !ok {
		return false, nil
	}

	delete(e.index, c)
	for i, m := range e.capabilities {
		if m.seq == seq {
			e.capabilities = slices.Delete(e.capabilities, i, i+1)
			break
		}
	}

	if _, ok := e.active[c]; ok {
		delete(e.active, c)
		e.unschedule(c)
		if h, ok := c.(Disabler); ok {
			if err := h.Disable(e); err != nil {
				return true, err
			}
		}
	}
	if e.initialized {
		if h, ok := c.(Disposer); ok {
			if err := h.Dispose(e); err != nil {
				return true, err
			}
		}
	}

	e.events.CapabilityRemoved.Emit(CapabilityEvent{Entity: e, Capability: c})
	return true, nil
}

// ClearCapabilities detaches every capability at once. No Disable or Dispose
// hook runs and a single CapabilitiesCleared notification is sent; callers
// that need teardown must remove capabilities one by one or dispose the
// entity first. It reports false when there was nothing to clear.
func (e *Entity) ClearCapabilities() bool {
	if len(e.capabilities) == 0 {
		return false
	}

	clear(e.capabilities)
	e.capabilities = e.capabilities[:0]
	clear(e.index)
	clear(e.active)
	clear(e.tickers)
	clear(e.fixedTickers)
	clear(e.lateTickers)
	e.tickers = e.tickers[:0]
	e.fixedTickers = e.fixedTickers[:0]
	e.lateTickers = e.lateTickers[:0]

	e.log.Debug("entity capabilities cleared", log.Stringer("entity", e))
	e.events.CapabilitiesCleared.Emit(e)
	return true
}

func (e *Entity) HasCapability(c Capability) bool {
	if c == nil || !isComparable(c) {
		return false
	}
	_, ok := e.index[c]
	return ok
}

func (e *Entity) CapabilityCount() int {
	return len(e.capabilities)
}

// Capabilities iterates over a snapshot of the attached capabilities in
// insertion order.
func (e *Entity) Capabilities() *sequence.Iterator[Capability] {
	out := make([]Capability, len(e.capabilities))
	for i, m := range e.capabilities {
		out[i] = m.capability
	}
	return sequence.From(out)
}

// CapabilityOf returns the first attached capability assignable to T.
func CapabilityOf[T any](e *Entity) (T, bool) {
	for _, m := range e.capabilities {
		if v, ok := m.capability.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// CapabilitiesOf returns every attached capability assignable to T.
func CapabilitiesOf[T any](e *Entity) []T {
	return sequence.OfType[Capability, T](e.Capabilities()).Collect()
}

func (e *Entity) attached(c Capability, seq uint64) bool {
	s, ok := e.index[c]
	return ok && s == seq
}

func isComparable(c Capability) bool {
	return reflect.TypeOf(c).Comparable()
}

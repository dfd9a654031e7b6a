// Package signal provides single-threaded observer registration points.
//
// A Signal fans a value out to its handlers synchronously, in subscription
// order, on the goroutine that calls Emit. It performs no locking: the owner
// serializes Subscribe, Unsubscribe and Emit.
package signal

import "github.com/google/uuid"

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uuid.UUID
	active bool
	cancel func(*Subscription) bool
}

// ID is a unique identifier for this subscription.
func (s *Subscription) ID() string {
	return s.id.String()
}

// Active reports whether the handler is still registered.
func (s *Subscription) Active() bool {
	return s != nil && s.active
}

// Cancel removes the handler from its signal. It reports whether the handler
// was still registered. Multiple calls are safe.
func (s *Subscription) Cancel() bool {
	if !s.Active() {
		return false
	}
	return s.cancel(s)
}

type handler[T any] struct {
	sub *Subscription
	fn  func(T)
}

// Signal is a typed notification point. The zero value is ready to use.
type Signal[T any] struct {
	// handlers is replaced, never mutated in place, so Emit can iterate the
	// slice it loaded while handlers subscribe or cancel.
	handlers []handler[T]
}

// Subscribe registers fn and returns its handle. A nil fn is ignored and
// yields an inactive subscription.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{id: uuid.New(), cancel: s.remove}
	if fn == nil {
		return sub
	}
	sub.active = true

	next := make([]handler[T], len(s.handlers), len(s.handlers)+1)
	copy(next, s.handlers)
	s.handlers = append(next, handler[T]{sub: sub, fn: fn})
	return sub
}

// Unsubscribe cancels sub if it belongs to this signal.
func (s *Signal[T]) Unsubscribe(sub *Subscription) bool {
	if !sub.Active() {
		return false
	}
	return s.remove(sub)
}

// Emit calls every active handler with v.
func (s *Signal[T]) Emit(v T) {
	for _, h := range s.handlers {
		if h.sub.active {
			h.fn(v)
		}
	}
}

// Drain calls every active handler with v and cancels them all. Handlers
// subscribed during the emission belong to the next one and stay registered.
func (s *Signal[T]) Drain(v T) {
	handlers := s.handlers
	s.handlers = nil
	for _, h := range handlers {
		h.sub.cancel = drained
	}
	for _, h := range handlers {
		if h.sub.active {
			h.fn(v)
		}
	}
	for _, h := range handlers {
		h.sub.active = false
	}
}

func drained(sub *Subscription) bool {
	sub.active = false
	return true
}

// Clear cancels every subscription.
func (s *Signal[T]) Clear() {
	for _, h := range s.handlers {
		h.sub.active = false
	}
	s.handlers = nil
}

// Len returns the number of registered handlers.
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

func (s *Signal[T]) remove(sub *Subscription) bool {
	for i, h := range s.handlers {
		if h.sub != sub {
			continue
		}
		sub.active = false
		next := make([]handler[T], 0, len(s.handlers)-1)
		next = append(next, s.handlers[:i]...)
		s.handlers = append(next, s.handlers[i+1:]...)
		return true
	}
	return false
}

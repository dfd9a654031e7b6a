// Package identity issues entity identifiers and resolves them back to live
// instances.
package identity

import (
	"strconv"
	"sync/atomic"
)

// ID is a process-unique entity identifier. Zero is never issued.
type ID uint64

// Nil is the zero ID; no entity carries it.
const Nil ID = 0

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Allocator hands out identifiers. Implementations must never return the
// same ID twice and must be safe for concurrent use.
type Allocator interface {
	Next() ID
}

var _ Allocator = (*Counter)(nil)

// Counter is a monotonically increasing Allocator starting at 1.
type Counter struct {
	last atomic.Uint64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) Next() ID {
	return ID(c.last.Add(1))
}

// Last returns the most recently issued ID, or Nil if none was issued.
func (c *Counter) Last() ID {
	return ID(c.last.Load())
}

// Reset restarts the sequence. Only meant for isolated counters in tests;
// resetting a counter whose IDs are still in use breaks uniqueness.
func (c *Counter) Reset() {
	c.last.Store(0)
}

var processCounter = NewCounter()

// Default returns the process-wide allocator.
func Default() Allocator {
	return processCounter
}

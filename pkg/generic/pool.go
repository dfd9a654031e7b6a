package generic

import "sync"

// Pool is a typed sync.Pool. When reset is set it runs on every value
// handed back through Put, before the value becomes reusable.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T) *Pool[T] {
	return NewResetPool(generate, nil)
}

func NewResetPool[T any](generate func() T, reset func(T) T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
		reset: reset,
	}
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}

// Slice is a pooled scratch buffer. It is handed out by pointer so that
// putting it back does not allocate.
type Slice[T any] struct {
	Items []T
}

// NewSlicePool returns a pool of scratch buffers with the given starting
// capacity. Returned buffers are cleared so pooled memory holds no stale
// references.
func NewSlicePool[T any](capacity int) *Pool[*Slice[T]] {
	return NewResetPool(
		func() *Slice[T] {
			return &Slice[T]{Items: make([]T, 0, capacity)}
		},
		func(s *Slice[T]) *Slice[T] {
			clear(s.Items)
			s.Items = s.Items[:0]
			return s
		},
	)
}

package entity

import (
	"github.com/zeusync/compose/internal/core/identity"
	"github.com/zeusync/compose/internal/core/observability/log"
)

var nopLogger = log.NewNop()

type options struct {
	name      string
	allocator identity.Allocator
	log       log.Log
}

type Option func(*options)

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithAllocator issues the entity ID from a instead of the process allocator.
func WithAllocator(a identity.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

func WithLogger(l log.Log) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

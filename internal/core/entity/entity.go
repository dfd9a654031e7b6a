// Package entity implements composable runtime objects. An Entity owns a set
// of tags, a keyed value store and an ordered set of capabilities, and drives
// those capabilities through a small lifecycle:
//
//	Uninitialized -> Init -> Initialized -> Enable -> Enabled
//	Enabled -> Disable -> Initialized -> Dispose -> Uninitialized
//
// An Entity is not safe for concurrent use. All calls on one entity, including
// hook callbacks and signal handlers, happen on the goroutine that owns it.
// Hooks may re-enter the entity, for example to add or remove capabilities.
package entity

import (
	"fmt"

	"github.com/zeusync/compose/internal/core/identity"
	"github.com/zeusync/compose/internal/core/keys"
	"github.com/zeusync/compose/internal/core/observability/log"
)

// Key identifies a tag or a value slot.
type Key = keys.Key

// ID is an entity identifier.
type ID = identity.ID

// Identifiable is anything that carries an entity ID.
type Identifiable interface {
	ID() ID
}

var registry = identity.NewRegistry[Entity]()

// Lookup resolves an ID issued by the default allocator back to a live entity.
// Entities created with a custom allocator are never found here.
func Lookup(id ID) (*Entity, bool) {
	return registry.Lookup(id)
}

type member struct {
	capability Capability
	seq        uint64
}

type Entity struct {
	id   ID
	name string
	log  log.Log

	initialized bool
	enabled     bool
	spawned     bool
	installed   bool

	tags      map[Key]struct{}
	values    map[Key]any
	valueKeys []Key

	// capabilities keeps insertion order; index maps each attached capability
	// to the sequence number of its current membership.
	capabilities []member
	index        map[Capability]uint64
	seq          uint64

	// active holds the capabilities brought up by the current enable cycle;
	// epoch changes on every Enable and Disable.
	active       map[Capability]struct{}
	epoch        uint64
	tickers      []Ticker
	fixedTickers []FixedTicker
	lateTickers  []LateTicker

	events Events
}

// New creates an uninitialized entity with a fresh ID.
func New(opts ...Option) *Entity {
	o := options{
		allocator: identity.Default(),
		log:       nopLogger,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Entity{
		id:     o.allocator.Next(),
		name:   o.name,
		log:    o.log,
		tags:   make(map[Key]struct{}),
		values: make(map[Key]any),
		index:  make(map[Capability]uint64),
		active: make(map[Capability]struct{}),
	}
	if o.allocator == identity.Default() {
		registry.Register(e.id, e)
	}
	return e
}

func (e *Entity) ID() ID {
	return e.id
}

func (e *Entity) Name() string {
	return e.name
}

func (e *Entity) SetName(name string) {
	e.name = name
}

// String renders the entity as name#id, or entity#id when unnamed.
func (e *Entity) String() string {
	name := e.name
	if name == "" {
		name = "entity"
	}
	return fmt.Sprintf("%s#%d", name, e.id)
}

// Equal reports whether other carries the same ID.
func (e *Entity) Equal(other Identifiable) bool {
	if other == nil {
		return false
	}
	if o, ok := other.(*Entity); ok && o == nil {
		return false
	}
	return e.id == other.ID()
}

// Hash is derived from the ID only.
func (e *Entity) Hash() uint64 {
	return uint64(e.id)
}

// Events exposes the entity's notification points.
func (e *Entity) Events() *Events {
	return &e.events
}

// Logger returns the logger the entity was created with.
func (e *Entity) Logger() log.Log {
	return e.log
}

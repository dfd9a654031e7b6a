package entity

import "github.com/zeusync/compose/internal/core/events/signal"

// UpdateEvent is emitted after a tick pass.
type UpdateEvent struct {
	Entity *Entity
	DT     float64
}

type TagEvent struct {
	Entity *Entity
	Key    Key
}

// ValueEvent describes a value store mutation. Previous is only set for
// ValueChanged.
type ValueEvent struct {
	Entity   *Entity
	Key      Key
	Value    any
	Previous any
}

type CapabilityEvent struct {
	Entity     *Entity
	Capability Capability
}

// Events groups every notification point of an entity. Handlers run
// synchronously on the entity's goroutine.
type Events struct {
	Initialized signal.Signal[*Entity]
	Enabled     signal.Signal[*Entity]
	Disabled    signal.Signal[*Entity]
	Disposed    signal.Signal[*Entity]
	Spawned     signal.Signal[*Entity]
	Despawned   signal.Signal[*Entity]

	TickUpdated      signal.Signal[UpdateEvent]
	FixedTickUpdated signal.Signal[UpdateEvent]
	LateTickUpdated  signal.Signal[UpdateEvent]

	TagAdded    signal.Signal[TagEvent]
	TagDeleted  signal.Signal[TagEvent]
	TagsCleared signal.Signal[*Entity]

	ValueAdded    signal.Signal[ValueEvent]
	ValueChanged  signal.Signal[ValueEvent]
	ValueDeleted  signal.Signal[ValueEvent]
	ValuesCleared signal.Signal[*Entity]

	CapabilityAdded     signal.Signal[CapabilityEvent]
	CapabilityRemoved   signal.Signal[CapabilityEvent]
	CapabilitiesCleared signal.Signal[*Entity]
}

// dispose drops the subscribers of the lifecycle and update signals and
// sends Disposed to its own subscribers as their last notification. Store
// signals survive a dispose.
func (ev *Events) dispose(e *Entity) {
	ev.Initialized.Clear()
	ev.Enabled.Clear()
	ev.Disabled.Clear()
	ev.Spawned.Clear()
	ev.Despawned.Clear()
	ev.TickUpdated.Clear()
	ev.FixedTickUpdated.Clear()
	ev.LateTickUpdated.Clear()
	ev.Disposed.Drain(e)
}

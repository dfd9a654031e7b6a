package entity

import "io"

// Capability is any behavior object attached to an entity. What it can do is
// decided by which of the single-method contracts below it implements; an
// object may implement none, one or all of them.
//
// Capabilities are tracked by identity, so they must be comparable. Pointer
// types are the normal choice.
type Capability any

// Initializer runs when the entity is initialized, or when it is attached to
// an entity that already is.
type Initializer interface {
	Init(e *Entity) error
}

// Enabler runs when the entity is enabled, or when it is attached to an
// enabled entity.
type Enabler interface {
	Enable(e *Entity) error
}

// Disabler runs when the entity is disabled, or when it is detached from an
// enabled entity.
type Disabler interface {
	Disable(e *Entity) error
}

// Disposer runs when the entity is disposed, or when it is detached from an
// initialized entity.
type Disposer interface {
	Dispose(e *Entity) error
}

// Ticker is called once per variable-rate frame while the entity is enabled.
type Ticker interface {
	Tick(e *Entity, dt float64) error
}

// FixedTicker is called once per fixed-rate step while the entity is enabled.
type FixedTicker interface {
	FixedTick(e *Entity, dt float64) error
}

// LateTicker is called once per post-pass while the entity is enabled.
type LateTicker interface {
	LateTick(e *Entity, dt float64) error
}

// Spawner runs when a pooled entity is handed out.
type Spawner interface {
	Spawn(e *Entity) error
}

// Despawner runs when a pooled entity is handed back.
type Despawner interface {
	Despawn(e *Entity) error
}

// DebugDrawer writes a human readable description of its own state.
type DebugDrawer interface {
	DebugDraw(e *Entity, w io.Writer) error
}

package entity

import (
	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/pkg/generic"
)

// State is the lifecycle position of an entity.
type State uint8

const (
	StateUninitialized State = iota
	StateInitialized
	StateEnabled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Scratch buffers for dispatch snapshots. Each pass takes its own buffer, so
// a hook that ticks another entity, or this one again, never shares one.
var (
	memberScratch    = generic.NewSlicePool[member](16)
	tickScratch      = generic.NewSlicePool[Ticker](16)
	fixedTickScratch = generic.NewSlicePool[FixedTicker](16)
	lateTickScratch  = generic.NewSlicePool[LateTicker](16)
)

func (e *Entity) State() State {
	switch {
	case e.enabled:
		return StateEnabled
	case e.initialized:
		return StateInitialized
	default:
		return StateUninitialized
	}
}

func (e *Entity) IsInitialized() bool {
	return e.initialized
}

func (e *Entity) IsEnabled() bool {
	return e.enabled
}

func (e *Entity) IsSpawned() bool {
	return e.spawned
}

// Init runs every Init hook. It does nothing when already initialized. The
// first hook error stops the pass and is returned as is; the entity stays
// initialized.
func (e *Entity) Init() error {
	if e.initialized {
		return nil
	}
	e.initialized = true

	err := e.sweep(func(c Capability) error {
		if h, ok := c.(Initializer); ok {
			return h.Init(e)
		}
		return nil
	})
	if err != nil || !e.initialized {
		return err
	}

	e.log.Debug("entity initialized", log.Stringer("entity", e))
	e.events.Initialized.Emit(e)
	return nil
}

// Enable initializes the entity if needed, then registers every capability
// with the dispatch lists it qualifies for and runs its Enable hook. Each
// capability is brought up at most once per enable cycle, even when a hook
// re-enters the lifecycle. If a hook disables the entity, the rest of the
// sweep is skipped and no Enabled notification is sent.
func (e *Entity) Enable() error {
	if e.enabled {
		return nil
	}
	if err := e.Init(); err != nil {
		return err
	}
	if e.enabled || !e.initialized {
		// an Init hook enabled or disposed the entity
		return nil
	}
	e.enabled = true
	e.epoch++
	epoch := e.epoch

	err := e.sweep(func(c Capability) error {
		if e.epoch != epoch {
			return nil
		}
		return e.activate(c)
	})
	if err != nil {
		return err
	}
	if e.epoch != epoch {
		return nil
	}

	e.log.Debug("entity enabled", log.Stringer("entity", e))
	e.events.Enabled.Emit(e)
	return nil
}

// Disable empties the dispatch lists and runs the Disable hook of every
// capability the current enable cycle brought up.
func (e *Entity) Disable() error {
	if !e.enabled {
		return nil
	}
	e.enabled = false
	e.epoch++
	epoch := e.epoch
	was := e.active
	e.active = make(map[Capability]struct{}, len(was))
	clear(e.tickers)
	clear(e.fixedTickers)
	clear(e.lateTickers)
	e.tickers = e.tickers[:0]
	e.fixedTickers = e.fixedTickers[:0]
	e.lateTickers = e.lateTickers[:0]

	err := e.sweep(func(c Capability) error {
		if _, ok := was[c]; !ok {
			return nil
		}
		if h, ok := c.(Disabler); ok {
			return h.Disable(e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if e.epoch != epoch {
		// a hook enabled the entity again
		return nil
	}

	e.log.Debug("entity disabled", log.Stringer("entity", e))
	e.events.Disabled.Emit(e)
	return nil
}

// Dispose disables the entity if needed and runs every Dispose hook. The
// subscribers of the lifecycle and update signals are then dropped, Disposed
// subscribers last, right after their notification; what they subscribe
// while handling it stays registered. Capabilities, tags and values stay
// attached, so the entity can be initialized again.
func (e *Entity) Dispose() error {
	if !e.initialized {
		return nil
	}
	if err := e.Disable(); err != nil {
		return err
	}
	if e.enabled || !e.initialized {
		// a Disable hook enabled the entity again or disposed it
		return nil
	}
	e.initialized = false

	err := e.sweep(func(c Capability) error {
		if h, ok := c.(Disposer); ok {
			return h.Dispose(e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if e.initialized {
		// a Dispose hook initialized the entity again
		return nil
	}

	e.log.Debug("entity disposed", log.Stringer("entity", e))
	e.events.dispose(e)
	return nil
}

// Spawn marks the entity as handed out and runs every Spawn hook. Spawning
// is independent of the Init/Enable state.
func (e *Entity) Spawn() error {
	if e.spawned {
		return nil
	}
	e.spawned = true

	err := e.sweep(func(c Capability) error {
		if h, ok := c.(Spawner); ok {
			return h.Spawn(e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.events.Spawned.Emit(e)
	return nil
}

func (e *Entity) Despawn() error {
	if !e.spawned {
		return nil
	}
	e.spawned = false

	err := e.sweep(func(c Capability) error {
		if h, ok := c.(Despawner); ok {
			return h.Despawn(e)
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.events.Despawned.Emit(e)
	return nil
}

// Tick calls every registered Ticker with dt, in registration order, then
// emits TickUpdated. It does nothing while the entity is disabled.
//
// The list is copied before the pass: a capability attached by a hook is
// first ticked on the next frame, and one detached by a hook still receives
// the current frame. A hook that disables the entity ends the pass without
// the notification.
func (e *Entity) Tick(dt float64) error {
	if !e.enabled {
		return nil
	}
	buf := tickScratch.Get()
	buf.Items = append(buf.Items, e.tickers...)
	epoch := e.epoch
	var err error
	for _, t := range buf.Items {
		if e.epoch != epoch {
			break
		}
		if err = t.Tick(e, dt); err != nil {
			break
		}
	}
	tickScratch.Put(buf)
	if err != nil || e.epoch != epoch {
		return err
	}
	e.events.TickUpdated.Emit(UpdateEvent{Entity: e, DT: dt})
	return nil
}

func (e *Entity) FixedTick(dt float64) error {
	if !e.enabled {
		return nil
	}
	buf := fixedTickScratch.Get()
	buf.Items = append(buf.Items, e.fixedTickers...)
	epoch := e.epoch
	var err error
	for _, t := range buf.Items {
		if e.epoch != epoch {
			break
		}
		if err = t.FixedTick(e, dt); err != nil {
			break
		}
	}
	fixedTickScratch.Put(buf)
	if err != nil || e.epoch != epoch {
		return err
	}
	e.events.FixedTickUpdated.Emit(UpdateEvent{Entity: e, DT: dt})
	return nil
}

func (e *Entity) LateTick(dt float64) error {
	if !e.enabled {
		return nil
	}
	buf := lateTickScratch.Get()
	buf.Items = append(buf.Items, e.lateTickers...)
	epoch := e.epoch
	var err error
	for _, t := range buf.Items {
		if e.epoch != epoch {
			break
		}
		if err = t.LateTick(e, dt); err != nil {
			break
		}
	}
	lateTickScratch.Put(buf)
	if err != nil || e.epoch != epoch {
		return err
	}
	e.events.LateTickUpdated.Emit(UpdateEvent{Entity: e, DT: dt})
	return nil
}

// sweep calls fn for every capability attached when the sweep started and
// still attached with the same membership when its turn comes. Capabilities
// attached during the sweep were already brought up to date by
// AddCapability and are not visited.
func (e *Entity) sweep(fn func(Capability) error) error {
	buf := memberScratch.Get()
	defer memberScratch.Put(buf)
	buf.Items = append(buf.Items, e.capabilities...)

	for _, m := range buf.Items {
		if seq, ok := e.index[m.capability]; !ok || seq != m.seq {
			continue
		}
		if err := fn(m.capability); err != nil {
			return err
		}
	}
	return nil
}

// activate schedules c and runs its Enable hook unless the current enable
// cycle already did.
func (e *Entity) activate(c Capability) error {
	if _, ok := e.active[c]; ok {
		return nil
	}
	e.active[c] = struct{}{}
	e.schedule(c)
	if h, ok := c.(Enabler); ok {
		return h.Enable(e)
	}
	return nil
}

func (e *Entity) schedule(c Capability) {
	if t, ok := c.(Ticker); ok {
		e.tickers = append(e.tickers, t)
	}
	if t, ok := c.(FixedTicker); ok {
		e.fixedTickers = append(e.fixedTickers, t)
	}
	if t, ok := c.(LateTicker); ok {
		e.lateTickers = append(e.lateTickers, t)
	}
}

func (e *Entity) unschedule(c Capability) {
	if _, ok := c.(Ticker); ok {
		e.tickers = without(e.tickers, c)
	}
	if _, ok := c.(FixedTicker); ok {
		e.fixedTickers = without(e.fixedTickers, c)
	}
	if _, ok := c.(LateTicker); ok {
		e.lateTickers = without(e.lateTickers, c)
	}
}

func without[T any](list []T, c Capability) []T {
	for i, item := range list {
		if any(item) == c {
			copy(list[i:], list[i+1:])
			var zero T
			list[len(list)-1] = zero
			return list[:len(list)-1]
		}
	}
	return list
}

// Package host drives a set of entities from a frame loop and republishes
// their notifications on an event bus.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/events/bus"
	"github.com/zeusync/compose/internal/core/events/signal"
	"github.com/zeusync/compose/internal/core/identity"
	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/pkg/concurrent"
	"github.com/zeusync/compose/pkg/sequence"
)

var (
	ErrAlreadyRunning = errors.New("host is already running")
	ErrInvalidOptions = errors.New("invalid host options")
)

// maxFixedSteps bounds the fixed-step catch-up of a single frame; leftover
// time is dropped.
const maxFixedSteps = 8

type Options struct {
	TickRate      time.Duration
	FixedTickRate time.Duration
	// Workers > 0 ticks entities in parallel with at most that many
	// goroutines.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		TickRate:      16 * time.Millisecond,
		FixedTickRate: 20 * time.Millisecond,
	}
}

func (o Options) Validate() error {
	switch {
	case o.TickRate <= 0:
		return fmt.Errorf("%w: tick rate %s", ErrInvalidOptions, o.TickRate)
	case o.FixedTickRate <= 0:
		return fmt.Errorf("%w: fixed tick rate %s", ErrInvalidOptions, o.FixedTickRate)
	case o.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

type member struct {
	entity    *entity.Entity
	store     []*signal.Subscription
	lifecycle []*signal.Subscription
}

// Host owns no entity state of its own: it forwards frame calls in the order
// entities were added. Add, Remove and the tick passes may be called from
// different goroutines, but a pass must not overlap another pass.
type Host struct {
	opts Options
	log  log.Log
	bus  bus.EventBus

	mu      sync.RWMutex
	members map[identity.ID]*member
	order   []*entity.Entity

	running atomic.Bool
	frames  atomic.Uint64
}

func New(opts Options, logger log.Log, eventBus bus.EventBus) *Host {
	if logger == nil {
		logger = log.NewNop()
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	defaults := DefaultOptions()
	if opts.TickRate <= 0 {
		opts.TickRate = defaults.TickRate
	}
	if opts.FixedTickRate <= 0 {
		opts.FixedTickRate = defaults.FixedTickRate
	}

	return &Host{
		opts:    opts,
		log:     logger.Named("host"),
		bus:     eventBus,
		members: make(map[identity.ID]*member),
	}
}

func (h *Host) Options() Options  { return h.opts }
func (h *Host) Bus() bus.EventBus { return h.bus }
func (h *Host) Frames() uint64    { return h.frames.Load() }
func (h *Host) IsRunning() bool   { return h.running.Load() }

// Add registers e and starts forwarding its notifications. It returns false
// for nil or already added entities.
func (h *Host) Add(e *entity.Entity) bool {
	if e == nil {
		return false
	}

	h.mu.Lock()
	if _, ok := h.members[e.ID()]; ok {
		h.mu.Unlock()
		return false
	}
	m := &member{entity: e}
	h.members[e.ID()] = m
	h.order = append(h.order, e)
	h.mu.Unlock()

	h.attach(m)
	h.publish(EventAdded, e, nil)
	h.log.Debug("Entity added", log.Stringer("entity", e))
	return true
}

// Remove detaches e without touching its lifecycle.
func (h *Host) Remove(e *entity.Entity) bool {
	if e == nil {
		return false
	}

	h.mu.Lock()
	m, ok := h.members[e.ID()]
	if !ok {
		h.mu.Unlock()
		return false
	}
	delete(h.members, e.ID())
	for i, other := range h.order {
		if other == e {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	subs := slices.Concat(m.store, m.lifecycle)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	h.publish(EventRemoved, e, nil)
	h.log.Debug("Entity removed", log.Stringer("entity", e))
	return true
}

func (h *Host) Get(id identity.ID) (*entity.Entity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	m, ok := h.members[id]
	if !ok {
		return nil, false
	}
	return m.entity, true
}

// Entities iterates a snapshot of the hosted entities in insertion order.
func (h *Host) Entities() *sequence.Iterator[*entity.Entity] {
	return sequence.From(h.snapshot())
}

func (h *Host) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

func (h *Host) snapshot() []*entity.Entity {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*entity.Entity(nil), h.order...)
}

// Start enables every hosted entity, initializing those that are not yet.
func (h *Host) Start() error {
	err := h.pass("enable", func(e *entity.Entity) error { return e.Enable() })
	h.log.Info("Host started", log.Int("entities", h.Len()))
	return err
}

// Stop disposes every hosted entity, then detaches and closes its
// capabilities that hold resources. The entities stay hosted and can be
// started again without those capabilities.
func (h *Host) Stop() error {
	err := h.pass("dispose", func(e *entity.Entity) error {
		if err := e.Dispose(); err != nil {
			return err
		}
		var errs []error
		for _, c := range entity.CapabilitiesOf[io.Closer](e) {
			if _, err := e.RemoveCapability(c); err != nil {
				errs = append(errs, err)
			}
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	})
	h.log.Info("Host stopped", log.Uint64("frames", h.frames.Load()))
	return err
}

func (h *Host) Tick(dt float64) error {
	return h.pass("tick", func(e *entity.Entity) error { return e.Tick(dt) })
}

func (h *Host) FixedTick(dt float64) error {
	return h.pass("fixed_tick", func(e *entity.Entity) error { return e.FixedTick(dt) })
}

func (h *Host) LateTick(dt float64) error {
	return h.pass("late_tick", func(e *entity.Entity) error { return e.LateTick(dt) })
}

// TickParallel ticks every entity exactly once, spread over at most Workers
// goroutines. Entities must not share mutable capabilities.
func (h *Host) TickParallel(ctx context.Context, dt float64) error {
	var (
		mu   sync.Mutex
		errs []error
	)
	err := concurrent.ForEach(ctx, h.Entities(), h.opts.Workers, func(_ context.Context, e *entity.Entity) error {
		if err := h.run(e, "tick", func(e *entity.Entity) error { return e.Tick(dt) }); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return nil
	})
	return errors.Join(append(errs, err)...)
}

// Run drives frames at TickRate until ctx ends, then stops the host. Each
// frame runs Tick, the fixed steps owed by the accumulator and LateTick.
func (h *Host) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer h.running.Store(false)

	h.log.Info("Frame loop started",
		log.Duration("tick_rate", h.opts.TickRate),
		log.Duration("fixed_tick_rate", h.opts.FixedTickRate),
		log.Int("workers", h.opts.Workers))

	ticker := time.NewTicker(h.opts.TickRate)
	defer ticker.Stop()

	var acc float64
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return h.Stop()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			acc = h.frame(ctx, dt, acc)
		}
	}
}

// frame runs one frame and returns the remaining fixed-step accumulator.
// Failures were already logged per entity.
func (h *Host) frame(ctx context.Context, dt, acc float64) float64 {
	if h.opts.Workers > 0 {
		_ = h.TickParallel(ctx, dt)
	} else {
		_ = h.Tick(dt)
	}

	step := h.opts.FixedTickRate.Seconds()
	acc += dt
	for n := 0; acc >= step; n++ {
		if n == maxFixedSteps {
			h.log.Warn("Fixed step budget exceeded, dropping time", log.Float64("dropped", acc))
			acc = 0
			break
		}
		_ = h.FixedTick(step)
		acc -= step
	}

	_ = h.LateTick(dt)
	h.frames.Add(1)
	return acc
}

// pass applies fn to a snapshot of the hosted entities. A failing entity does
// not stop the pass; failures are joined.
func (h *Host) pass(phase string, fn func(*entity.Entity) error) error {
	var errs []error
	for _, e := range h.snapshot() {
		if err := h.run(e, phase, fn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *Host) run(e *entity.Entity, phase string, fn func(*entity.Entity) error) error {
	err := fn(e)
	if err == nil {
		return nil
	}

	h.log.Error("Entity hook failed",
		log.Uint64("entity_id", uint64(e.ID())),
		log.String("entity_name", e.Name()),
		log.String("phase", phase),
		log.Error(err))
	h.publish(EventFailed, e, map[string]any{"phase": phase, "error": err.Error()})
	return fmt.Errorf("%s %s: %w", e, phase, err)
}

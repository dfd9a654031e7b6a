package host

import (
	"fmt"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/events/bus"
	"github.com/zeusync/compose/internal/core/events/signal"
	"github.com/zeusync/compose/internal/core/keys"
	"github.com/zeusync/compose/internal/core/observability/log"
)

// Bus event types published by the host. Tick notifications are not
// republished.
const (
	EventAdded   = "entity.added"
	EventRemoved = "entity.removed"
	EventFailed  = "entity.failed"

	EventInitialized = "entity.initialized"
	EventEnabled     = "entity.enabled"
	EventDisabled    = "entity.disabled"
	EventDisposed    = "entity.disposed"
	EventSpawned     = "entity.spawned"
	EventDespawned   = "entity.despawned"

	EventTagAdded    = "entity.tag.added"
	EventTagDeleted  = "entity.tag.deleted"
	EventTagsCleared = "entity.tags.cleared"

	EventValueAdded    = "entity.value.added"
	EventValueChanged  = "entity.value.changed"
	EventValueDeleted  = "entity.value.deleted"
	EventValuesCleared = "entity.values.cleared"

	EventCapabilityAdded     = "entity.capability.added"
	EventCapabilityRemoved   = "entity.capability.removed"
	EventCapabilitiesCleared = "entity.capabilities.cleared"
)

// attach forwards the store notifications of e to the bus and links the
// lifecycle ones.
func (h *Host) attach(m *member) {
	e := m.entity
	ev := e.Events()
	tag := func(s *signal.Signal[entity.TagEvent], typ string) *signal.Subscription {
		return s.Subscribe(func(te entity.TagEvent) {
			h.publish(typ, te.Entity, map[string]any{"tag": keys.Format(te.Key)})
		})
	}
	value := func(s *signal.Signal[entity.ValueEvent], typ string) *signal.Subscription {
		return s.Subscribe(func(ve entity.ValueEvent) {
			data := map[string]any{"key": keys.Format(ve.Key), "value": ve.Value}
			if typ == EventValueChanged {
				data["previous"] = ve.Previous
			}
			h.publish(typ, ve.Entity, data)
		})
	}
	capability := func(s *signal.Signal[entity.CapabilityEvent], typ string) *signal.Subscription {
		return s.Subscribe(func(ce entity.CapabilityEvent) {
			h.publish(typ, ce.Entity, map[string]any{"capability": fmt.Sprintf("%T", ce.Capability)})
		})
	}

	subs := []*signal.Subscription{
		tag(&ev.TagAdded, EventTagAdded),
		tag(&ev.TagDeleted, EventTagDeleted),
		forward(h, &ev.TagsCleared, EventTagsCleared),

		value(&ev.ValueAdded, EventValueAdded),
		value(&ev.ValueChanged, EventValueChanged),
		value(&ev.ValueDeleted, EventValueDeleted),
		forward(h, &ev.ValuesCleared, EventValuesCleared),

		capability(&ev.CapabilityAdded, EventCapabilityAdded),
		capability(&ev.CapabilityRemoved, EventCapabilityRemoved),
		forward(h, &ev.CapabilitiesCleared, EventCapabilitiesCleared),
	}

	h.mu.Lock()
	m.store = subs
	h.mu.Unlock()
	h.link(m)
}

// link subscribes the lifecycle forwarders. Dispose drops them, so the
// Disposed forwarder links a fresh set for the entity's next life.
func (h *Host) link(m *member) {
	e := m.entity
	ev := e.Events()
	subs := []*signal.Subscription{
		forward(h, &ev.Initialized, EventInitialized),
		forward(h, &ev.Enabled, EventEnabled),
		forward(h, &ev.Disabled, EventDisabled),
		forward(h, &ev.Spawned, EventSpawned),
		forward(h, &ev.Despawned, EventDespawned),
		ev.Disposed.Subscribe(func(e *entity.Entity) {
			h.publish(EventDisposed, e, nil)
			h.link(m)
		}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.members[e.ID()] != m {
		for _, sub := range subs {
			sub.Cancel()
		}
		return
	}
	m.lifecycle = subs
}

func forward(h *Host, s *signal.Signal[*entity.Entity], typ string) *signal.Subscription {
	return s.Subscribe(func(e *entity.Entity) { h.publish(typ, e, nil) })
}

func (h *Host) publish(typ string, e *entity.Entity, data map[string]any) {
	if err := h.bus.Publish(bus.NewEvent(typ, e.ID(), e.Name(), data)); err != nil {
		h.log.Warn("Event handler failed",
			log.String("type", typ),
			log.Stringer("entity", e),
			log.Error(err))
	}
}

package bus

import (
	"time"

	"github.com/zeusync/compose/internal/core/identity"
)

// AnyType subscribes a handler to every event type.
const AnyType = "*"

// EventBus is a thread-safe, in-process pub/sub bus used to fan entity
// notifications in from many entities to cross-cutting consumers.
//
// Key characteristics:
// - Type-based fan-out: handlers subscribe by Event.Type, or to AnyType.
// - Synchronous delivery in subscription order on the publishing goroutine.
// - Error aggregation: handler errors are joined and returned from Publish.
// - Filters run before delivery; a rejected event is dropped without error.
// - Metrics are only collected while at least one observer is registered.
type EventBus interface {
	Publish(event Event) error
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishAsync delivers on another goroutine. The channel receives the
	// joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	PublishBatch(events ...Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe is safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	GetMetrics() EventBusMetrics
	// Types returns the event types that currently have subscribers.
	Types() []string
}

// Event is a message transported by the bus. Consumers treat it as read-only.
type Event struct {
	Type      string
	Entity    identity.ID
	Name      string
	Timestamp time.Time
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, entity identity.ID, name string, data map[string]any) Event {
	return Event{
		Type:      typ,
		Entity:    entity,
		Name:      name,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type (
	EventHandler func(event Event) error
	// EventFilter decides whether an event should be delivered.
	EventFilter func(event Event) bool
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries. Observers should return
// quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}

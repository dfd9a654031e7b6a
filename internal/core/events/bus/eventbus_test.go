package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(string, Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("entity.enabled", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("entity.enabled", 7, "crate", nil)))
	require.NoError(t, b.Publish(NewEvent("entity.disabled", 7, "crate", nil)))

	require.Len(t, got, 1)
	assert.Equal(t, "entity.enabled", got[0].Type)
	assert.EqualValues(t, 7, got[0].Entity)
	assert.Equal(t, "crate", got[0].Name)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDeliveryOrderAndWildcard(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(AnyType, func(Event) error { order = append(order, "any"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "x1"); return nil })
	_, _ = b.Subscribe("x", func(Event) error { order = append(order, "x2"); return nil })

	require.NoError(t, b.Publish(NewEvent("x", 1, "", nil)))
	assert.Equal(t, []string{"x1", "x2", "any"}, order)

	order = nil
	require.NoError(t, b.Publish(NewEvent("y", 1, "", nil)))
	assert.Equal(t, []string{"any"}, order)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	first, second := errors.New("first"), errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return first })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe(AnyType, func(Event) error { return second })

	err := b.Publish(NewEvent("x", 1, "", nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error { calls++; return nil })
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())
	assert.Equal(t, []string{"x"}, b.Types())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	assert.False(t, sub.IsActive())
	assert.Empty(t, b.Types())

	require.NoError(t, b.Publish(NewEvent("x", 1, "", nil)))
	assert.Zero(t, calls)
}

func TestSubscribeNilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestCancelFromHandler(t *testing.T) {
	b := New()
	var sub Subscription
	calls := 0
	sub, _ = b.Subscribe("x", func(Event) error {
		calls++
		return sub.Cancel()
	})

	require.NoError(t, b.Publish(NewEvent("x", 1, "", nil)))
	require.NoError(t, b.Publish(NewEvent("x", 1, "", nil)))
	assert.Equal(t, 1, calls)
}

func TestPublishWithFilters(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	calls := 0
	_, _ = b.Subscribe("x", func(Event) error { calls++; return nil })

	onlyEntity := func(e Event) bool { return e.Entity == 2 }
	require.NoError(t, b.PublishWithFilters(NewEvent("x", 1, "", nil), onlyEntity))
	require.NoError(t, b.PublishWithFilters(NewEvent("x", 2, "", nil), nil, onlyEntity))

	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 1, b.GetMetrics().DroppedByFilters)
}

func TestPublishAsyncReturnsErrorChannel(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	_, _ = b.Subscribe("x", func(Event) error { return handlerErr })

	select {
	case err := <-b.PublishAsync(NewEvent("x", 1, "", nil)):
		assert.ErrorIs(t, err, handlerErr)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestPublishBatch(t *testing.T) {
	b := New()
	boom := errors.New("boom")
	seen := 0
	_, _ = b.Subscribe(AnyType, func(e Event) error {
		seen++
		if e.Type == "bad" {
			return boom
		}
		return nil
	})

	err := b.PublishBatch(NewEvent("good", 1, "", nil), NewEvent("bad", 1, "", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, seen)
	assert.NoError(t, b.PublishBatch())
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	require.NoError(t, b.Publish(NewEvent("x", 1, "", nil)))
	assert.Zero(t, b.GetMetrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	b.AddObserver(obs)
	_, _ = b.Subscribe("x", func(Event) error { return errors.New("e") })
	_ = b.Publish(NewEvent("x", 1, "", nil))

	m := b.GetMetrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 2, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.Errors)
	assert.EqualValues(t, 2, m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 2, obs.deliveredCount)
	assert.Error(t, obs.lastErr)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("x", 1, "", nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	b := New()
	var mu sync.Mutex
	total := 0
	_, _ = b.Subscribe(AnyType, func(Event) error {
		mu.Lock()
		total++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("x", 1, "", nil))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				sub, _ := b.Subscribe("x", func(Event) error { return nil })
				_ = sub.Cancel()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, total)
}

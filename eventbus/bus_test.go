package eventbus

import (
	"errors"
	"sync"
	"testing"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandlers(t *testing.T) {
	bus := New()
	assert.Equal(t, 0, bus.Len())
	bus.Subscribe("topic", NOOPHandler)
	assert.Equal(t, 1, bus.Len())
	bus.Subscribe("other", NOOPHandler)
	assert.Equal(t, 2, bus.Len())
}

func TestUnregisterHandlers(t *testing.T) {
	bus := New()

	assert.Equal(t, 0, bus.Len())
	first := bus.Subscribe("topic", NOOPHandler)
	bus.Subscribe("topic", NOOPHandler)
	bus.Subscribe("topic", NOOPHandler)
	assert.Equal(t, 3, bus.Len())

	bus.Unsubscribe(first)
	assert.Equal(t, 2, bus.Len())

	bus.Unsubscribe(first)
	assert.Equal(t, 2, bus.Len())

	bus.Unsubscribe(nil)
	assert.Equal(t, 2, bus.Len())
}

func TestPublish_InRegistrationOrder(t *testing.T) {
	bus := New()

	var order []int
	listener := func(n int) EventHandler {
		return Handler(func(evt Event) error {
			order = append(order, n)
			return nil
		})
	}
	bus.Subscribe("the event", listener(1))
	bus.Subscribe("the event", listener(2))
	bus.Subscribe("the event", listener(3))
	bus.Subscribe("another event", listener(4))

	require.NoError(t, bus.Publish("the event", "args"))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_EventFields(t *testing.T) {
	bus := New()

	var seen []Event
	bus.Subscribe("the event", Handler(func(evt Event) error {
		seen = append(seen, evt)
		return nil
	}))

	require.NoError(t, bus.Publish("the event", map[string]int{"a": 1}))
	require.Len(t, seen, 1)
	assert.Equal(t, "the event", seen[0].Name)
	assert.Equal(t, map[string]int{"a": 1}, seen[0].Args)
	assert.False(t, seen[0].At.IsZero())
	assert.False(t, seen[0].ID.IsNil())
	assert.NoError(t, seen[0].Err)
}

func TestPublish_SameHandlerTwice(t *testing.T) {
	bus := New()

	var count int
	handler := Handler(func(Event) error {
		count++
		return nil
	})
	bus.Subscribe("dup", handler)
	bus.Subscribe("dup", handler)

	require.NoError(t, bus.Publish("dup", nil))
	assert.Equal(t, 2, count)
}

func TestPublish_NoListeners(t *testing.T) {
	bus := New()
	assert.NoError(t, bus.Publish("nobody", nil))
}

func TestPublish_HandlerErrorStopsDelivery(t *testing.T) {
	bus := New()

	var calls []string
	bus.Subscribe("topic", Handler(func(Event) error {
		calls = append(calls, "first")
		return assert.AnError
	}))
	bus.Subscribe("topic", Handler(func(Event) error {
		calls = append(calls, "second")
		return nil
	}))

	err := bus.Publish("topic", nil)
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, []string{"first"}, calls)
}

func TestPublish_HandlerPanicPropagates(t *testing.T) {
	bus := New()
	bus.Subscribe("topic", Handler(func(Event) error {
		panic("boom")
	}))

	assert.PanicsWithValue(t, "boom", func() { _ = bus.Publish("topic", nil) })
}

func TestPublish_UnsubscribeDuringDelivery(t *testing.T) {
	bus := New()

	var calls []string
	var second *Subscription
	bus.Subscribe("topic", Handler(func(Event) error {
		calls = append(calls, "first")
		bus.Unsubscribe(second)
		return nil
	}))
	second = bus.Subscribe("topic", Handler(func(Event) error {
		calls = append(calls, "second")
		return nil
	}))

	require.NoError(t, bus.Publish("topic", nil))
	assert.Equal(t, []string{"first", "second"}, calls)

	calls = nil
	require.NoError(t, bus.Publish("topic", nil))
	assert.Equal(t, []string{"first"}, calls)
}

func TestSubscribeFilter(t *testing.T) {
	var count int
	handler := Handler(func(evt Event) error {
		count++
		return nil
	})

	var filterCount int
	correctID := func(evt Event) bool {
		filterCount++
		id, ok := evt.Args.(string)
		return ok && id == "correct-id"
	}

	bus := New()
	bus.Subscribe("trigger", Filtered(correctID, handler))

	require.NoError(t, bus.Publish("trigger", "wrong-id"))
	require.NoError(t, bus.Publish("no-trigger", "correct-id"))
	require.NoError(t, bus.Publish("trigger", "correct-id"))

	assert.Equal(t, 1, count)
	assert.Equal(t, 2, filterCount)
}

func TestInstrument(t *testing.T) {
	bus := New()

	var seen []Event
	bus.Subscribe("work", Handler(func(evt Event) error {
		seen = append(seen, evt)
		return nil
	}))

	var ran bool
	err := bus.Instrument("work", "payload", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	require.Len(t, seen, 1)
	assert.Equal(t, "payload", seen[0].Args)
	assert.True(t, seen[0].Duration >= 0)

	seen = nil
	err = bus.Instrument("work", "payload", func() error { return assert.AnError })
	assert.Equal(t, assert.AnError, err)
	require.Len(t, seen, 1)
	assert.Equal(t, assert.AnError, seen[0].Err)

	seen = nil
	require.NoError(t, bus.Instrument("work", "no body", nil))
	assert.Len(t, seen, 1)
}

func TestInstrument_BodyErrorWins(t *testing.T) {
	bus := New()
	subErr := errors.New("subscriber")
	bus.Subscribe("work", Handler(func(Event) error { return subErr }))

	assert.Equal(t, assert.AnError, bus.Instrument("work", nil, func() error { return assert.AnError }))
	assert.Equal(t, subErr, bus.Instrument("work", nil, func() error { return nil }))
}

func TestListenersFor(t *testing.T) {
	bus := New()
	bus.Subscribe("a", NOOPHandler)
	bus.Subscribe("a", NOOPHandler)
	bus.Subscribe("b", NOOPHandler)

	listeners := bus.ListenersFor("a", "b", "c")
	assert.Len(t, listeners, 2)
	assert.Len(t, listeners["a"], 2)
	assert.Len(t, listeners["b"], 1)
	_, ok := listeners["c"]
	assert.False(t, ok)
}

func TestMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	bus := New(WithRegistry(reg))
	bus.Subscribe("measured", NOOPHandler)

	require.NoError(t, bus.Publish("measured", nil))
	require.NoError(t, bus.Publish("measured", nil))
	require.NoError(t, bus.Publish("unmeasured", nil))

	assert.EqualValues(t, 2, metrics.GetOrRegisterCounter("events.published.measured", reg).Count())
	assert.EqualValues(t, 1, metrics.GetOrRegisterCounter("events.published.unmeasured", reg).Count())
	assert.EqualValues(t, 2, metrics.GetOrRegisterTimer("events.notify", reg).Count())
}

func TestConcurrentRegistration(t *testing.T) {
	bus := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := bus.Subscribe("busy", NOOPHandler)
			bus.Unsubscribe(sub)
		}()
		go func() {
			defer wg.Done()
			_ = bus.Publish("busy", nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Len())
}

func TestNopBus(t *testing.T) {
	sub := NopBus.Subscribe("x", NOOPHandler)
	assert.Equal(t, "x", sub.Topic())
	NopBus.Unsubscribe(sub)
	assert.NoError(t, NopBus.Publish("x", nil))
	assert.Equal(t, assert.AnError, NopBus.Instrument("x", nil, func() error { return assert.AnError }))
	assert.NoError(t, NopBus.Instrument("x", nil, nil))
	assert.Empty(t, NopBus.ListenersFor("x"))
	assert.Equal(t, 0, NopBus.Len())
}

func TestDefaultBus(t *testing.T) {
	var got []interface{}
	sub := Subscribe("default-topic", Handler(func(evt Event) error {
		got = append(got, evt.Args)
		return nil
	}))
	defer Unsubscribe(sub)

	require.NoError(t, Publish("default-topic", 1))
	require.NoError(t, Instrument("default-topic", 2, nil))
	assert.Equal(t, []interface{}{1, 2}, got)
	assert.Len(t, ListenersFor("default-topic")["default-topic"], 1)
}

package eventbus

import (
	"sync"
	"time"

	"github.com/pborman/uuid"
	"github.com/rcrowley/go-metrics"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"
)

// Event you can subscribe to
type Event struct {
	ID   ksuid.KSUID
	Name string
	At   time.Time
	Args interface{}

	// Duration and Err are only set for instrumented events
	Duration time.Duration
	Err      error
}

// NOOPHandler drops events on the floor without taking action
var NOOPHandler = Handler(func(_ Event) error { return nil })

// Handler wraps a function that will be called when an event is received.
// An error returned by the function stops delivery to later subscribers
// and is returned to the publisher.
func Handler(on func(Event) error) EventHandler {
	return &defaultHandler{
		on: on,
	}
}

type defaultHandler struct {
	on func(Event) error
}

// On event trigger
func (h *defaultHandler) On(event Event) error {
	return h.on(event)
}

// EventHandler deals with handling events
type EventHandler interface {
	On(Event) error
}

type filteredHandler struct {
	Next    EventHandler
	Matches EventPredicate
}

func (f *filteredHandler) On(evt Event) error {
	if !f.Matches(evt) {
		return nil
	}
	return f.Next.On(evt)
}

// EventPredicate for filtering events
type EventPredicate func(Event) bool

// Filtered composes an event handler with a filter
func Filtered(matches EventPredicate, next EventHandler) EventHandler {
	return &filteredHandler{
		Matches: matches,
		Next:    next,
	}
}

// Subscription is the handle returned by Subscribe, pass it to Unsubscribe to stop listening
type Subscription struct {
	id      string
	topic   string
	handler EventHandler
}

// ID of the subscription
func (s *Subscription) ID() string { return s.id }

// Topic the subscription listens to
func (s *Subscription) Topic() string { return s.topic }

// EventBus does synchronous fanout to the subscribers of a topic
type EventBus interface {
	Publish(topic string, args interface{}) error
	Instrument(topic string, args interface{}, body func() error) error
	Subscribe(topic string, handler EventHandler) *Subscription
	Unsubscribe(*Subscription)
	ListenersFor(topics ...string) map[string][]EventHandler
	Len() int
}

// Option configures a bus
type Option func(*Bus)

// WithLogger sets the logger for the bus
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// WithRegistry sets the metrics registry the bus reports to
func WithRegistry(reg metrics.Registry) Option {
	return func(b *Bus) {
		if reg != nil {
			b.registry = reg
		}
	}
}

// New event bus
func New(opts ...Option) *Bus {
	b := &Bus{
		topics:   make(map[string][]*Subscription),
		registry: metrics.DefaultRegistry,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		l := logrus.New()
		l.Level = logrus.WarnLevel
		b.log = l
	}
	return b
}

// Bus is the default event bus implementation.
// Registry changes never affect a delivery that is already in flight.
type Bus struct {
	lock     sync.RWMutex
	topics   map[string][]*Subscription
	log      logrus.FieldLogger
	registry metrics.Registry
}

// Publish an event to all the subscribers of the topic, in the order they subscribed
func (b *Bus) Publish(topic string, args interface{}) error {
	return b.deliver(Event{
		ID:   ksuid.New(),
		Name: topic,
		At:   time.Now(),
		Args: args,
	})
}

// Instrument runs the body and publishes an event describing its execution.
// The error from the body wins over an error from a subscriber.
func (b *Bus) Instrument(topic string, args interface{}, body func() error) error {
	evt := Event{
		ID:   ksuid.New(),
		Name: topic,
		At:   time.Now(),
		Args: args,
	}
	var err error
	if body != nil {
		err = body()
	}
	evt.Duration = time.Since(evt.At)
	evt.Err = err

	if derr := b.deliver(evt); derr != nil && err == nil {
		return derr
	}
	return err
}

func (b *Bus) deliver(evt Event) error {
	b.lock.RLock()
	subs := make([]*Subscription, len(b.topics[evt.Name]))
	copy(subs, b.topics[evt.Name])
	b.lock.RUnlock()

	metrics.GetOrRegisterCounter("events.published."+evt.Name, b.registry).Inc(1)
	if len(subs) == 0 {
		b.log.Debugf("there are no listeners for %q, skipping broadcast", evt.Name)
		return nil
	}

	timer := metrics.GetOrRegisterTimer("events.notify", b.registry)
	start := time.Now()
	defer timer.UpdateSince(start)

	b.log.Debugf("notifying %d listeners of %q", len(subs), evt.Name)
	for _, sub := range subs {
		if err := sub.handler.On(evt); err != nil {
			b.log.Debugf("listener %s failed for %q: %v", sub.id, evt.Name, err)
			return err
		}
	}
	return nil
}

// Subscribe a handler to the events published for a topic.
// Subscribing the same handler twice results in two deliveries.
func (b *Bus) Subscribe(topic string, handler EventHandler) *Subscription {
	sub := &Subscription{
		id:      uuid.New(),
		topic:   topic,
		handler: handler,
	}
	b.lock.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.lock.Unlock()
	b.log.Debugf("added listener %s for %q", sub.id, topic)
	return sub
}

// Unsubscribe removes the subscription, it's a no-op when it was removed already
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			// build a new slice, in-flight deliveries hold on to the old one
			next := make([]*Subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.topics, sub.topic)
			} else {
				b.topics[sub.topic] = next
			}
			b.log.Debugf("removed listener %s for %q", sub.id, sub.topic)
			return
		}
	}
}

// ListenersFor returns the handlers for the topics that have at least one listener
func (b *Bus) ListenersFor(topics ...string) map[string][]EventHandler {
	b.lock.RLock()
	defer b.lock.RUnlock()

	result := make(map[string][]EventHandler, len(topics))
	for _, topic := range topics {
		subs := b.topics[topic]
		if len(subs) == 0 {
			continue
		}
		handlers := make([]EventHandler, len(subs))
		for i, s := range subs {
			handlers[i] = s.handler
		}
		result[topic] = handlers
	}
	return result
}

// Len is the total number of subscriptions across all topics
func (b *Bus) Len() int {
	b.lock.RLock()
	var sz int
	for _, subs := range b.topics {
		sz += len(subs)
	}
	b.lock.RUnlock()
	return sz
}

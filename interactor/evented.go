package interactor

import (
	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/interactor/internal"
	"github.com/rcrowley/go-metrics"
)

// Payload is what subscribers receive as the event args of an evented call
type Payload struct {
	// Subject defaults to the context
	Subject interface{}
	// Context is only set when the subject was customized
	Context *Context
	// Err is only set for error events
	Err error
}

// SubjectFunc selects the subject of the events from the context
type SubjectFunc func(*Context) interface{}

// EventedOption configures an evented interactor
type EventedOption func(*eventedConfig)

type eventedConfig struct {
	name     string
	success  string
	subject  SubjectFunc
	bus      eventbus.EventBus
	registry metrics.Registry
}

// EventName sets the root of the event names, it defaults to the underscored name of the interactor
func EventName(name string) EventedOption {
	return func(c *eventedConfig) { c.name = name }
}

// SuccessTopic overrides the topic used for successful calls
func SuccessTopic(name string) EventedOption {
	return func(c *eventedConfig) { c.success = name }
}

// EventSubject customizes the subject of the events, the payload will then also carry the context
func EventSubject(fn SubjectFunc) EventedOption {
	return func(c *eventedConfig) { c.subject = fn }
}

// PublishTo publishes on the provided bus instead of the one from the context
func PublishTo(bus eventbus.EventBus) EventedOption {
	return func(c *eventedConfig) { c.bus = bus }
}

// Metrics sets the registry for the outcome counters
func Metrics(reg metrics.Registry) EventedOption {
	return func(c *eventedConfig) { c.registry = reg }
}

// Evented wraps an interactor so that every call publishes exactly one event:
// the event name on success, <name>_failure on explicit failure and <name>_error on error.
// The outcome of the wrapped call is returned unchanged.
func Evented[T Interactor](inner T, opts ...EventedOption) *EventedInteractor[T] {
	cfg := eventedConfig{registry: metrics.DefaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = Underscore(NameOf(inner))
	}
	if cfg.name == "" {
		panic("an evented interactor needs an event name, use a named interactor or the EventName option")
	}

	topics := TopicsFor(cfg.name)
	if cfg.success != "" {
		topics.Success = cfg.success
	}
	return &EventedInteractor[T]{
		inner:    inner,
		name:     cfg.name,
		topics:   topics,
		subject:  cfg.subject,
		bus:      cfg.bus,
		registry: cfg.registry,
	}
}

// EventedInteractor publishes lifecycle events around the calls of the interactor it wraps
type EventedInteractor[T Interactor] struct {
	inner    T
	name     string
	topics   Topics
	subject  SubjectFunc
	bus      eventbus.EventBus
	registry metrics.Registry
}

// Name of the wrapped interactor, or the event name when it has none
func (e *EventedInteractor[T]) Name() string {
	if n := NameOf(e.inner); n != "" {
		return n
	}
	return e.name
}

// EventName is the root of the topics
func (e *EventedInteractor[T]) EventName() string { return e.name }

// Topics this interactor publishes to
func (e *EventedInteractor[T]) Topics() Topics { return e.topics }

// Unwrap returns the wrapped interactor
func (e *EventedInteractor[T]) Unwrap() T { return e.inner }

// Call the wrapped interactor and publish the event for its outcome.
// A context that failed already is left alone: nothing is called and nothing is published.
func (e *EventedInteractor[T]) Call(ctx *Context) error {
	if ctx.Failed() {
		return nil
	}
	var published bool
	defer func() {
		if r := recover(); r != nil {
			if !published {
				e.publishError(ctx, &PanicError{Value: r})
			}
			panic(r)
		}
	}()

	if err := e.inner.Call(ctx); err != nil {
		published = true
		e.publishError(ctx, err)
		return err
	}

	published = true
	if ctx.Failed() {
		return e.publish(ctx, e.topics.Failure, e.Payload(ctx))
	}
	ctx.succeed()
	return e.publish(ctx, e.topics.Success, e.Payload(ctx))
}

// Rollback the wrapped interactor, when it supports rolling back
func (e *EventedInteractor[T]) Rollback(ctx *Context) error {
	return rollbackOf(e.inner, ctx)
}

// Payload for the events of this interactor
func (e *EventedInteractor[T]) Payload(ctx *Context) Payload {
	if e.subject == nil {
		return Payload{Subject: ctx}
	}
	subject := e.subject(ctx)
	if c, ok := subject.(*Context); ok && c == ctx {
		return Payload{Subject: ctx}
	}
	return Payload{Subject: subject, Context: ctx}
}

func (e *EventedInteractor[T]) publishError(ctx *Context, cause error) {
	payload := e.Payload(ctx)
	payload.Err = cause
	if err := e.publish(ctx, e.topics.Error, payload); err != nil {
		ctx.Logger().WithField("topic", e.topics.Error).Warnf("listener failed: %v", err)
	}
}

func (e *EventedInteractor[T]) publish(ctx *Context, topic string, payload Payload) error {
	metrics.GetOrRegisterCounter("interactor."+topic, e.registry).Inc(1)
	bus := e.bus
	if bus == nil {
		bus = internal.GetPublisher(ctx.Parent())
	}
	return bus.Publish(topic, payload)
}

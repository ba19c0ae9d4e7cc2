package internal

import (
	"context"

	"github.com/casualjim/interactors/eventbus"
)

// StepKey are keys used on the context.Context of an invocation
type StepKey uint8

const (
	// PublisherKey for the event bus in the context
	PublisherKey StepKey = iota
)

// SetPublisher on the context
func SetPublisher(ctx context.Context, pub eventbus.EventBus) context.Context {
	return context.WithValue(ctx, PublisherKey, pub)
}

// GetPublisher from the context, falls back to the default bus
func GetPublisher(ctx context.Context) eventbus.EventBus {
	if ctx == nil {
		return eventbus.Default
	}
	bus, ok := ctx.Value(PublisherKey).(eventbus.EventBus)
	if !ok || bus == nil {
		return eventbus.Default
	}
	return bus
}

package interactor

import (
	"context"

	"github.com/casualjim/interactors"
	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/interactor/internal"
	"github.com/segmentio/ksuid"
)

// Fields are the named values callers and steps share through a Context
type Fields map[string]interface{}

// Context is the mutable record shared by all the steps of one invocation.
// It is not safe for concurrent use, steps run one at a time.
type Context struct {
	id      ksuid.KSUID
	parent  context.Context
	fields  Fields
	outcome Outcome
	reason  interface{}

	// executed steps per organizer or branch, one entry per call,
	// kept for rolling back later
	ledger map[interface{}][][]Interactor
}

// NewContext creates a pending context, the fields are copied
func NewContext(parent context.Context, fields Fields) *Context {
	if parent == nil {
		parent = context.Background()
	}
	f := make(Fields, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return &Context{
		id:     ksuid.New(),
		parent: parent,
		fields: f,
	}
}

// SetPublisher returns a context.Context that makes evented interactors publish to the bus
func SetPublisher(ctx context.Context, bus eventbus.EventBus) context.Context {
	return internal.SetPublisher(ctx, bus)
}

// ID of the invocation
func (c *Context) ID() string { return c.id.String() }

// Parent is the context.Context this invocation runs in
func (c *Context) Parent() context.Context { return c.parent }

// Logger for this invocation
func (c *Context) Logger() interactors.Logger {
	return interactors.ContextLogger(c.parent).WithField("invocation", c.ID())
}

// Get a field
func (c *Context) Get(key string) (interface{}, bool) {
	v, ok := c.fields[key]
	return v, ok
}

// Value of a field, nil when the field is not set
func (c *Context) Value(key string) interface{} {
	return c.fields[key]
}

// Set a field
func (c *Context) Set(key string, value interface{}) {
	c.fields[key] = value
}

// Delete a field
func (c *Context) Delete(key string) {
	delete(c.fields, key)
}

// Fields returns a copy of all the fields
func (c *Context) Fields() Fields {
	f := make(Fields, len(c.fields))
	for k, v := range c.fields {
		f[k] = v
	}
	return f
}

// Lookup a field of a specific type
func Lookup[T any](c *Context, key string) (T, bool) {
	v, ok := c.fields[key].(T)
	return v, ok
}

// Outcome so far
func (c *Context) Outcome() Outcome { return c.outcome }

// Success is true when the context succeeded
func (c *Context) Success() bool { return c.outcome == OutcomeSucceeded }

// Failed is true when a step failed the context
func (c *Context) Failed() bool { return c.outcome == OutcomeFailed }

// Fail marks the context as failed. Only the first reason is kept,
// a failed context stays failed.
func (c *Context) Fail(reason interface{}) {
	if c.outcome == OutcomeFailed {
		return
	}
	c.outcome = OutcomeFailed
	c.reason = reason
}

// Reason the context failed for
func (c *Context) Reason() interface{} { return c.reason }

// Failure returns the explicit failure as an error, nil when the context didn't fail
func (c *Context) Failure() error {
	if c.outcome != OutcomeFailed {
		return nil
	}
	return &Failure{Reason: c.reason}
}

func (c *Context) succeed() {
	if c.outcome == OutcomePending {
		c.outcome = OutcomeSucceeded
	}
}

func (c *Context) remember(owner interface{}, executed []Interactor) {
	if c.ledger == nil {
		c.ledger = make(map[interface{}][][]Interactor)
	}
	c.ledger[owner] = append(c.ledger[owner], executed)
}

// recall pops the steps remembered by the most recent call of the owner
func (c *Context) recall(owner interface{}) []Interactor {
	calls := c.ledger[owner]
	if len(calls) == 0 {
		return nil
	}
	executed := calls[len(calls)-1]
	if len(calls) == 1 {
		delete(c.ledger, owner)
	} else {
		c.ledger[owner] = calls[:len(calls)-1]
	}
	return executed
}

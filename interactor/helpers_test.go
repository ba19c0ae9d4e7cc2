package interactor_test

import (
	"errors"

	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/interactor"
)

var errBoom = errors.New("boom")

// journal records the calls and rollbacks of counting steps in order
type journal struct {
	calls     []string
	rollbacks []string
}

type countingStep struct {
	name     string
	j        *journal
	call     func(*interactor.Context) error
	rollback func(*interactor.Context) error
}

func (j *journal) step(name string) *countingStep {
	return &countingStep{name: name, j: j}
}

func (j *journal) failing(name string, reason interface{}) *countingStep {
	s := j.step(name)
	s.call = func(ctx *interactor.Context) error {
		ctx.Fail(reason)
		return nil
	}
	return s
}

func (j *journal) erroring(name string, err error) *countingStep {
	s := j.step(name)
	s.call = func(*interactor.Context) error { return err }
	return s
}

func (c *countingStep) Name() string { return c.name }

func (c *countingStep) Call(ctx *interactor.Context) error {
	c.j.calls = append(c.j.calls, c.name)
	if c.call != nil {
		return c.call(ctx)
	}
	return nil
}

func (c *countingStep) Rollback(ctx *interactor.Context) error {
	c.j.rollbacks = append(c.j.rollbacks, c.name)
	if c.rollback != nil {
		return c.rollback(ctx)
	}
	return nil
}

// callOnly has no rollback
type callOnly struct {
	name string
	j    *journal
}

func (c *callOnly) Name() string { return c.name }

func (c *callOnly) Call(*interactor.Context) error {
	c.j.calls = append(c.j.calls, c.name)
	return nil
}

// recorder keeps the events published on a bus for a set of topics
type recorder struct {
	events []eventbus.Event
}

func (r *recorder) listen(bus eventbus.EventBus, topics ...string) {
	for _, topic := range topics {
		bus.Subscribe(topic, eventbus.Handler(func(evt eventbus.Event) error {
			r.events = append(r.events, evt)
			return nil
		}))
	}
}

func (r *recorder) names() []string {
	names := make([]string, len(r.events))
	for i, evt := range r.events {
		names[i] = evt.Name
	}
	return names
}

func listenAll(bus eventbus.EventBus, name string) *recorder {
	rec := &recorder{}
	topics := interactor.TopicsFor(name)
	rec.listen(bus, topics.Success, topics.Failure, topics.Error)
	return rec
}

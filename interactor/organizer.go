package interactor

import (
	"github.com/casualjim/interactors/interactor/rollback"
	multierror "github.com/hashicorp/go-multierror"
)

// Organize creates an organizer that calls the steps sequentially against the same context
func Organize(name StepName, steps ...Interactor) *Organizer {
	return &Organizer{StepName: name, steps: steps, decider: rollback.Always}
}

// Organizer runs its steps in order and stops at the first explicit failure or error.
// The executed steps, including the one that stopped the run, are then rolled back
// in reverse order.
type Organizer struct {
	StepName
	steps   []Interactor
	decider Decider
	collect bool
}

// Should allows for changing the default behavior of rolling back on every
// failure and error, like only rolling back explicit failures
func (o *Organizer) Should(dec Decider) *Organizer {
	if dec != nil {
		o.decider = dec
	}
	return o
}

// CollectRollbackErrors keeps rolling back when a rollback fails
// and returns all the rollback errors together
func (o *Organizer) CollectRollbackErrors() *Organizer {
	o.collect = true
	return o
}

// Steps configured for this organizer
func (o *Organizer) Steps() []Interactor {
	return o.steps
}

// Call the steps in order, nothing runs when the context failed already
func (o *Organizer) Call(ctx *Context) error {
	if ctx.Failed() {
		return nil
	}
	log := ctx.Logger().WithField("organizer", o.Name())
	executed := make([]Interactor, 0, len(o.steps))
	// set once abort takes over, a panic after that must not compensate again
	var aborting bool

	defer func() {
		if r := recover(); r != nil {
			cause := &PanicError{Value: r}
			if !aborting && o.decider(cause) {
				log.Debugf("step panicked, rolling back %d steps", len(executed))
				_ = o.rollback(ctx, executed, cause)
			}
			panic(r)
		}
	}()

	for _, step := range o.steps {
		executed = append(executed, step)
		log.WithField("step", NameOf(step)).Debugf("calling step")

		if err := Run(ctx, step); err != nil {
			log.WithField("step", NameOf(step)).Debugf("step errored: %v", err)
			aborting = true
			return o.abort(ctx, executed, err)
		}
		if ctx.Failed() {
			log.WithField("step", NameOf(step)).Debugf("step failed: %v", ctx.Reason())
			aborting = true
			return o.abort(ctx, executed, ctx.Failure())
		}
	}

	ctx.remember(o, executed)
	return nil
}

// Rollback the steps executed by the last successful call, in reverse order
func (o *Organizer) Rollback(ctx *Context) error {
	return o.rollback(ctx, ctx.recall(o), ctx.Failure())
}

func (o *Organizer) abort(ctx *Context, executed []Interactor, cause error) error {
	if !o.decider(cause) {
		ctx.Logger().WithField("organizer", o.Name()).Debugf("skipping rollback of %d steps", len(executed))
		ctx.remember(o, executed)
		if IsFailure(cause) {
			return nil
		}
		return cause
	}

	if err := o.rollback(ctx, executed, cause); err != nil {
		return err
	}
	if IsFailure(cause) {
		return nil
	}
	return cause
}

func (o *Organizer) rollback(ctx *Context, executed []Interactor, cause error) error {
	log := ctx.Logger().WithField("organizer", o.Name())

	var result *multierror.Error
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		log.WithField("step", NameOf(step)).Debugf("rolling back step")
		if err := rollbackOf(step, ctx); err != nil {
			log.WithField("step", NameOf(step)).Debugf("rollback failed: %v", err)
			rerr := &RollbackError{Step: NameOf(step), Err: err, Cause: cause}
			if !o.collect {
				return rerr
			}
			result = multierror.Append(result, rerr)
		}
	}
	return result.ErrorOrNil()
}

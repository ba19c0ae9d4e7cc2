package order

import (
	"context"
	"fmt"
	"time"

	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/fault"
	"github.com/casualjim/interactors/interactor"
	"github.com/casualjim/interactors/interactor/rollback"
	"github.com/rcrowley/go-metrics"
)

// Event topics of the finalizer
const (
	EventName     = "order_finalizer"
	FinalizeTopic = "order_finalize"
)

// FieldOrder is the context field that holds the *Order
const FieldOrder = "order"

// undo state kept on the context between a call and its rollback
const (
	fieldFinalizedAdjustments = "order.finalized_adjustments"
	fieldPaymentState         = "order.previous_payment_state"
	fieldShipments            = "order.previous_shipments"
	fieldShipmentState        = "order.previous_shipment_state"
	fieldSaved                = "order.previous_version"
)

// Hook runs after the order was saved
type Hook func(context.Context, *Order) error

// Option configures the finalizer
type Option func(*finalizer)

// WithHook adds a hook that runs after the order is saved
func WithHook(h Hook) Option {
	return func(f *finalizer) { f.hooks = append(f.hooks, h) }
}

// WithClock replaces the clock used for completed_at
func WithClock(now func() time.Time) Option {
	return func(f *finalizer) { f.now = now }
}

// PublishTo sends the finalizer events to the provided bus
func PublishTo(bus eventbus.EventBus) Option {
	return func(f *finalizer) { f.bus = bus }
}

// RollbackWhen sets the decider for rolling back the finalization steps
func RollbackWhen(dec interactor.Decider) Option {
	return func(f *finalizer) { f.decider = dec }
}

// WithRegistry sets the metrics registry for the event counters
func WithRegistry(reg metrics.Registry) Option {
	return func(f *finalizer) { f.registry = reg }
}

type finalizer struct {
	store    *Store
	hooks    []Hook
	now      func() time.Time
	bus      eventbus.EventBus
	decider  interactor.Decider
	registry metrics.Registry
}

// Finalizer builds the evented organizer that completes an order.
// It publishes order_finalize on success, order_finalizer_failure and order_finalizer_error otherwise,
// with the order as the subject of the events.
func Finalizer(store *Store, opts ...Option) *interactor.EventedInteractor[*interactor.Organizer] {
	f := &finalizer{store: store, now: time.Now, decider: rollback.Always, registry: metrics.DefaultRegistry}
	for _, opt := range opts {
		opt(f)
	}

	org := interactor.Organize("OrderFinalizer",
		interactor.Step("finalize_adjustments", f.finalizeAdjustments, f.unfinalizeAdjustments),
		interactor.Step("update_payment_state", f.updatePaymentState, f.restorePaymentState),
		interactor.Step("finalize_shipments", f.finalizeShipments, f.restoreShipments),
		interactor.Step("update_shipment_state", f.updateShipmentState, f.restoreShipmentState),
		interactor.Step("save", f.save, f.restore),
		interactor.Step("run_hooks", f.runHooks, nil),
		interactor.Step("touch_completed_at", f.touchCompletedAt, f.clearCompletedAt),
	).Should(f.decider)

	evOpts := []interactor.EventedOption{
		interactor.EventName(EventName),
		interactor.SuccessTopic(FinalizeTopic),
		interactor.EventSubject(func(ctx *interactor.Context) interface{} { return ctx.Value(FieldOrder) }),
		interactor.Metrics(f.registry),
	}
	if f.bus != nil {
		evOpts = append(evOpts, interactor.PublishTo(f.bus))
	}
	return interactor.Evented(org, evOpts...)
}

// Finalize runs the finalizer for the order
func Finalize(parent context.Context, i interactor.Interactor, o *Order) (*interactor.Context, error) {
	return interactor.Call(parent, i, interactor.Fields{FieldOrder: o})
}

// From returns the order of an invocation
func From(ctx *interactor.Context) (*Order, error) {
	o, ok := interactor.Lookup[*Order](ctx, FieldOrder)
	if !ok || o == nil {
		return nil, fmt.Errorf("no order in context %s", ctx.ID())
	}
	return o, nil
}

func (f *finalizer) finalizeAdjustments(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	var locked []*Adjustment
	for _, a := range o.Adjustments {
		if !a.Finalized {
			a.Finalized = true
			locked = append(locked, a)
		}
	}
	ctx.Set(fieldFinalizedAdjustments, locked)
	return nil
}

func (f *finalizer) unfinalizeAdjustments(ctx *interactor.Context) error {
	locked, _ := interactor.Lookup[[]*Adjustment](ctx, fieldFinalizedAdjustments)
	for _, a := range locked {
		a.Finalized = false
	}
	ctx.Delete(fieldFinalizedAdjustments)
	return nil
}

func (f *finalizer) updatePaymentState(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	ctx.Set(fieldPaymentState, o.PaymentState)
	o.PaymentState = o.paymentState()

	switch o.PaymentState {
	case PaymentFailed:
		ctx.Fail(fault.Newf(fault.CodeUnpaid, "payment for order %s was declined", o.Number))
	case PaymentBalanceDue:
		ctx.Fail(fault.Newf(fault.CodeUnpaid, "order %s has a balance due of %d", o.Number, o.Total()-o.PaymentTotal()))
	}
	return nil
}

func (f *finalizer) restorePaymentState(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	if prev, ok := interactor.Lookup[string](ctx, fieldPaymentState); ok {
		o.PaymentState = prev
	}
	return nil
}

func (f *finalizer) finalizeShipments(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	prev := make([]Shipment, len(o.Shipments))
	for i, s := range o.Shipments {
		prev[i] = *s
	}
	ctx.Set(fieldShipments, prev)

	for _, s := range o.Shipments {
		s.updateState(o)
		s.Finalized = true
	}
	return nil
}

func (f *finalizer) restoreShipments(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	prev, _ := interactor.Lookup[[]Shipment](ctx, fieldShipments)
	for i := range prev {
		if i < len(o.Shipments) {
			*o.Shipments[i] = prev[i]
		}
	}
	return nil
}

func (f *finalizer) updateShipmentState(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	ctx.Set(fieldShipmentState, o.ShipmentState)
	o.ShipmentState = o.shipmentState()
	return nil
}

func (f *finalizer) restoreShipmentState(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	if prev, ok := interactor.Lookup[string](ctx, fieldShipmentState); ok {
		o.ShipmentState = prev
	}
	return nil
}

func (f *finalizer) save(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	prev, err := f.store.Save(o)
	if err != nil {
		ctx.Fail(err)
		return nil
	}
	ctx.Set(fieldSaved, prev)
	return nil
}

func (f *finalizer) restore(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	if _, saved := ctx.Get(fieldSaved); !saved {
		return nil
	}
	prev, _ := interactor.Lookup[*Order](ctx, fieldSaved)
	f.store.Restore(o.Number, prev)
	ctx.Delete(fieldSaved)
	return nil
}

func (f *finalizer) runHooks(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	for _, h := range f.hooks {
		if err := h(ctx.Parent(), o); err != nil {
			return fmt.Errorf("order %s hook: %w", o.Number, err)
		}
	}
	return nil
}

func (f *finalizer) touchCompletedAt(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	now := f.now().UTC()
	o.CompletedAt = &now
	_, err = f.store.Save(o)
	return err
}

func (f *finalizer) clearCompletedAt(ctx *interactor.Context) error {
	o, err := From(ctx)
	if err != nil {
		return err
	}
	o.CompletedAt = nil
	return nil
}

// Package interactor contains the building blocks for short, ordered business workflows.
//
// An Interactor is a unit of work with a Call method that runs against a shared Context.
// A call ends in exactly one of three ways:
//
//   - success: Call returns nil and the context was not failed
//   - explicit failure: Call marks the context failed with ctx.Fail(reason) and returns nil
//   - error: Call returns an error (or panics)
//
// An Organizer runs interactors in order against one Context. When a step fails or errors
// the steps that were executed so far, the failing one included, are rolled back in reverse order.
//
// Evented wraps an interactor or organizer and publishes one event per call on an event bus:
//
//	finalize := interactor.Evented(
//		interactor.Organize("order_finalize",
//			interactor.Step("lock-adjustments", lockAdjustments, unlockAdjustments),
//			interactor.Step("update-payment-state", updatePaymentState, nil),
//			interactor.Step("finalize-shipments", finalizeShipments, cancelShipments),
//		),
//		interactor.EventSubject(func(ctx *interactor.Context) interface{} { return ctx.Value("order") }),
//	)
//
//	eventbus.Subscribe("order_finalize", eventbus.Handler(sendConfirmation))
//	eventbus.Subscribe("order_finalize_failure", eventbus.Handler(notifyOperators))
//	eventbus.Subscribe("order_finalize_error", eventbus.Handler(notifyOperators))
//
//	ctx, err := interactor.Call(context.Background(), finalize, interactor.Fields{"order": order})
package interactor

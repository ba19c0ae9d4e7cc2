package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/casualjim/interactors"
	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/interactor"
	"github.com/casualjim/interactors/internal/order"
	"github.com/spf13/cobra"
)

type finalizeOpts struct {
	number    string
	items     int64
	discount  int64
	paid      int64
	declined  bool
	shipments int
	hookError string
}

func newFinalizeCmd(a *app) *cobra.Command {
	opts := &finalizeOpts{}
	cmd := &cobra.Command{
		Use:   "finalize",
		Short: "Finalize an order and report the outcome",
		Example: `  # a fully paid order
  checkout finalize --items 10000 --paid 10000

  # a balance due rolls the finalization back
  checkout finalize --items 10000 --paid 2500

  # a failing hook reports an error
  checkout finalize --items 10000 --paid 10000 --hook-error "erp unavailable"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.finalize(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.number, "number", "R100000001", "order number")
	f.Int64Var(&opts.items, "items", 10000, "item total in cents")
	f.Int64Var(&opts.discount, "discount", 0, "promotion amount in cents")
	f.Int64Var(&opts.paid, "paid", 10000, "payment amount in cents")
	f.BoolVar(&opts.declined, "declined", false, "decline the payment")
	f.IntVar(&opts.shipments, "shipments", 1, "number of shipments")
	f.StringVar(&opts.hookError, "hook-error", "", "make the post-save hook fail with this message")
	return cmd
}

type report struct {
	Invocation    string          `json:"invocation"`
	Outcome       string          `json:"outcome"`
	Reason        string          `json:"reason,omitempty"`
	Error         string          `json:"error,omitempty"`
	Events        []string        `json:"events"`
	Notifications []order.Message `json:"notifications,omitempty"`
	Order         *order.Order    `json:"order"`
}

func (a *app) finalize(cmd *cobra.Command, opts *finalizeOpts) error {
	bus := eventbus.New(eventbus.WithLogger(a.log))
	outbox := &order.Outbox{}
	store := order.NewStore()
	(&order.Notifications{Mailer: outbox, Operators: "operators", Log: a.log, Store: store}).Subscribe(bus)

	var events []string
	recordAll := eventbus.Handler(func(evt eventbus.Event) error {
		events = append(events, evt.Name)
		return nil
	})
	for _, topic := range finalizerTopics() {
		bus.Subscribe(topic, recordAll)
	}

	var hooks []order.Option
	if opts.hookError != "" {
		hooks = append(hooks, order.WithHook(func(context.Context, *order.Order) error {
			return errors.New(opts.hookError)
		}))
	}

	finalizer := order.Finalizer(store, append(hooks,
		order.PublishTo(bus),
		order.RollbackWhen(a.cfg.Rollback),
	)...)

	o := buildOrder(opts)
	parent := interactors.SetLogger(cmd.Context(), a.log)
	ictx, err := order.Finalize(parent, finalizer, o)

	rep := report{
		Invocation:    ictx.ID(),
		Outcome:       ictx.Outcome().String(),
		Events:        events,
		Notifications: outbox.Messages(),
		Order:         o,
	}
	if ictx.Failed() {
		rep.Reason = fmt.Sprint(ictx.Reason())
	}
	if err != nil {
		rep.Error = err.Error()
		rep.Outcome = "errored"
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(rep); encErr != nil {
		return encErr
	}
	return err
}

func buildOrder(opts *finalizeOpts) *order.Order {
	o := &order.Order{Number: opts.number, ItemTotal: opts.items}
	if opts.discount != 0 {
		o.Adjustments = append(o.Adjustments, &order.Adjustment{Label: "promotion", Amount: -opts.discount})
	}
	if opts.paid > 0 {
		o.Payments = append(o.Payments, order.Payment{Amount: opts.paid, Declined: opts.declined})
	}
	for i := 1; i <= opts.shipments; i++ {
		o.Shipments = append(o.Shipments, &order.Shipment{
			Number: fmt.Sprintf("H%s-%d", opts.number, i),
			State:  order.ShipmentPending,
		})
	}
	return o
}

func finalizerTopics() []string {
	topics := interactor.TopicsFor(order.EventName)
	return []string{order.FinalizeTopic, topics.Failure, topics.Error}
}

func newTopicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the topics the finalizer publishes and their listeners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bus := eventbus.New(eventbus.WithLogger(a.log))
			(&order.Notifications{Mailer: &order.Outbox{}, Log: a.log}).Subscribe(bus)

			listeners := bus.ListenersFor(finalizerTopics()...)
			names := make([]string, 0, len(listeners))
			for topic := range listeners {
				names = append(names, topic)
			}
			sort.Strings(names)
			for _, topic := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d listener(s)\n", topic, len(listeners[topic]))
			}
			return nil
		},
	}
}

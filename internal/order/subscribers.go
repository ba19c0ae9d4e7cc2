package order

import (
	"fmt"
	"sync"

	"github.com/casualjim/interactors/eventbus"
	"github.com/casualjim/interactors/fault"
	"github.com/casualjim/interactors/interactor"
	"github.com/sirupsen/logrus"
)

// Message is a notification produced by the subscribers
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages
type Mailer interface {
	Deliver(Message) error
}

// Outbox is a Mailer that keeps the messages in memory
type Outbox struct {
	lock     sync.Mutex
	messages []Message
}

// Deliver appends the message
func (o *Outbox) Deliver(m Message) error {
	o.lock.Lock()
	o.messages = append(o.messages, m)
	o.lock.Unlock()
	return nil
}

// Messages delivered so far
func (o *Outbox) Messages() []Message {
	o.lock.Lock()
	defer o.lock.Unlock()
	return append([]Message(nil), o.messages...)
}

// Notifications reacts to the finalizer events: the customer gets a confirmation
// when the order is finalized and the operators hear about failures and errors.
type Notifications struct {
	Mailer    Mailer
	Operators string
	Log       logrus.FieldLogger
	// Store records that the confirmation went out, so a reloaded order isn't confirmed twice
	Store *Store
}

// Subscribe registers the handlers and returns the subscriptions so they can be removed
func (n *Notifications) Subscribe(bus eventbus.EventBus) []*eventbus.Subscription {
	topics := interactor.TopicsFor(EventName)
	return []*eventbus.Subscription{
		bus.Subscribe(FinalizeTopic, eventbus.Handler(n.confirm)),
		bus.Subscribe(topics.Failure, eventbus.Handler(n.notifyFailure)),
		bus.Subscribe(topics.Error, eventbus.Handler(n.notifyError)),
	}
}

func (n *Notifications) confirm(evt eventbus.Event) error {
	o, _ := subjectOf(evt)
	if o == nil || o.ConfirmationDelivered {
		return nil
	}
	err := n.Mailer.Deliver(Message{
		To:      o.Number,
		Subject: fmt.Sprintf("Order %s confirmed", o.Number),
		Body:    fmt.Sprintf("We received %d for order %s.", o.PaymentTotal(), o.Number),
	})
	if err != nil {
		return err
	}
	o.ConfirmationDelivered = true
	n.logger().WithField("order", o.Number).Info("order confirmation delivered")
	if n.Store != nil {
		if _, err := n.Store.Save(o); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifications) notifyFailure(evt eventbus.Event) error {
	o, p := subjectOf(evt)
	number := orderNumber(o)
	reason := ""
	code := int64(0)
	if p.Context != nil {
		reason = fmt.Sprint(p.Context.Reason())
		code = fault.CodeOf(p.Context.Reason())
	}
	n.logger().WithField("order", number).WithField("code", code).Warnf("order finalization failed: %s", reason)
	return n.Mailer.Deliver(Message{
		To:      n.Operators,
		Subject: fmt.Sprintf("Order %s could not be finalized", number),
		Body:    reason,
	})
}

func (n *Notifications) notifyError(evt eventbus.Event) error {
	o, p := subjectOf(evt)
	number := orderNumber(o)
	n.logger().WithField("order", number).Errorf("order finalization errored: %v", p.Err)
	return n.Mailer.Deliver(Message{
		To:      n.Operators,
		Subject: fmt.Sprintf("Order %s errored during finalization", number),
		Body:    fmt.Sprint(p.Err),
	})
}

func (n *Notifications) logger() logrus.FieldLogger {
	if n.Log == nil {
		return logrus.StandardLogger()
	}
	return n.Log
}

func subjectOf(evt eventbus.Event) (*Order, interactor.Payload) {
	p, ok := evt.Args.(interactor.Payload)
	if !ok {
		return nil, interactor.Payload{}
	}
	o, _ := p.Subject.(*Order)
	return o, p
}

func orderNumber(o *Order) string {
	if o == nil {
		return "<unknown>"
	}
	return o.Number
}

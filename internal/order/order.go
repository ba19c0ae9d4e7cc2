// Package order is a small in-memory checkout domain: an order with adjustments,
// payments and shipments, and the evented organizer that finalizes it.
package order

import (
	"time"
)

// Payment states
const (
	PaymentPaid       = "paid"
	PaymentBalanceDue = "balance_due"
	PaymentFailed     = "failed"
	PaymentVoid       = "void"
)

// Shipment states
const (
	ShipmentPending = "pending"
	ShipmentReady   = "ready"
	ShipmentShipped = "shipped"
	ShipmentPartial = "partial"
)

// Adjustment is a price change on the order, like a promotion or tax
type Adjustment struct {
	Label     string `json:"label"`
	Amount    int64  `json:"amount"`
	Finalized bool   `json:"finalized"`
}

// Payment is a payment attempt for the order
type Payment struct {
	Amount   int64 `json:"amount"`
	Declined bool  `json:"declined,omitempty"`
}

// Shipment is a package for the order
type Shipment struct {
	Number    string `json:"number"`
	State     string `json:"state"`
	Finalized bool   `json:"finalized"`
}

// Order being checked out, amounts are in cents
type Order struct {
	Number        string        `json:"number"`
	ItemTotal     int64         `json:"itemTotal"`
	Adjustments   []*Adjustment `json:"adjustments,omitempty"`
	Payments      []Payment     `json:"payments,omitempty"`
	Shipments     []*Shipment   `json:"shipments,omitempty"`
	PaymentState  string        `json:"paymentState,omitempty"`
	ShipmentState string        `json:"shipmentState,omitempty"`
	CompletedAt   *time.Time    `json:"completedAt,omitempty"`

	ConfirmationDelivered bool `json:"confirmationDelivered,omitempty"`
}

// Total of the items and adjustments
func (o *Order) Total() int64 {
	total := o.ItemTotal
	for _, a := range o.Adjustments {
		total += a.Amount
	}
	return total
}

// PaymentTotal is the sum of the payments that weren't declined
func (o *Order) PaymentTotal() int64 {
	var paid int64
	for _, p := range o.Payments {
		if !p.Declined {
			paid += p.Amount
		}
	}
	return paid
}

// Completed is true once the order was finalized
func (o *Order) Completed() bool {
	return o.CompletedAt != nil
}

// Clone makes a deep copy
func (o *Order) Clone() *Order {
	c := *o
	c.Adjustments = make([]*Adjustment, len(o.Adjustments))
	for i, a := range o.Adjustments {
		ac := *a
		c.Adjustments[i] = &ac
	}
	c.Payments = append([]Payment(nil), o.Payments...)
	c.Shipments = make([]*Shipment, len(o.Shipments))
	for i, s := range o.Shipments {
		sc := *s
		c.Shipments[i] = &sc
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (o *Order) paymentState() string {
	total, paid := o.Total(), o.PaymentTotal()
	switch {
	case total <= 0 && paid == 0:
		return PaymentVoid
	case paid >= total:
		return PaymentPaid
	}
	for _, p := range o.Payments {
		if p.Declined {
			return PaymentFailed
		}
	}
	return PaymentBalanceDue
}

func (o *Order) shipmentState() string {
	if len(o.Shipments) == 0 {
		return ""
	}
	counts := make(map[string]int, 3)
	for _, s := range o.Shipments {
		counts[s.State]++
	}
	if len(counts) > 1 {
		if counts[ShipmentShipped] > 0 {
			return ShipmentPartial
		}
		return ShipmentPending
	}
	return o.Shipments[0].State
}

// shipment state only moves forward to ready once the order is paid
func (s *Shipment) updateState(o *Order) {
	if s.State == ShipmentShipped {
		return
	}
	if o.PaymentState == PaymentPaid || o.PaymentState == PaymentVoid {
		s.State = ShipmentReady
		return
	}
	s.State = ShipmentPending
}

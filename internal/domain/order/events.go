package order

import "time"

// CreatedEvent is emitted after an order has been stored and its stock reserved.
type CreatedEvent struct {
	OrderID    string
	BuyerEmail string
	ProductID  string
	Quantity   int
	Amount     int64
	OccurredAt time.Time
}

func (CreatedEvent) EventName() string     { return "order.created" }
func (e CreatedEvent) AggregateID() string { return e.OrderID }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:    o.ID,
		BuyerEmail: o.BuyerEmail,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		Amount:     o.Amount,
		OccurredAt: time.Now().UTC(),
	}
}

type PaidEvent struct {
	OrderID       string
	TransactionID string
	Amount        int64
	OccurredAt    time.Time
}

func (PaidEvent) EventName() string     { return "order.paid" }
func (e PaidEvent) AggregateID() string { return e.OrderID }

func NewPaidEvent(o *Order) PaidEvent {
	return PaidEvent{
		OrderID:       o.ID,
		TransactionID: o.TransactionID,
		Amount:        o.Amount,
		OccurredAt:    time.Now().UTC(),
	}
}

type ShippedEvent struct {
	OrderID    string
	OccurredAt time.Time
}

func (ShippedEvent) EventName() string     { return "order.shipped" }
func (e ShippedEvent) AggregateID() string { return e.OrderID }

func NewShippedEvent(o *Order) ShippedEvent {
	return ShippedEvent{OrderID: o.ID, OccurredAt: time.Now().UTC()}
}

// CancelledEvent carries the released quantity so consumers can follow stock.
type CancelledEvent struct {
	OrderID    string
	ProductID  string
	Quantity   int
	OccurredAt time.Time
}

func (CancelledEvent) EventName() string     { return "order.cancelled" }
func (e CancelledEvent) AggregateID() string { return e.OrderID }

func NewCancelledEvent(o *Order) CancelledEvent {
	return CancelledEvent{
		OrderID:    o.ID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		OccurredAt: time.Now().UTC(),
	}
}

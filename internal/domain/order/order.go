package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("order: not found")
	ErrInvalidQuantity   = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount     = errors.New("order: amount must be zero or greater")
	ErrBuyerRequired     = errors.New("order: buyer email is required")
	ErrInvalidTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusCreated Status = "created"
	StatusPaid    Status = "paid"
	StatusShipped Status = "shipped"
)

// Contact is the delivery information supplied by the buyer.
type Contact struct {
	BuyerName string
	Phone     string
	Address   string
}

type Order struct {
	ID            string
	ProductID     string
	ProductName   string
	BuyerEmail    string
	Contact       Contact
	Quantity      int
	Amount        int64
	Paid          bool
	Delivery      bool
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func New(id, productID, productName, buyerEmail string, contact Contact, quantity int, amount int64) (*Order, error) {
	if strings.TrimSpace(buyerEmail) == "" {
		return nil, ErrBuyerRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Order{
		ID:          id,
		ProductID:   productID,
		ProductName: productName,
		BuyerEmail:  buyerEmail,
		Contact:     contact,
		Quantity:    quantity,
		Amount:      amount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Status derives the lifecycle position from the persisted flags.
func (o *Order) Status() Status {
	return o.state().Status()
}

// RecordPayment moves a created order to paid and binds the capture handle.
func (o *Order) RecordPayment(transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return ErrInvalidTransition
	}
	return o.apply(func(s State) error { return s.OnPaymentRecorded(o, transactionID) })
}

func (o *Order) MarkShipped() error {
	return o.apply(func(s State) error { return s.OnShipped(o) })
}

// Cancel only validates; cancelled orders are removed from the store.
func (o *Order) Cancel() error {
	return o.apply(func(s State) error { return s.OnCancel(o) })
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

func (o *Order) apply(event func(State) error) error {
	if err := event(o.state()); err != nil {
		return err
	}
	o.touch()
	return nil
}

func (o *Order) state() State {
	switch {
	case o.Delivery:
		return shippedState{}
	case o.Paid:
		return paidState{}
	default:
		return createdState{}
	}
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

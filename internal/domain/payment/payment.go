package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("payment: not found")
	ErrDuplicate       = errors.New("payment: already recorded")
	ErrCaptureRejected = errors.New("payment: capture rejected")
	ErrHandleRequired  = errors.New("payment: capture handle is required")
)

// Payment is the immutable record of one successful capture.
type Payment struct {
	TransactionID string
	OrderID       string
	BuyerEmail    string
	Amount        int64
	Currency      string
	CreatedAt     time.Time
}

func New(transactionID, orderID, buyerEmail string, amount int64, currency string) (*Payment, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, ErrHandleRequired
	}
	return &Payment{
		TransactionID: transactionID,
		OrderID:       orderID,
		BuyerEmail:    buyerEmail,
		Amount:        amount,
		Currency:      strings.ToLower(currency),
		CreatedAt:     time.Now().UTC(),
	}, nil
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Repository reads payments. Writes go through the order repository's
// settlement so that payment and order flag change together.
type Repository interface {
	List(ctx context.Context) ([]*Payment, error)
	FindByOrder(ctx context.Context, orderID string) (*Payment, error)
}

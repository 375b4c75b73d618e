package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

// Filter narrows List; an empty BuyerEmail lists every order.
type Filter struct {
	BuyerEmail string
	PaidOnly   bool
}

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// List returns matching orders, newest first.
	List(ctx context.Context, f Filter) ([]*Order, error)
	// CompareAndUpdate persists o only if the stored order is still in from.
	// A stale state yields ErrInvalidTransition.
	CompareAndUpdate(ctx context.Context, o *Order, from Status) error
	// CompareAndDelete removes the order only if it is still in from.
	CompareAndDelete(ctx context.Context, id string, from Status) error
	// SettlePayment inserts p and marks o paid in one atomic operation,
	// conditioned on the stored order being unpaid.
	SettlePayment(ctx context.Context, o *Order, p *payment.Payment) error
}

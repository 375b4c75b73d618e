package payment

import (
	"context"
	"strings"
)

// Intent is what a client needs to complete a capture with the provider.
type Intent struct {
	CaptureHandle string
	ClientSecret  string
}

// Capture is the provider's view of a capture handle.
type Capture struct {
	Handle    string
	Amount    int64
	Currency  string
	Succeeded bool
}

// Gateway talks to an external payment network.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error)
	Lookup(ctx context.Context, handle string) (Capture, error)
}

// Verify checks that a capture succeeded for exactly the expected amount.
func (c Capture) Verify(amount int64, currency string) error {
	if !c.Succeeded || c.Amount != amount {
		return ErrCaptureRejected
	}
	if currency != "" && c.Currency != "" && !strings.EqualFold(c.Currency, currency) {
		return ErrCaptureRejected
	}
	return nil
}

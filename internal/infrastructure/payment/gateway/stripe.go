package gateway

import (
	"context"
	"errors"
	"strings"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

// Stripe creates card payment intents and reads them back by id.
type Stripe struct {
	client paymentintent.Client
}

func NewStripe(secretKey string) (*Stripe, error) {
	if secretKey == "" {
		return nil, errors.New("stripe gateway: secret key is required")
	}
	return &Stripe{
		client: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}, nil
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string) (dompayment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.client.New(params)
	if err != nil {
		return dompayment.Intent{}, err
	}
	return dompayment.Intent{CaptureHandle: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) Lookup(ctx context.Context, handle string) (dompayment.Capture, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.client.Get(handle, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == 404 {
			return dompayment.Capture{Handle: handle}, nil
		}
		return dompayment.Capture{}, err
	}
	return dompayment.Capture{
		Handle:    pi.ID,
		Amount:    pi.AmountReceived,
		Currency:  string(pi.Currency),
		Succeeded: pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}

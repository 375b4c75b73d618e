package gateway

import (
	"context"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

const omiseSourceType = "promptpay"

// Omise charges through a PromptPay source; the charge id is the capture handle.
type Omise struct {
	publicKey string
	secretKey string
}

func NewOmise(publicKey, secretKey string) (*Omise, error) {
	if _, err := omise.NewClient(publicKey, secretKey); err != nil {
		return nil, err
	}
	return &Omise{publicKey: publicKey, secretKey: secretKey}, nil
}

func (o *Omise) Name() string { return "omise" }

// clientFor builds a client bound to ctx. omise.Client keeps the context as
// mutable state, so clients are not shared between calls.
func (o *Omise) clientFor(ctx context.Context) (*omise.Client, error) {
	c, err := omise.NewClient(o.publicKey, o.secretKey)
	if err != nil {
		return nil, err
	}
	c.WithContext(ctx)
	return c, nil
}

func (o *Omise) CreateIntent(ctx context.Context, amount int64, currency string) (dompayment.Intent, error) {
	if err := ctx.Err(); err != nil {
		return dompayment.Intent{}, err
	}
	client, err := o.clientFor(ctx)
	if err != nil {
		return dompayment.Intent{}, err
	}

	src := &omise.Source{}
	if err := client.Do(src, &operations.CreateSource{
		Type:     omiseSourceType,
		Amount:   amount,
		Currency: strings.ToLower(currency),
	}); err != nil {
		return dompayment.Intent{}, err
	}

	ch := &omise.Charge{}
	if err := client.Do(ch, &operations.CreateCharge{
		Amount:   amount,
		Currency: strings.ToLower(currency),
		Source:   src.ID,
	}); err != nil {
		return dompayment.Intent{}, err
	}
	return dompayment.Intent{CaptureHandle: ch.ID, ClientSecret: ch.AuthorizeURI}, nil
}

func (o *Omise) Lookup(ctx context.Context, handle string) (dompayment.Capture, error) {
	if err := ctx.Err(); err != nil {
		return dompayment.Capture{}, err
	}
	client, err := o.clientFor(ctx)
	if err != nil {
		return dompayment.Capture{}, err
	}

	ch := &omise.Charge{}
	if err := client.Do(ch, &operations.RetrieveCharge{ChargeID: handle}); err != nil {
		return dompayment.Capture{}, err
	}
	return dompayment.Capture{
		Handle:    ch.ID,
		Amount:    ch.Amount,
		Currency:  ch.Currency,
		Succeeded: string(ch.Status) == "successful",
	}, nil
}

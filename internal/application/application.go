package application

import (
	"context"
	"errors"
	"fmt"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

var (
	// ErrValidation marks malformed input rejected before touching any store.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream marks a store or gateway failure. It is never retried here.
	ErrUpstream = errors.New("upstream failure")
)

func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// PeerPaymentGateway names the payment provider in upstream failures.
const PeerPaymentGateway = "payment_gateway"

// UpstreamError is a failure of a named collaborator. It matches ErrUpstream.
type UpstreamError struct {
	Peer string
	Err  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstream, e.Peer, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

// Upstream wraps err as an upstream failure of the named collaborator.
func Upstream(peer string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Peer: peer, Err: err}
}

// IDGenerator produces identifiers for new aggregates.
type IDGenerator interface {
	NewID() string
}

package gateway

import (
	"context"
	"testing"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestNewOmiseRejectsMalformedKeys(t *testing.T) {
	_, err := NewOmise("pk_wrong", "skey_test_1")
	assert.ErrorIs(t, err, omise.ErrInvalidKey)

	_, err = NewOmise("", "")
	assert.ErrorIs(t, err, omise.ErrInvalidKey)
}

func TestOmiseClientCarriesRequestContext(t *testing.T) {
	o, err := NewOmise("pkey_test_1", "skey_test_1")
	require.NoError(t, err)

	first := context.WithValue(context.Background(), ctxKey{}, "first")
	second := context.WithValue(context.Background(), ctxKey{}, "second")

	c1, err := o.clientFor(first)
	require.NoError(t, err)
	c2, err := o.clientFor(second)
	require.NoError(t, err)

	req, err := c1.Request(&operations.RetrieveCharge{ChargeID: "chrg_test_1"})
	require.NoError(t, err)
	assert.Equal(t, "first", req.Context().Value(ctxKey{}))

	req, err = c2.Request(&operations.RetrieveCharge{ChargeID: "chrg_test_1"})
	require.NoError(t, err)
	assert.Equal(t, "second", req.Context().Value(ctxKey{}))
}

func TestOmiseHonoursCancelledContext(t *testing.T) {
	o, err := NewOmise("pkey_test_1", "skey_test_1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = o.Lookup(ctx, "chrg_test_1")
	assert.ErrorIs(t, err, context.Canceled)
}

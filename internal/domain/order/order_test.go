package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("O1", "P1", "drill", "b@x.com", Contact{BuyerName: "B"}, 2, 2000)
	require.NoError(t, err)
	return o
}

func TestNewValidates(t *testing.T) {
	_, err := New("O1", "P1", "drill", "", Contact{}, 1, 10)
	assert.ErrorIs(t, err, ErrBuyerRequired)

	_, err = New("O1", "P1", "drill", "b@x.com", Contact{}, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = New("O1", "P1", "drill", "b@x.com", Contact{}, 1, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLifecycle(t *testing.T) {
	o := newOrder(t)
	assert.Equal(t, StatusCreated, o.Status())
	assert.False(t, o.Paid)
	assert.False(t, o.Delivery)

	assert.ErrorIs(t, o.MarkShipped(), ErrInvalidTransition)

	require.NoError(t, o.RecordPayment("pi_1"))
	assert.Equal(t, StatusPaid, o.Status())
	assert.Equal(t, "pi_1", o.TransactionID)

	assert.ErrorIs(t, o.RecordPayment("pi_2"), ErrInvalidTransition)
	assert.Equal(t, "pi_1", o.TransactionID)
	assert.ErrorIs(t, o.Cancel(), ErrInvalidTransition)

	require.NoError(t, o.MarkShipped())
	assert.Equal(t, StatusShipped, o.Status())
	assert.True(t, o.Delivery)

	assert.ErrorIs(t, o.MarkShipped(), ErrInvalidTransition)
	assert.ErrorIs(t, o.Cancel(), ErrInvalidTransition)
}

func TestCancelAllowedWhileUnpaid(t *testing.T) {
	o := newOrder(t)
	assert.NoError(t, o.Cancel())
	assert.Equal(t, StatusCreated, o.Status())
}

func TestRecordPaymentRequiresHandle(t *testing.T) {
	o := newOrder(t)
	assert.ErrorIs(t, o.RecordPayment(" "), ErrInvalidTransition)
	assert.False(t, o.Paid)
}

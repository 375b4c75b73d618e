package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New("p1", "o@x.com", Details{}, 1)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = New("p1", "o@x.com", Details{Name: "drill"}, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	price := int64(-5)
	_, err = New("p1", "o@x.com", Details{Name: "drill", Price: &price}, 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestDeduct(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		amount  int
		want    int
		wantErr error
	}{
		{name: "partial", stock: 5, amount: 2, want: 3},
		{name: "exact", stock: 5, amount: 5, want: 0},
		{name: "too much", stock: 5, amount: 6, want: 5, wantErr: ErrInsufficientStock},
		{name: "zero amount", stock: 5, amount: 0, want: 5, wantErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New("p1", "o@x.com", Details{Name: "drill"}, tt.stock)
			require.NoError(t, err)

			err = p.Deduct(tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, p.AvailableQuantity)
		})
	}
}

func TestApplyKeepsQuantityAndOwner(t *testing.T) {
	p, err := New("p1", "o@x.com", Details{Name: "drill"}, 4)
	require.NoError(t, err)

	price := int64(1299)
	require.NoError(t, p.Apply(Details{Description: "cordless", Price: &price}))

	assert.Equal(t, "drill", p.Name)
	assert.Equal(t, "cordless", p.Description)
	assert.Equal(t, int64(1299), p.Price)
	assert.Equal(t, 4, p.AvailableQuantity)
	assert.Equal(t, "o@x.com", p.OwnerEmail)
}

package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
)

func TestProfileUpsertMergesAndKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()

	p, inserted, err := repo.Upsert(ctx, "a@x.com", identity.Fields{Name: "A", Phone: "1"})
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, identity.RoleNone, p.Role)

	_, err = repo.SetRole(ctx, "a@x.com", identity.RoleAdmin)
	require.NoError(t, err)

	p, inserted, err = repo.Upsert(ctx, "a@x.com", identity.Fields{Phone: "2"})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "A", p.Name)
	assert.Equal(t, "2", p.Phone)
	assert.Equal(t, identity.RoleAdmin, p.Role)

	_, err = repo.SetRole(ctx, "missing@x.com", identity.RoleAdmin)
	assert.ErrorIs(t, err, identity.ErrNotFound)
}

func TestProductDecrementNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p, err := product.New("P1", "o@x.com", product.Details{Name: "drill"}, 10)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, p))

	var ok, insufficient atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Decrement(ctx, "P1", 1)
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, product.ErrInsufficientStock):
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, ok.Load())
	assert.EqualValues(t, 15, insufficient.Load())

	got, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)
}

func TestProductUpdateDetailsKeepsQuantity(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	p, err := product.New("P1", "o@x.com", product.Details{Name: "drill"}, 3)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, p))

	edited := p.Clone()
	edited.Name = "hammer"
	edited.AvailableQuantity = 99
	require.NoError(t, repo.UpdateDetails(ctx, edited))

	got, err := repo.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "hammer", got.Name)
	assert.Equal(t, 3, got.AvailableQuantity)
}

func newStoredOrder(t *testing.T, repo *OrderRepository) *order.Order {
	t.Helper()
	o, err := order.New("O1", "P1", "drill", "b@x.com", order.Contact{}, 1, 500)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), o))
	return o
}

func TestSettlePaymentOnlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	newStoredOrder(t, repo)

	var settled atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o, err := repo.Get(ctx, "O1")
			if !assert.NoError(t, err) {
				return
			}
			handle := "pi_" + string(rune('a'+i))
			if o.RecordPayment(handle) != nil {
				return
			}
			p, err := payment.New(handle, o.ID, o.BuyerEmail, o.Amount, "usd")
			if !assert.NoError(t, err) {
				return
			}
			if repo.SettlePayment(ctx, o, p) == nil {
				settled.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, settled.Load())
	payments, err := repo.Payments().List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	o, err := repo.Get(ctx, "O1")
	require.NoError(t, err)
	assert.True(t, o.Paid)
	assert.Equal(t, payments[0].TransactionID, o.TransactionID)
}

func TestCompareAndUpdateRejectsStaleState(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newStoredOrder(t, repo)

	paid := o.Clone()
	require.NoError(t, paid.RecordPayment("pi_1"))
	require.NoError(t, repo.CompareAndUpdate(ctx, paid, order.StatusCreated))

	// A second writer still holding the created snapshot loses.
	stale := o.Clone()
	require.NoError(t, stale.RecordPayment("pi_2"))
	assert.ErrorIs(t, repo.CompareAndUpdate(ctx, stale, order.StatusCreated), order.ErrInvalidTransition)

	got, err := repo.Get(ctx, "O1")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", got.TransactionID)
}

func TestCompareAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newStoredOrder(t, repo)

	paid := o.Clone()
	require.NoError(t, paid.RecordPayment("pi_1"))
	require.NoError(t, repo.CompareAndUpdate(ctx, paid, order.StatusCreated))

	assert.ErrorIs(t, repo.CompareAndDelete(ctx, "O1", order.StatusCreated), order.ErrInvalidTransition)
	assert.ErrorIs(t, repo.CompareAndDelete(ctx, "missing", order.StatusCreated), order.ErrNotFound)

	o2, err := order.New("O2", "P1", "drill", "b@x.com", order.Contact{}, 1, 500)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, o2))
	require.NoError(t, repo.CompareAndDelete(ctx, "O2", order.StatusCreated))
	_, err = repo.Get(ctx, "O2")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	newStoredOrder(t, repo)
	other, err := order.New("O2", "P1", "drill", "c@x.com", order.Contact{}, 1, 500)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, other))

	all, err := repo.List(ctx, order.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := repo.List(ctx, order.Filter{BuyerEmail: "c@x.com"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "O2", mine[0].ID)

	paid, err := repo.List(ctx, order.Filter{PaidOnly: true})
	require.NoError(t, err)
	assert.Empty(t, paid)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

// OrderRepository keeps orders and payments behind one mutex so that
// settlement touches both atomically.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	payments map[string]*dompayment.Payment // by transaction id
	byOrder  map[string]string              // order id -> transaction id
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   make(map[string]*domain.Order),
		payments: make(map[string]*dompayment.Payment),
		byOrder:  make(map[string]string),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order repository: %s already exists", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if f.BuyerEmail != "" && o.BuyerEmail != f.BuyerEmail {
			continue
		}
		if f.PaidOnly && !o.Paid {
			continue
		}
		out = append(out, o.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) CompareAndUpdate(ctx context.Context, order *domain.Order, from domain.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status() != from {
		return domain.ErrInvalidTransition
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) CompareAndDelete(ctx context.Context, id string, from domain.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status() != from {
		return domain.ErrInvalidTransition
	}
	delete(r.orders, id)
	return nil
}

func (r *OrderRepository) SettlePayment(ctx context.Context, order *domain.Order, p *dompayment.Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Paid {
		return domain.ErrInvalidTransition
	}
	if _, dup := r.payments[p.TransactionID]; dup {
		return dompayment.ErrDuplicate
	}
	if _, dup := r.byOrder[p.OrderID]; dup {
		return dompayment.ErrDuplicate
	}
	r.payments[p.TransactionID] = p.Clone()
	r.byOrder[p.OrderID] = p.TransactionID
	r.orders[order.ID] = order.Clone()
	return nil
}

// Payments exposes the payment side of the store.
func (r *OrderRepository) Payments() *PaymentRepository {
	return &PaymentRepository{store: r}
}

type PaymentRepository struct {
	store *OrderRepository
}

func (r *PaymentRepository) List(ctx context.Context) ([]*dompayment.Payment, error) {
	_ = ctx

	r.store.mu.RLock()
	out := make([]*dompayment.Payment, 0, len(r.store.payments))
	for _, p := range r.store.payments {
		out = append(out, p.Clone())
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) (*dompayment.Payment, error) {
	_ = ctx

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tx, ok := r.store.byOrder[orderID]
	if !ok {
		return nil, dompayment.ErrNotFound
	}
	return r.store.payments[tx].Clone(), nil
}

// Import stores a payment without touching its order. It exists for data
// migrated from an older store, which is exactly what reconciliation repairs.
func (r *PaymentRepository) Import(ctx context.Context, p *dompayment.Payment) error {
	_ = ctx

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, dup := r.store.payments[p.TransactionID]; dup {
		return dompayment.ErrDuplicate
	}
	r.store.payments[p.TransactionID] = p.Clone()
	r.store.byOrder[p.OrderID] = p.TransactionID
	return nil
}

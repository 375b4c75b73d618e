package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return fmt.Errorf("product repository: %s already exists", p.ID)
	}
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return fmt.Errorf("product repository: product is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	// Quantity is owned by the adjuster primitives; keep the stored value.
	next := p.Clone()
	next.AvailableQuantity = stored.AvailableQuantity
	next.OwnerEmail = stored.OwnerEmail
	r.products[p.ID] = next
	return nil
}

func (r *ProductRepository) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error { return p.SetQuantity(quantity) })
}

func (r *ProductRepository) Decrement(ctx context.Context, id string, amount int) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error { return p.Deduct(amount) })
}

func (r *ProductRepository) Increment(ctx context.Context, id string, amount int) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error { return p.Restock(amount) })
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// mutate applies fn to a copy under the write lock and stores it only on success.
func (r *ProductRepository) mutate(ctx context.Context, id string, fn func(*domain.Product) error) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := stored.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	r.products[id] = next
	return next.Clone(), nil
}

package product

import "context"

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	// List returns every product, newest first.
	List(ctx context.Context) ([]*Product, error)
	// UpdateDetails persists the descriptive attributes of p.
	UpdateDetails(ctx context.Context, p *Product) error
	// SetQuantity overwrites the available quantity unconditionally.
	SetQuantity(ctx context.Context, id string, quantity int) (*Product, error)
	// Decrement atomically subtracts amount when enough stock is available,
	// failing with ErrInsufficientStock otherwise.
	Decrement(ctx context.Context, id string, amount int) (*Product, error)
	// Increment atomically adds amount back to the available quantity.
	Increment(ctx context.Context, id string, amount int) (*Product, error)
	Delete(ctx context.Context, id string) error
}

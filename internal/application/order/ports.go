package order

import (
	"context"

	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
)

// StockPort is the inventory adjuster as seen by order placement.
type StockPort interface {
	Reserve(ctx context.Context, productID string, amount int) (*domproduct.Product, error)
	Restock(ctx context.Context, productID string, amount int) error
}

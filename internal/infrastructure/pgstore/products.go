package pgstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
)

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	m := productModelFrom(p)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(r.db.WithContext(ctx), id)
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	var rows []productModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, p *domain.Product) error {
	res := r.db.WithContext(ctx).Model(&productModel{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":          p.Name,
		"description":   p.Description,
		"image":         p.Image,
		"price":         p.Price,
		"minimum_order": p.MinimumOrder,
		"updated_at":    p.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return r.update(ctx, id, "id = ?", []any{id}, quantity)
}

// Decrement is a single UPDATE guarded by available_quantity >= amount.
func (r *ProductRepository) Decrement(ctx context.Context, id string, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	p, err := r.update(ctx, id, "id = ? AND available_quantity >= ?", []any{id, amount},
		gorm.Expr("available_quantity - ?", amount))
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInsufficientStock
	}
	return p, err
}

func (r *ProductRepository) Increment(ctx context.Context, id string, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	return r.update(ctx, id, "id = ?", []any{id}, gorm.Expr("available_quantity + ?", amount))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&productModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// update writes quantity and reads the row back in one transaction. No
// matching row yields ErrNotFound.
func (r *ProductRepository) update(ctx context.Context, id, where string, args []any, quantity any) (*domain.Product, error) {
	var out *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&productModel{}).Where(where, args...).Updates(map[string]any{
			"available_quantity": quantity,
			"updated_at":         time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		p, err := getProduct(tx, id)
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getProduct(db *gorm.DB, id string) (*domain.Product, error) {
	var m productModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

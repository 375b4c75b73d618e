package pgstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	m := orderModelFrom(o)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	return getOrder(r.db.WithContext(ctx), id)
}

func (r *OrderRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Order, error) {
	q := r.db.WithContext(ctx).Model(&orderModel{})
	if f.BuyerEmail != "" {
		q = q.Where("buyer_email = ?", f.BuyerEmail)
	}
	if f.PaidOnly {
		q = q.Where("paid = ?", true)
	}
	var rows []orderModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *OrderRepository) CompareAndUpdate(ctx context.Context, o *domain.Order, from domain.Status) error {
	db := r.db.WithContext(ctx)
	where, args := statusClause(o.ID, from)
	res := db.Model(&orderModel{}).Where(where, args...).Updates(orderColumns(o))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missOrStale(db, o.ID)
	}
	return nil
}

func (r *OrderRepository) CompareAndDelete(ctx context.Context, id string, from domain.Status) error {
	db := r.db.WithContext(ctx)
	where, args := statusClause(id, from)
	res := db.Where(where, args...).Delete(&orderModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missOrStale(db, id)
	}
	return nil
}

func (r *OrderRepository) SettlePayment(ctx context.Context, o *domain.Order, p *dompayment.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel{}).
			Where("id = ? AND paid = ?", o.ID, false).
			Updates(map[string]any{
				"paid":           true,
				"transaction_id": o.TransactionID,
				"updated_at":     o.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missOrStale(tx, o.ID)
		}

		m := paymentModelFrom(p)
		if err := tx.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return dompayment.ErrDuplicate
			}
			return err
		}
		return nil
	})
}

func getOrder(db *gorm.DB, id string) (*domain.Order, error) {
	var m orderModel
	if err := db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

func missOrStale(db *gorm.DB, id string) error {
	if _, err := getOrder(db, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

// statusClause matches the flag combination that derives to status.
func statusClause(id string, status domain.Status) (string, []any) {
	switch status {
	case domain.StatusPaid:
		return "id = ? AND paid = ? AND delivery = ?", []any{id, true, false}
	case domain.StatusShipped:
		return "id = ? AND delivery = ?", []any{id, true}
	default:
		return "id = ? AND paid = ? AND delivery = ?", []any{id, false, false}
	}
}

// orderColumns lists every mutable column so false flags are written too.
func orderColumns(o *domain.Order) map[string]any {
	return map[string]any{
		"paid":           o.Paid,
		"delivery":       o.Delivery,
		"transaction_id": o.TransactionID,
		"buyer_name":     o.Contact.BuyerName,
		"phone":          o.Contact.Phone,
		"address":        o.Contact.Address,
		"updated_at":     o.UpdatedAt,
	}
}

type PaymentRepository struct {
	db *gorm.DB
}

func (r *PaymentRepository) List(ctx context.Context) ([]*dompayment.Payment, error) {
	var rows []paymentModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*dompayment.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) (*dompayment.Payment, error) {
	var m paymentModel
	if err := r.db.WithContext(ctx).First(&m, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dompayment.ErrNotFound
		}
		return nil, err
	}
	return m.toDomain(), nil
}

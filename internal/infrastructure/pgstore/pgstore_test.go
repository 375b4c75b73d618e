package pgstore

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
)

func TestStatusClause(t *testing.T) {
	where, args := statusClause("o1", order.StatusCreated)
	assert.Equal(t, "id = ? AND paid = ? AND delivery = ?", where)
	assert.Equal(t, []any{"o1", false, false}, args)

	where, args = statusClause("o1", order.StatusPaid)
	assert.Equal(t, "id = ? AND paid = ? AND delivery = ?", where)
	assert.Equal(t, []any{"o1", true, false}, args)

	where, args = statusClause("o1", order.StatusShipped)
	assert.Equal(t, "id = ? AND delivery = ?", where)
	assert.Equal(t, []any{"o1", true}, args)
}

func TestOrderColumnsWritesFalseFlags(t *testing.T) {
	o := &order.Order{ID: "o1", UpdatedAt: time.Now().UTC()}

	cols := orderColumns(o)
	assert.Contains(t, cols, "paid")
	assert.Contains(t, cols, "delivery")
	assert.Equal(t, false, cols["paid"])
	assert.Equal(t, false, cols["delivery"])
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert payment: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "42P01"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestOrderModelKeepsContact(t *testing.T) {
	o := &order.Order{
		ID:         "o1",
		BuyerEmail: "buyer@example.com",
		Contact:    order.Contact{BuyerName: "B", Phone: "1", Address: "Street"},
		Quantity:   1,
		Paid:       true,
		Delivery:   true,
	}
	got := orderModelFrom(o).toDomain()
	assert.Equal(t, o.Contact, got.Contact)
	assert.Equal(t, order.StatusShipped, got.Status())
}

package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
)

func TestStatusFilter(t *testing.T) {
	tests := []struct {
		status order.Status
		want   bson.M
	}{
		{order.StatusCreated, bson.M{"_id": "o1", "paid": false, "delivery": false}},
		{order.StatusPaid, bson.M{"_id": "o1", "paid": true, "delivery": false}},
		{order.StatusShipped, bson.M{"_id": "o1", "delivery": true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFilter("o1", tt.status))
		})
	}
}

func TestOrderDocRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	o := &order.Order{
		ID:          "o1",
		ProductID:   "p1",
		ProductName: "Lamp",
		BuyerEmail:  "buyer@example.com",
		Contact:     order.Contact{BuyerName: "B", Phone: "1", Address: "Street"},
		Quantity:    2,
		Amount:      3000,
		Paid:        true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	raw, err := bson.Marshal(orderDocFrom(o))
	assert.NoError(t, err)

	var doc orderDoc
	assert.NoError(t, bson.Unmarshal(raw, &doc))
	got := doc.toDomain()
	assert.Equal(t, o, got)
	assert.Equal(t, order.StatusPaid, got.Status())
}

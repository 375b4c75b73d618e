package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
)

type OrderRepository struct {
	client   *mongo.Client
	orders   *mongo.Collection
	payments *mongo.Collection
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	_, err := r.orders.InsertOne(ctx, orderDocFrom(o))
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDoc
	if err := r.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, f domain.Filter) ([]*domain.Order, error) {
	filter := bson.M{}
	if f.BuyerEmail != "" {
		filter["buyer_email"] = f.BuyerEmail
	}
	if f.PaidOnly {
		filter["paid"] = true
	}
	cur, err := r.orders.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *OrderRepository) CompareAndUpdate(ctx context.Context, o *domain.Order, from domain.Status) error {
	filter := statusFilter(o.ID, from)
	res, err := r.orders.ReplaceOne(ctx, filter, orderDocFrom(o))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missOrStale(ctx, o.ID)
	}
	return nil
}

func (r *OrderRepository) CompareAndDelete(ctx context.Context, id string, from domain.Status) error {
	res, err := r.orders.DeleteOne(ctx, statusFilter(id, from))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.missOrStale(ctx, id)
	}
	return nil
}

// SettlePayment runs in a multi-document transaction, which needs a replica
// set deployment.
func (r *OrderRepository) SettlePayment(ctx context.Context, o *domain.Order, p *dompayment.Payment) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.orders.UpdateOne(sc,
			bson.M{"_id": o.ID, "paid": false},
			bson.M{"$set": bson.M{
				"paid":           true,
				"transaction_id": o.TransactionID,
				"updated_at":     o.UpdatedAt,
			}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, r.missOrStale(sc, o.ID)
		}
		if _, err := r.payments.InsertOne(sc, paymentDocFrom(p)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, dompayment.ErrDuplicate
			}
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (r *OrderRepository) missOrStale(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrInvalidTransition
}

// statusFilter matches the flag combination that derives to status.
func statusFilter(id string, status domain.Status) bson.M {
	filter := bson.M{"_id": id}
	switch status {
	case domain.StatusCreated:
		filter["paid"] = false
		filter["delivery"] = false
	case domain.StatusPaid:
		filter["paid"] = true
		filter["delivery"] = false
	case domain.StatusShipped:
		filter["delivery"] = true
	}
	return filter
}

type PaymentRepository struct {
	col *mongo.Collection
}

func (r *PaymentRepository) List(ctx context.Context) ([]*dompayment.Payment, error) {
	cur, err := r.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*dompayment.Payment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID string) (*dompayment.Payment, error) {
	var doc paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dompayment.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

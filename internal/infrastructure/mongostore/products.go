package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
)

type ProductRepository struct {
	col *mongo.Collection
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_, err := r.col.InsertOne(ctx, productDocFrom(p))
	return err
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	cur, err := r.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProductRepository) UpdateDetails(ctx context.Context, p *domain.Product) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"name":          p.Name,
		"description":   p.Description,
		"image":         p.Image,
		"price":         p.Price,
		"minimum_order": p.MinimumOrder,
		"updated_at":    p.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"available_quantity": quantity}, nil)
}

// Decrement filters on available_quantity >= amount so the check and the
// write are one server-side operation.
func (r *ProductRepository) Decrement(ctx context.Context, id string, amount int) (*domain.Product, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	filter := bson.M{"_id": id, "available_quantity": bson.M{"$gte": amount}}
	p, err := r.findAndUpdate(ctx, filter, nil, bson.M{"available_quantity": -amount})
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
	return r.findAndUpdate(ctx, bson.M{"_id": id}, nil, bson.M{"available_quantity": amount})
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) findAndUpdate(ctx context.Context, filter, set, inc bson.M) (*domain.Product, error) {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if inc != nil {
		update["$inc"] = inc
	}

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

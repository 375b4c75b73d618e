// Package mongostore persists the marketplace aggregates in MongoDB, one
// collection per aggregate.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	colProfiles = "profiles"
	colProducts = "products"
	colOrders   = "orders"
	colPayments = "payments"
	colReviews  = "reviews"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects, pings and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{col: s.db.Collection(colProfiles)}
}

func (s *Store) Products() *ProductRepository {
	return &ProductRepository{col: s.db.Collection(colProducts)}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{
		client:   s.client,
		orders:   s.db.Collection(colOrders),
		payments: s.db.Collection(colPayments),
	}
}

func (s *Store) Payments() *PaymentRepository {
	return &PaymentRepository{col: s.db.Collection(colPayments)}
}

func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{col: s.db.Collection(colReviews)}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colPayments: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colOrders: {
			{Keys: bson.D{{Key: "buyer_email", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colReviews: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
}

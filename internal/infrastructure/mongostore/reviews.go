package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) error {
	_, err := r.col.InsertOne(ctx, reviewDoc{
		ID:          rv.ID,
		AuthorEmail: rv.AuthorEmail,
		Name:        rv.Name,
		Rating:      rv.Rating,
		Comment:     rv.Comment,
		CreatedAt:   rv.CreatedAt,
	})
	return err
}

func (r *ReviewRepository) List(ctx context.Context, limit int) ([]*domain.Review, error) {
	opts := newestFirst()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

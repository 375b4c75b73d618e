package mongostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
)

type ProfileRepository struct {
	col *mongo.Collection
}

// Upsert sets only non-empty fields; role and created_at are written on insert.
func (r *ProfileRepository) Upsert(ctx context.Context, email string, fields domain.Fields) (*domain.Profile, bool, error) {
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	for key, v := range map[string]string{
		"name":      fields.Name,
		"phone":     fields.Phone,
		"address":   fields.Address,
		"education": fields.Education,
		"linkedin":  fields.LinkedIn,
		"image":     fields.Image,
	} {
		if v = strings.TrimSpace(v); v != "" {
			set[key] = v
		}
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"role": string(domain.RoleNone), "created_at": now},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, err
	}
	p, err := r.Get(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return p, res.UpsertedCount > 0, nil
}

func (r *ProfileRepository) Get(ctx context.Context, email string) (*domain.Profile, error) {
	var doc profileDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	cur, err := r.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	var docs []profileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domain.Profile, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.Profile, error) {
	var doc profileDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": email},
		bson.M{"$set": bson.M{"role": string(role), "updated_at": time.Now().UTC()}},
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

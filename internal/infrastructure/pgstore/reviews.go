package pgstore

import (
	"context"

	"gorm.io/gorm"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type ReviewRepository struct {
	db *gorm.DB
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(&reviewModel{
		ID:          rv.ID,
		AuthorEmail: rv.AuthorEmail,
		Name:        rv.Name,
		Rating:      rv.Rating,
		Comment:     rv.Comment,
		CreatedAt:   rv.CreatedAt,
	}).Error
}

func (r *ReviewRepository) List(ctx context.Context, limit int) ([]*domain.Review, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []reviewModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toDomain())
	}
	return out, nil
}

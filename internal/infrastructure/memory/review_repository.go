package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
)

type ReviewRepository struct {
	mu      sync.RWMutex
	reviews []*domain.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{}
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domain.Review) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	c := *rv
	r.reviews = append(r.reviews, &c)
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, limit int) ([]*domain.Review, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*domain.Review, 0, len(r.reviews))
	for _, rv := range r.reviews {
		c := *rv
		out = append(out, &c)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

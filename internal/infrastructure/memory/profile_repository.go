package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[string]*domain.Profile),
	}
}

func (r *ProfileRepository) Upsert(ctx context.Context, email string, fields domain.Fields) (*domain.Profile, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p, exists := r.profiles[email]
	if !exists {
		p = &domain.Profile{Email: email, CreatedAt: now}
		r.profiles[email] = p
	}
	p.Merge(fields)
	p.UpdatedAt = now
	return p.Clone(), !exists, nil
}

func (r *ProfileRepository) Get(ctx context.Context, email string) (*domain.Profile, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*domain.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, email string, role domain.Role) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Role = role
	p.UpdatedAt = time.Now().UTC()
	return p.Clone(), nil
}

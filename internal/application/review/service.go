package review

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	reviewService = "review-service"

	useCaseAdd  = "review.add"
	useCaseList = "review.list"

	// HomeLimit caps the public review list.
	HomeLimit = 6
)

type Service struct {
	repo        domain.Repository
	guard       *auth.Guard
	idGenerator application.IDGenerator
	obs         *application.Instrument
}

func NewService(repo domain.Repository, guard *auth.Guard, idGen application.IDGenerator, tel observability.Observability) *Service {
	return &Service{
		repo:        repo,
		guard:       guard,
		idGenerator: idGen,
		obs:         application.NewInstrument(tel, reviewService),
	}
}

type AddReviewInput struct {
	Caller  string
	Claimed string
	Name    string
	Rating  int
	Comment string
}

func (s *Service) Add(ctx context.Context, in AddReviewInput) (_ *domain.Review, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseAdd, "AddReview")
	defer func() { run.End(err) }()

	if err := s.guard.RequireSelf(in.Caller, in.Claimed); err != nil {
		run.Deny("NOT_SELF")
		return nil, err
	}
	r, derr := domain.New(s.idGenerator.NewID(), in.Caller, in.Name, in.Rating, in.Comment)
	if derr != nil {
		run.Fail("REVIEW_INVALID")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, derr)
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		run.Fail("REPO_INSERT_FAILED")
		return nil, application.Upstream("review_store", err)
	}
	return r, nil
}

// List returns reviews newest first; limit <= 0 returns all of them.
func (s *Service) List(ctx context.Context, limit int) (_ []*domain.Review, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseList, "ListReviews")
	defer func() { run.End(err) }()

	reviews, err := s.repo.List(ctx, limit)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, application.Upstream("review_store", err)
	}
	run.With(observability.F("count", len(reviews)))
	return reviews, nil
}

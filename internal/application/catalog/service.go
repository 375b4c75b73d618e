package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	catalogService = "catalog-service"

	useCaseList        = "catalog.list"
	useCaseGet         = "catalog.get"
	useCaseCreate      = "catalog.create"
	useCaseUpdate      = "catalog.update"
	useCaseDelete      = "catalog.delete"
	useCaseSetQuantity = "inventory.set_quantity"
	useCaseDecrement   = "inventory.decrement"
	useCaseReserve     = "inventory.reserve"
	useCaseRestock     = "inventory.restock"
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrInsufficientStock = domain.ErrInsufficientStock
)

// Service is the product catalog together with its inventory adjuster.
type Service struct {
	repo        domain.Repository
	guard       *auth.Guard
	idGenerator application.IDGenerator
	publisher   domoutbox.Publisher
	obs         *application.Instrument
}

func NewService(
	repo domain.Repository,
	guard *auth.Guard,
	idGen application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	return &Service{
		repo:        repo,
		guard:       guard,
		idGenerator: idGen,
		publisher:   publisher,
		obs:         application.NewInstrument(tel, catalogService),
	}
}

// List is public and returns products newest first.
func (s *Service) List(ctx context.Context) (_ []*domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseList, "ListProducts")
	defer func() { run.End(err) }()

	products, err := s.repo.List(ctx)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(products)))
	return products, nil
}

func (s *Service) Get(ctx context.Context, caller, claimed, id string) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseGet, "GetProduct", attribute.String("product.id", id))
	defer func() { run.End(err) }()

	if err := s.guard.RequireSelf(caller, claimed); err != nil {
		run.Deny("NOT_SELF")
		return nil, err
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		run.Fail("PRODUCT_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return p, nil
}

type CreateProductInput struct {
	Caller   string
	Claimed  string
	Details  domain.Details
	Quantity int
}

// Create stores a new product owned by the caller.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseCreate, "CreateProduct")
	defer func() { run.End(err) }()

	if err := s.guard.RequireSelf(in.Caller, in.Claimed); err != nil {
		run.Deny("NOT_SELF")
		return nil, err
	}
	p, derr := domain.New(s.idGenerator.NewID(), in.Caller, in.Details, in.Quantity)
	if derr != nil {
		run.Fail("DOMAIN_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, derr)
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		run.Fail("REPO_INSERT_FAILED")
		return nil, wrapRepositoryError(err)
	}

	run.Span().SetAttributes(attribute.String("product.id", p.ID))
	run.With(observability.F("product_id", p.ID))
	return p, nil
}

// Update merges descriptive details. Quantity and owner are never changed here.
func (s *Service) Update(ctx context.Context, caller, id string, details domain.Details) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseUpdate, "UpdateProduct", attribute.String("product.id", id))
	defer func() { run.End(err) }()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		run.Fail("PRODUCT_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}
	if err := s.guard.RequireOwnerOrAdmin(ctx, caller, p.OwnerEmail); err != nil {
		s.deny(run, err)
		return nil, err
	}
	if err := p.Apply(details); err != nil {
		run.Fail("DETAILS_INVALID")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, err)
	}
	if err := s.repo.UpdateDetails(ctx, p); err != nil {
		run.Fail("REPO_UPDATE_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, caller, id string) (err error) {
	ctx, run := s.obs.Begin(ctx, useCaseDelete, "DeleteProduct", attribute.String("product.id", id))
	defer func() { run.End(err) }()

	if err := s.guard.RequireAdmin(ctx, caller); err != nil {
		s.deny(run, err)
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		run.Fail("REPO_DELETE_FAILED")
		return wrapRepositoryError(err)
	}
	return nil
}

// SetQuantity overwrites the available quantity. Owner or admin only.
func (s *Service) SetQuantity(ctx context.Context, caller, id string, quantity int) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseSetQuantity, "SetQuantity",
		attribute.String("product.id", id),
		attribute.Int("product.quantity", quantity),
	)
	defer func() { run.End(err) }()

	if quantity < 0 {
		run.Fail("QUANTITY_INVALID")
		return nil, application.Validation("quantity must not be negative")
	}
	if err := s.authorizeOwner(ctx, run, caller, id); err != nil {
		return nil, err
	}
	p, err := s.repo.SetQuantity(ctx, id, quantity)
	if err != nil {
		run.Fail("REPO_SET_QUANTITY_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.Publish(ctx, s.publisher, domain.NewStockChangedEvent(p, domain.StockReasonOverwrite))
	return p, nil
}

// Decrement atomically removes amount units when enough stock remains.
func (s *Service) Decrement(ctx context.Context, caller, id string, amount int) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseDecrement, "Decrement",
		attribute.String("product.id", id),
		attribute.Int("product.amount", amount),
	)
	defer func() { run.End(err) }()

	if amount <= 0 {
		run.Fail("AMOUNT_INVALID")
		return nil, application.Validation("amount must be greater than zero")
	}
	if err := s.authorizeOwner(ctx, run, caller, id); err != nil {
		return nil, err
	}
	p, err := s.repo.Decrement(ctx, id, amount)
	if err != nil {
		run.Fail(stockStatus(err))
		return nil, wrapRepositoryError(err)
	}
	run.Publish(ctx, s.publisher, domain.NewStockChangedEvent(p, domain.StockReasonDecrement))
	return p, nil
}

// Reserve takes amount units for an order. Buyers are not owners, so the
// caller is not checked; order placement is the only user.
func (s *Service) Reserve(ctx context.Context, id string, amount int) (_ *domain.Product, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseReserve, "Reserve",
		attribute.String("product.id", id),
		attribute.Int("product.amount", amount),
	)
	defer func() { run.End(err) }()

	if amount <= 0 {
		run.Fail("AMOUNT_INVALID")
		return nil, application.Validation("amount must be greater than zero")
	}
	p, err := s.repo.Decrement(ctx, id, amount)
	if err != nil {
		run.Fail(stockStatus(err))
		return nil, wrapRepositoryError(err)
	}
	run.Publish(ctx, s.publisher, domain.NewStockChangedEvent(p, domain.StockReasonReserved))
	return p, nil
}

// Restock returns amount units, compensating a reservation.
func (s *Service) Restock(ctx context.Context, id string, amount int) (err error) {
	ctx, run := s.obs.Begin(ctx, useCaseRestock, "Restock",
		attribute.String("product.id", id),
		attribute.Int("product.amount", amount),
	)
	defer func() { run.End(err) }()

	if amount <= 0 {
		run.Fail("AMOUNT_INVALID")
		return application.Validation("amount must be greater than zero")
	}
	p, err := s.repo.Increment(ctx, id, amount)
	if err != nil {
		run.Fail("REPO_INCREMENT_FAILED")
		return wrapRepositoryError(err)
	}
	run.Publish(ctx, s.publisher, domain.NewStockChangedEvent(p, domain.StockReasonReleased))
	return nil
}

func (s *Service) authorizeOwner(ctx context.Context, run *application.Run, caller, id string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		run.Fail("PRODUCT_LOAD_FAILED")
		return wrapRepositoryError(err)
	}
	if err := s.guard.RequireOwnerOrAdmin(ctx, caller, p.OwnerEmail); err != nil {
		s.deny(run, err)
		return err
	}
	return nil
}

func (s *Service) deny(run *application.Run, err error) {
	if errors.Is(err, domauth.ErrForbidden) {
		run.Deny("NOT_OWNER_OR_ADMIN")
		return
	}
	run.Fail("ROLE_LOOKUP_FAILED")
}

func stockStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	default:
		return "REPO_DECREMENT_FAILED"
	}
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return ErrInsufficientStock
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidAmount):
		return fmt.Errorf("%w: %w", application.ErrValidation, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return application.Upstream("product_store", err)
	}
}

package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	orderService = "order-service"

	useCaseCreate        = "order.create"
	useCaseGet           = "order.get"
	useCaseList          = "order.list"
	useCasePaymentIntent = "order.payment_intent"
	useCaseRecordPayment = "order.record_payment"
	useCaseMarkShipped   = "order.mark_shipped"
	useCaseCancel        = "order.cancel"

	DefaultCurrency = "usd"
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrInvalidTransition = domain.ErrInvalidTransition
)

type Service struct {
	orders      domain.Repository
	payments    dompayment.Repository
	stock       StockPort
	gateway     dompayment.Gateway
	guard       *auth.Guard
	idGenerator application.IDGenerator
	publisher   domoutbox.Publisher
	currency    string
	obs         *application.Instrument
}

type Option func(*Service)

// WithGateway enables capture verification and payment intents.
func WithGateway(g dompayment.Gateway) Option {
	return func(s *Service) { s.gateway = g }
}

func WithCurrency(currency string) Option {
	return func(s *Service) {
		if c := strings.ToLower(strings.TrimSpace(currency)); c != "" {
			s.currency = c
		}
	}
}

func WithPublisher(p domoutbox.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func NewService(
	orders domain.Repository,
	payments dompayment.Repository,
	stock StockPort,
	guard *auth.Guard,
	idGen application.IDGenerator,
	tel observability.Observability,
	opts ...Option,
) *Service {
	s := &Service{
		orders:      orders,
		payments:    payments,
		stock:       stock,
		guard:       guard,
		idGenerator: idGen,
		currency:    DefaultCurrency,
		obs:         application.NewInstrument(tel, orderService),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateOrderInput struct {
	Caller    string
	ProductID string
	Quantity  int
	Contact   domain.Contact
}

// Create reserves stock and stores a new unpaid order for the caller. No
// order is written when the reservation fails, and a failed write gives the
// reserved units back.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (_ *domain.Order, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseCreate, "CreateOrder",
		attribute.String("order.buyer", in.Caller),
		attribute.String("order.product_id", in.ProductID),
		attribute.Int("order.quantity", in.Quantity),
	)
	defer func() { run.End(err) }()

	if in.Caller == "" {
		run.Deny("IDENTITY_REQUIRED")
		return nil, domauth.ErrUnauthorized
	}
	if strings.TrimSpace(in.ProductID) == "" {
		run.Fail("PRODUCT_ID_REQUIRED")
		return nil, application.Validation("product id is required")
	}
	if in.Quantity <= 0 {
		run.Fail("QUANTITY_INVALID")
		return nil, application.Validation("quantity must be greater than zero")
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	product, err := s.stock.Reserve(ctx, in.ProductID, in.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domproduct.ErrInsufficientStock):
			run.Fail("INSUFFICIENT_STOCK")
		case errors.Is(err, domproduct.ErrNotFound):
			run.Fail("PRODUCT_NOT_FOUND")
		default:
			run.Fail("STOCK_RESERVE_FAILED")
		}
		return nil, err
	}

	entity, derr := domain.New(
		s.idGenerator.NewID(),
		product.ID,
		product.Name,
		in.Caller,
		in.Contact,
		in.Quantity,
		product.Price*int64(in.Quantity),
	)
	if derr == nil {
		derr = s.orders.Insert(ctx, entity)
	}
	if derr != nil {
		run.Fail("ORDER_INSERT_FAILED")
		s.release(ctx, run, product.ID, in.Quantity)
		if errors.Is(derr, domain.ErrInvalidQuantity) || errors.Is(derr, domain.ErrInvalidAmount) {
			return nil, fmt.Errorf("%w: %w", application.ErrValidation, derr)
		}
		return nil, wrapRepositoryError(derr)
	}

	run.Span().SetAttributes(attribute.String("order.id", entity.ID))
	run.With(observability.F("order_id", entity.ID), observability.F("amount", entity.Amount))
	run.Publish(ctx, s.publisher, domain.NewCreatedEvent(entity))
	return entity, nil
}

func (s *Service) Get(ctx context.Context, caller, id string) (_ *domain.Order, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseGet, "GetOrder", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	return s.loadForParty(ctx, run, caller, id)
}

// List shows a buyer their own orders and an admin every order.
func (s *Service) List(ctx context.Context, caller string) (_ []*domain.Order, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseList, "ListOrders")
	defer func() { run.End(err) }()

	if caller == "" {
		run.Deny("IDENTITY_REQUIRED")
		return nil, domauth.ErrUnauthorized
	}
	isAdmin, err := s.guard.IsAdmin(ctx, caller)
	if err != nil {
		run.Fail("ROLE_LOOKUP_FAILED")
		return nil, err
	}
	filter := domain.Filter{BuyerEmail: caller}
	if isAdmin {
		filter.BuyerEmail = ""
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	run.With(observability.F("count", len(orders)), observability.F("admin", isAdmin))
	return orders, nil
}

// CreatePaymentIntent asks the gateway for a capture handle for an unpaid
// order. The amount always comes from the stored order.
func (s *Service) CreatePaymentIntent(ctx context.Context, caller, id string) (_ dompayment.Intent, err error) {
	ctx, run := s.obs.Begin(ctx, useCasePaymentIntent, "CreatePaymentIntent", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	if s.gateway == nil {
		run.Fail("GATEWAY_NOT_CONFIGURED")
		return dompayment.Intent{}, application.Upstream(application.PeerPaymentGateway, errors.New("not configured"))
	}
	o, err := s.loadForParty(ctx, run, caller, id)
	if err != nil {
		return dompayment.Intent{}, err
	}
	if o.Paid {
		run.Fail("ORDER_ALREADY_PAID")
		return dompayment.Intent{}, fmt.Errorf("%w: order %s is already paid", ErrInvalidTransition, o.ID)
	}

	var intent dompayment.Intent
	err = s.obs.External(ctx, s.gateway.Name(), "create_intent", func(ctx context.Context) error {
		var gerr error
		intent, gerr = s.gateway.CreateIntent(ctx, o.Amount, s.currency)
		return gerr
	})
	if err != nil {
		run.Fail("GATEWAY_CREATE_INTENT_FAILED")
		return dompayment.Intent{}, application.Upstream(application.PeerPaymentGateway, err)
	}
	run.With(observability.F("capture_handle", intent.CaptureHandle))
	return intent, nil
}

// RecordPayment settles an unpaid order with a capture handle. The payment
// record and the paid flag are written together; a second call for the same
// order fails with ErrInvalidTransition and writes nothing.
func (s *Service) RecordPayment(ctx context.Context, caller, id, handle string) (_ *domain.Order, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseRecordPayment, "RecordPayment", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	handle = strings.TrimSpace(handle)
	if handle == "" {
		run.Fail("CAPTURE_HANDLE_REQUIRED")
		return nil, application.Validation("capture handle is required")
	}
	o, err := s.loadForParty(ctx, run, caller, id)
	if err != nil {
		return nil, err
	}

	next := o.Clone()
	if err := next.RecordPayment(handle); err != nil {
		run.Fail("ORDER_ALREADY_PAID")
		return nil, err
	}

	if s.gateway != nil {
		var capture dompayment.Capture
		lerr := s.obs.External(ctx, s.gateway.Name(), "lookup", func(ctx context.Context) error {
			var gerr error
			capture, gerr = s.gateway.Lookup(ctx, handle)
			return gerr
		})
		if lerr != nil {
			run.Fail("GATEWAY_LOOKUP_FAILED")
			return nil, application.Upstream(application.PeerPaymentGateway, lerr)
		}
		if verr := capture.Verify(o.Amount, s.currency); verr != nil {
			run.Fail("CAPTURE_REJECTED")
			run.With(observability.F("capture_amount", capture.Amount), observability.F("capture_succeeded", capture.Succeeded))
			return nil, verr
		}
	}

	p, err := dompayment.New(handle, o.ID, o.BuyerEmail, o.Amount, s.currency)
	if err != nil {
		run.Fail("PAYMENT_CONSTRUCTION_FAILED")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}
	if err := s.orders.SettlePayment(ctx, next, p); err != nil {
		run.Fail(settleStatus(err))
		return nil, wrapRepositoryError(err)
	}

	run.With(observability.F("transaction_id", handle))
	run.Publish(ctx, s.publisher, domain.NewPaidEvent(next))
	return next, nil
}

// MarkShipped flags a paid order as delivered. Admin only.
func (s *Service) MarkShipped(ctx context.Context, caller, id string) (_ *domain.Order, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseMarkShipped, "MarkShipped", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	if err := s.guard.RequireAdmin(ctx, caller); err != nil {
		denyOrFail(run, err)
		return nil, err
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		run.Fail("ORDER_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}

	from := o.Status()
	next := o.Clone()
	if err := next.MarkShipped(); err != nil {
		run.Fail("STATE_TRANSITION_FAILED")
		run.With(observability.F("from_status", string(from)))
		return nil, err
	}
	if err := s.orders.CompareAndUpdate(ctx, next, from); err != nil {
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, wrapRepositoryError(err)
	}

	run.Publish(ctx, s.publisher, domain.NewShippedEvent(next))
	return next, nil
}

// Cancel removes an unpaid order and returns its quantity to stock.
func (s *Service) Cancel(ctx context.Context, caller, id string) (err error) {
	ctx, run := s.obs.Begin(ctx, useCaseCancel, "CancelOrder", attribute.String("order.id", id))
	defer func() { run.End(err) }()

	o, err := s.loadForParty(ctx, run, caller, id)
	if err != nil {
		return err
	}
	if err := o.Cancel(); err != nil {
		run.Fail("ORDER_ALREADY_PAID")
		return err
	}
	if err := s.orders.CompareAndDelete(ctx, o.ID, domain.StatusCreated); err != nil {
		run.Fail("ORDER_DELETE_FAILED")
		return wrapRepositoryError(err)
	}

	s.release(ctx, run, o.ProductID, o.Quantity)
	run.Publish(ctx, s.publisher, domain.NewCancelledEvent(o))
	return nil
}

// loadForParty returns the order if the caller is its buyer or an admin.
func (s *Service) loadForParty(ctx context.Context, run *application.Run, caller, id string) (*domain.Order, error) {
	if caller == "" {
		run.Deny("IDENTITY_REQUIRED")
		return nil, domauth.ErrUnauthorized
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		run.Fail("ORDER_LOAD_FAILED")
		return nil, wrapRepositoryError(err)
	}
	if err := s.guard.RequireOwnerOrAdmin(ctx, caller, o.BuyerEmail); err != nil {
		denyOrFail(run, err)
		return nil, err
	}
	return o, nil
}

// release gives reserved units back. A failure here leaves stock low but
// never undoes the order change it follows, so it is only logged.
func (s *Service) release(ctx context.Context, run *application.Run, productID string, quantity int) {
	if err := s.stock.Restock(context.WithoutCancel(ctx), productID, quantity); err != nil {
		run.Note("RESTOCK_FAILED")
		run.Logger().Error("restock_failed",
			observability.F("product_id", productID),
			observability.F("quantity", quantity),
			observability.F("error", err.Error()),
		)
	}
}

func denyOrFail(run *application.Run, err error) {
	if errors.Is(err, domauth.ErrForbidden) {
		run.Deny("NOT_BUYER_OR_ADMIN")
		return
	}
	run.Fail("ROLE_LOOKUP_FAILED")
}

func settleStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "ORDER_ALREADY_PAID"
	case errors.Is(err, dompayment.ErrDuplicate):
		return "PAYMENT_DUPLICATE"
	default:
		return "SETTLE_FAILED"
	}
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return ErrInvalidTransition
	case errors.Is(err, dompayment.ErrDuplicate):
		return dompayment.ErrDuplicate
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return application.Upstream("order_store", err)
	}
}

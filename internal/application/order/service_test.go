package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/catalog"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/jwttoken"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

type fixedIDs struct {
	ids []string
	n   atomic.Int32
}

func (f *fixedIDs) NewID() string {
	i := int(f.n.Add(1)) - 1
	if i < len(f.ids) {
		return f.ids[i]
	}
	return "X" + string(rune('0'+i))
}

type eventLog struct {
	mu    sync.Mutex
	names []string
}

func (l *eventLog) Publish(_ context.Context, e domoutbox.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, e.EventName())
	return nil
}

func (l *eventLog) has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, n := range l.names {
		if n == name {
			return true
		}
	}
	return false
}

type fakeGateway struct {
	captures map[string]dompayment.Capture
	err      error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string) (dompayment.Intent, error) {
	if g.err != nil {
		return dompayment.Intent{}, g.err
	}
	return dompayment.Intent{CaptureHandle: "pi_new", ClientSecret: "secret"}, nil
}

func (g *fakeGateway) Lookup(_ context.Context, handle string) (dompayment.Capture, error) {
	if g.err != nil {
		return dompayment.Capture{}, g.err
	}
	return g.captures[handle], nil
}

type fixture struct {
	svc      *Service
	orders   *memory.OrderRepository
	products *memory.ProductRepository
	catalog  *catalog.Service
	guard    *auth.Guard
	events   *eventLog
}

const (
	buyer = "b@x.com"
	admin = "admin@x.com"
)

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	ctx := context.Background()

	tokens, err := jwttoken.New("test-secret")
	require.NoError(t, err)
	profiles := memory.NewProfileRepository()
	for _, e := range []string{buyer, admin, "other@x.com", "seller@x.com"} {
		_, _, err := profiles.Upsert(ctx, e, identity.Fields{})
		require.NoError(t, err)
	}
	_, err = profiles.SetRole(ctx, admin, identity.RoleAdmin)
	require.NoError(t, err)
	guard := auth.NewGuard(tokens, profiles)

	products := memory.NewProductRepository()
	price := int64(1500)
	p, err := domproduct.New("P1", "seller@x.com", domproduct.Details{Name: "drill", Price: &price}, 5)
	require.NoError(t, err)
	require.NoError(t, products.Insert(ctx, p))

	events := &eventLog{}
	cat := catalog.NewService(products, guard, &fixedIDs{}, events, observability.Nop())
	orders := memory.NewOrderRepository()

	opts = append([]Option{WithPublisher(events)}, opts...)
	svc := NewService(orders, orders.Payments(), cat, guard, &fixedIDs{ids: []string{"O1", "O2", "O3"}}, observability.Nop(), opts...)
	return fixture{svc: svc, orders: orders, products: products, catalog: cat, guard: guard, events: events}
}

func (f fixture) place(t *testing.T, qty int) *domain.Order {
	t.Helper()
	o, err := f.svc.Create(context.Background(), CreateOrderInput{
		Caller:    buyer,
		ProductID: "P1",
		Quantity:  qty,
		Contact:   domain.Contact{BuyerName: "B", Phone: "1", Address: "street"},
	})
	require.NoError(t, err)
	return o
}

func (f fixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), "P1")
	require.NoError(t, err)
	return p.AvailableQuantity
}

func TestCreateOrderReservesStock(t *testing.T) {
	f := newFixture(t)

	o := f.place(t, 2)
	assert.Equal(t, "O1", o.ID)
	assert.Equal(t, domain.StatusCreated, o.Status())
	assert.False(t, o.Paid)
	assert.False(t, o.Delivery)
	assert.Equal(t, int64(3000), o.Amount)
	assert.Equal(t, "drill", o.ProductName)
	assert.Equal(t, 3, f.stock(t))
	assert.True(t, f.events.has("order.created"))
}

func TestCreateOrderInsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateOrderInput{Caller: buyer, ProductID: "P1", Quantity: 6})
	assert.ErrorIs(t, err, domproduct.ErrInsufficientStock)
	assert.Equal(t, 5, f.stock(t))

	all, err := f.orders.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = f.svc.Create(ctx, CreateOrderInput{Caller: buyer, ProductID: "P1", Quantity: 0})
	assert.ErrorIs(t, err, application.ErrValidation)

	_, err = f.svc.Create(ctx, CreateOrderInput{Caller: buyer, ProductID: "nope", Quantity: 1})
	assert.ErrorIs(t, err, domproduct.ErrNotFound)
}

type failingInsert struct {
	*memory.OrderRepository
}

func (failingInsert) Insert(context.Context, *domain.Order) error {
	return errors.New("disk full")
}

func TestCreateOrderInsertFailureRestocks(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingInsert{f.orders}, f.orders.Payments(), f.catalog, f.guard, &fixedIDs{}, observability.Nop())

	_, err := svc.Create(context.Background(), CreateOrderInput{Caller: buyer, ProductID: "P1", Quantity: 2})
	assert.ErrorIs(t, err, application.ErrUpstream)
	assert.Equal(t, 5, f.stock(t))
}

func TestRecordPaymentAtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 1)

	o, err := f.svc.RecordPayment(ctx, buyer, "O1", "pi_1")
	require.NoError(t, err)
	assert.True(t, o.Paid)
	assert.Equal(t, "pi_1", o.TransactionID)

	_, err = f.svc.RecordPayment(ctx, buyer, "O1", "pi_2")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	payments, err := f.orders.Payments().List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_1", payments[0].TransactionID)
	assert.True(t, f.events.has("order.paid"))
}

func TestRecordPaymentConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 1)

	var ok, conflict atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.RecordPayment(ctx, buyer, "O1", "pi_"+string(rune('a'+i)))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrInvalidTransition):
				conflict.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 7, conflict.Load())
	payments, err := f.orders.Payments().List(ctx)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestRecordPaymentAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 1)

	_, err := f.svc.RecordPayment(ctx, "other@x.com", "O1", "pi_1")
	assert.ErrorIs(t, err, domauth.ErrForbidden)

	_, err = f.svc.RecordPayment(ctx, "", "O1", "pi_1")
	assert.ErrorIs(t, err, domauth.ErrUnauthorized)

	_, err = f.svc.RecordPayment(ctx, admin, "O1", "pi_1")
	assert.NoError(t, err)
}

func TestRecordPaymentVerifiesCapture(t *testing.T) {
	gw := &fakeGateway{captures: map[string]dompayment.Capture{
		"pi_short": {Handle: "pi_short", Amount: 100, Currency: "usd", Succeeded: true},
		"pi_fail":  {Handle: "pi_fail", Amount: 1500, Currency: "usd"},
		"pi_ok":    {Handle: "pi_ok", Amount: 1500, Currency: "usd", Succeeded: true},
	}}
	f := newFixture(t, WithGateway(gw))
	ctx := context.Background()
	f.place(t, 1)

	_, err := f.svc.RecordPayment(ctx, buyer, "O1", "pi_short")
	assert.ErrorIs(t, err, dompayment.ErrCaptureRejected)
	_, err = f.svc.RecordPayment(ctx, buyer, "O1", "pi_fail")
	assert.ErrorIs(t, err, dompayment.ErrCaptureRejected)

	o, err := f.svc.RecordPayment(ctx, buyer, "O1", "pi_ok")
	require.NoError(t, err)
	assert.True(t, o.Paid)

	gw.err = errors.New("timeout")
	f.place(t, 1)
	_, err = f.svc.RecordPayment(ctx, buyer, "O2", "pi_ok")
	assert.ErrorIs(t, err, application.ErrUpstream)
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t, WithGateway(&fakeGateway{captures: map[string]dompayment.Capture{
		"pi_x": {Handle: "pi_x", Amount: 1500, Currency: "usd", Succeeded: true},
	}}))
	ctx := context.Background()
	f.place(t, 1)

	intent, err := f.svc.CreatePaymentIntent(ctx, buyer, "O1")
	require.NoError(t, err)
	assert.Equal(t, "pi_new", intent.CaptureHandle)

	_, err = f.svc.CreatePaymentIntent(ctx, "other@x.com", "O1")
	assert.ErrorIs(t, err, domauth.ErrForbidden)

	_, err = f.svc.RecordPayment(ctx, buyer, "O1", "pi_x")
	require.NoError(t, err)
	_, err = f.svc.CreatePaymentIntent(ctx, buyer, "O1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	noGateway := newFixture(t)
	noGateway.place(t, 1)
	_, err = noGateway.svc.CreatePaymentIntent(ctx, buyer, "O1")
	assert.ErrorIs(t, err, application.ErrUpstream)
}

func TestMarkShipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 1)

	_, err := f.svc.MarkShipped(ctx, admin, "O1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.RecordPayment(ctx, buyer, "O1", "pi_1")
	require.NoError(t, err)

	_, err = f.svc.MarkShipped(ctx, buyer, "O1")
	assert.ErrorIs(t, err, domauth.ErrForbidden)

	o, err := f.svc.MarkShipped(ctx, admin, "O1")
	require.NoError(t, err)
	assert.True(t, o.Delivery)
	assert.Equal(t, domain.StatusShipped, o.Status())

	_, err = f.svc.MarkShipped(ctx, admin, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 2)
	f.place(t, 1)
	assert.Equal(t, 2, f.stock(t))

	assert.ErrorIs(t, f.svc.Cancel(ctx, "other@x.com", "O1"), domauth.ErrForbidden)

	require.NoError(t, f.svc.Cancel(ctx, buyer, "O1"))
	_, err := f.svc.Get(ctx, buyer, "O1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 4, f.stock(t))
	assert.True(t, f.events.has("order.cancelled"))

	_, err = f.svc.RecordPayment(ctx, buyer, "O2", "pi_1")
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Cancel(ctx, buyer, "O2"), ErrInvalidTransition)

	o, err := f.svc.Get(ctx, buyer, "O2")
	require.NoError(t, err)
	assert.True(t, o.Paid)
	assert.Equal(t, 4, f.stock(t))
}

func TestCreatePayShipScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o := f.place(t, 1)
	assert.Equal(t, "O1", o.ID)

	o, err := f.svc.RecordPayment(ctx, buyer, "O1", "pi_123")
	require.NoError(t, err)
	assert.True(t, o.Paid)

	o, err = f.svc.MarkShipped(ctx, admin, "O1")
	require.NoError(t, err)
	assert.True(t, o.Delivery)

	_, err = f.svc.MarkShipped(ctx, admin, "O1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := f.svc.Get(ctx, admin, "O1")
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.True(t, stored.Delivery)
	assert.Equal(t, "pi_123", stored.TransactionID)
}

func TestListOrdersVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, 1)
	_, err := f.svc.Create(ctx, CreateOrderInput{Caller: "other@x.com", ProductID: "P1", Quantity: 1})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, buyer, mine[0].BuyerEmail)

	all, err := f.svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.Get(ctx, "other@x.com", "O1")
	assert.ErrorIs(t, err, domauth.ErrForbidden)
}

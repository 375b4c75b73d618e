package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/catalog"
	appidentity "github.com/Zhima-Mochi/minishop-marketplace/internal/application/identity"
	apporder "github.com/Zhima-Mochi/minishop-marketplace/internal/application/order"
	appreview "github.com/Zhima-Mochi/minishop-marketplace/internal/application/review"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/config"
	domidentity "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	domreview "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/review"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/jwttoken"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/mongostore"
	infraobs "github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/payment/gateway"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/pgstore"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/minishop-marketplace/internal/presentation/http"
)

// runtime holds everything a command needs plus the hooks that release it,
// run in reverse order by close.
type runtime struct {
	cfg    config.App
	logger zaplogger.Logger
	system observability.Logger
	tel    observability.Observability
	bus    *outbox.Bus
	svc    httppresentation.Services

	closers []func(context.Context) error
}

type stores struct {
	profiles domidentity.Repository
	products domproduct.Repository
	orders   domorder.Repository
	payments dompayment.Repository
	reviews  domreview.Repository
	close    func(context.Context) error
}

func newRuntime(ctx context.Context, cfg config.App) (_ *runtime, err error) {
	logger, err := zaplogger.New(cfg.ServiceName, cfg.Env, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		system: logger.With(
			observability.F("trace_id", logging.SystemTraceID),
			observability.F("span_id", logging.SystemSpanID),
		),
	}
	defer func() {
		if err != nil {
			rt.close(context.Background())
		}
	}()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, shutdownTracer)

	counters, histograms := prometrics.New(prometheus.DefaultRegisterer, "", "").
		Instruments(observability.CounterDescs, observability.HistogramDescs)
	rt.tel = infraobs.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, st.close)

	tokens, err := jwttoken.New(cfg.TokenSecret, jwttoken.WithTTL(cfg.TokenTTL))
	if err != nil {
		return nil, err
	}
	payGateway, err := newGateway(cfg)
	if err != nil {
		return nil, err
	}

	rt.bus = outbox.NewBus(logger)
	ids := id.NewUUIDGenerator()
	guard := auth.NewGuard(tokens, st.profiles)
	catalogSvc := catalog.NewService(st.products, guard, ids, rt.bus, rt.tel)

	rt.svc = httppresentation.Services{
		Guard:    guard,
		Identity: appidentity.NewService(st.profiles, guard, tokens, rt.tel),
		Catalog:  catalogSvc,
		Orders: apporder.NewService(st.orders, st.payments, catalogSvc, guard, ids, rt.tel,
			apporder.WithGateway(payGateway),
			apporder.WithCurrency(cfg.PaymentCurrency),
			apporder.WithPublisher(rt.bus),
		),
		Reconcile: apporder.NewReconcileUseCase(st.orders, st.payments, guard, rt.tel),
		Reviews:   appreview.NewService(st.reviews, guard, ids, rt.tel),
	}

	rt.system.Info("runtime_ready",
		observability.F("store", cfg.StoreDriver),
		observability.F("payment_provider", payGateway.Name()),
		observability.F("tracing", cfg.OTLPEndpoint != ""),
	)
	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			rt.system.Warn("shutdown_step_failed", observability.F("error", err.Error()))
		}
	}
	_ = rt.logger.Sync()
}

func openStores(ctx context.Context, cfg config.App) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		orders := memory.NewOrderRepository()
		return &stores{
			profiles: memory.NewProfileRepository(),
			products: memory.NewProductRepository(),
			orders:   orders,
			payments: orders.Payments(),
			reviews:  memory.NewReviewRepository(),
			close:    func(context.Context) error { return nil },
		}, nil
	case config.StoreMongo:
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &stores{
			profiles: s.Profiles(),
			products: s.Products(),
			orders:   s.Orders(),
			payments: s.Payments(),
			reviews:  s.Reviews(),
			close:    s.Close,
		}, nil
	case config.StorePostgres:
		s, err := pgstore.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &stores{
			profiles: s.Profiles(),
			products: s.Products(),
			orders:   s.Orders(),
			payments: s.Payments(),
			reviews:  s.Reviews(),
			close:    func(context.Context) error { return s.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newGateway(cfg config.App) (dompayment.Gateway, error) {
	switch cfg.PaymentProvider {
	case config.PaymentSimulated:
		return gateway.NewSimulated(cfg.SimulatedSuccessRate), nil
	case config.PaymentStripe:
		return gateway.NewStripe(cfg.StripeSecretKey)
	case config.PaymentOmise:
		return gateway.NewOmise(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	default:
		return nil, errors.New("unknown payment provider " + cfg.PaymentProvider)
	}
}

package httppresentation

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/catalog"
	appidentity "github.com/Zhima-Mochi/minishop-marketplace/internal/application/identity"
	apporder "github.com/Zhima-Mochi/minishop-marketplace/internal/application/order"
	appreview "github.com/Zhima-Mochi/minishop-marketplace/internal/application/review"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability/logctx"
)

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

// Services are the use cases the router exposes.
type Services struct {
	Guard     *auth.Guard
	Identity  *appidentity.Service
	Catalog   *catalog.Service
	Orders    *apporder.Service
	Reconcile *apporder.ReconcileUseCase
	Reviews   *appreview.Service
}

type Handler struct {
	svc     Services
	log     observability.Logger
	tel     observability.Observability
	metrics http.Handler
	limiter *ipLimiter
	// trustProxy lets X-Forwarded-For / X-Real-IP replace RemoteAddr.
	trustProxy bool
}

type Option func(*Handler)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) { hd.metrics = h }
}

// WithIssueRateLimit limits identity issuance per client IP.
func WithIssueRateLimit(rps float64, burst int) Option {
	return func(hd *Handler) {
		if rps > 0 && burst > 0 {
			hd.limiter = newIPLimiter(rps, burst)
		}
	}
}

// WithTrustedProxyHeaders takes the client IP from proxy headers. Only safe
// when a reverse proxy in front of the server overwrites them.
func WithTrustedProxyHeaders(trust bool) Option {
	return func(hd *Handler) { hd.trustProxy = trust }
}

func NewHandler(svc Services, logger observability.Logger, tel observability.Observability, opts ...Option) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = tel.Logger()
	}
	h := &Handler{
		svc: svc,
		log: baseLogger.With(observability.F("component", componentHTTPHandler)),
		tel: tel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires every route. Middlewares run Trace → request logger and
// metrics → access log → route handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	if h.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		h.withTrace,
		ObservabilityMiddleware(
			h.log,
			func(r *http.Request) string { return r.Header.Get(headerRequestID) },
			h.tel,
		),
		h.withAccessLog,
	)

	// public
	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}
	r.With(h.rateLimit).Put("/user/{email}", h.handleUpsertProfile)
	r.Get("/product", h.handleListProducts)
	r.Get("/review", h.handleListHomeReviews)

	// identity required
	r.Group(func(r chi.Router) {
		r.Use(h.requireIdentity)

		r.Get("/user", h.handleListProfiles)
		r.Put("/user/admin/{email}", h.handleGrantAdmin)
		r.Put("/user/admin/{email}/revoke", h.handleRevokeAdmin)
		r.Get("/admin/{email}", h.handleIsAdmin)
		r.Post("/admin/reconcile", h.handleReconcile)

		r.Post("/product", h.handleCreateProduct)
		r.Get("/product/{id}", h.handleGetProduct)
		r.Put("/product/{id}", h.handleUpdateProduct)
		r.Delete("/product/{id}", h.handleDeleteProduct)
		r.Put("/product/{id}/quantity", h.handleSetQuantity)
		r.Post("/product/{id}/decrement", h.handleDecrement)

		r.Post("/order", h.handleCreateOrder)
		r.Get("/order", h.handleListOrders)
		r.Get("/order/{id}", h.handleGetOrder)
		r.Delete("/order/{id}", h.handleCancelOrder)
		r.Post("/order/{id}/payment-intent", h.handleCreatePaymentIntent)
		r.Patch("/order/{id}/payment", h.handleRecordPayment)
		r.Patch("/order/{id}/shipping", h.handleMarkShipped)

		r.Post("/review", h.handleAddReview)
		r.Get("/review/all", h.handleListAllReviews)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routePattern(r)),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C
// propagation. The span is renamed to the matched route once routing is done.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracer := otel.Tracer("minishop.http")
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(parentCtx,
			r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctx)
		next.ServeHTTP(lrw, r)

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", lrw.status),
		)
	})
}

// routePattern returns the matched chi template, which keeps metric labels
// low-cardinality.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unknown"
	}
	if p := strings.TrimSpace(rctx.RoutePattern()); p != "" {
		return p
	}
	return "unknown"
}

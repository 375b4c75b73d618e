package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/relay"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/config"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/mq"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minishop-marketplace/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-marketplace/internal/presentation/worker"
)

// relayedEvents are forwarded to the broker when AMQP_URL is set.
var relayedEvents = []string{
	domorder.CreatedEvent{}.EventName(),
	domorder.PaidEvent{}.EventName(),
	domorder.ShippedEvent{}.EventName(),
	domorder.CancelledEvent{}.EventName(),
	domproduct.StockChangedEvent{}.EventName(),
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the event relay",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func runServe(parent context.Context, cfg config.App) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			rt.close(context.Background())
			return err
		}
		rt.closers = append(rt.closers, func(context.Context) error { return publisher.Close() })
		workerpresentation.NewRelayWorker(rt.bus, relay.NewForwardUseCase(publisher, rt.tel), rt.tel, relayedEvents...).Start()
		rt.system.Info("event_relay_enabled", observability.F("exchange", cfg.AMQPExchange))
	}

	rt.bus.Start(ctx)

	handler := httppresentation.NewHandler(rt.svc, rt.logger, rt.tel,
		httppresentation.WithMetricsHandler(promhttp.Handler()),
		httppresentation.WithIssueRateLimit(cfg.IssueRateRPS, cfg.IssueRateBurst),
		httppresentation.WithTrustedProxyHeaders(cfg.TrustProxyHeaders),
	)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		rt.system.Info("http_server_start", observability.F("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if err != nil {
			rt.system.Error("http_server_error", observability.F("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if serr := server.Shutdown(shutdownCtx); serr != nil {
		rt.system.Error("http_server_shutdown_error", observability.F("error", serr.Error()))
	} else {
		rt.system.Info("http_server_stopped")
	}
	// The bus drains before the publisher and stores close.
	rt.bus.Stop(shutdownCtx)
	rt.close(shutdownCtx)
	return err
}

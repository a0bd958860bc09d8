package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/api"
	"github.com/vladislavdragonenkov/bookshop/internal/health"
	"github.com/vladislavdragonenkov/bookshop/internal/metrics"
	"github.com/vladislavdragonenkov/bookshop/internal/service/cart"
	"github.com/vladislavdragonenkov/bookshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/bookshop/internal/service/checkout"
)

const httpShutdownTimeout = 5 * time.Second

// buildAPIHandler собирает сервисы и HTTP-маршрутизатор поверх репозиториев.
func buildAPIHandler(deps *Dependencies, healthHandler *health.Handler, checkoutMetrics *metrics.CheckoutMetrics) http.Handler {
	logger := deps.Logger

	cartSvc := cart.New(deps.Carts, deps.Books, deps.Users, logger.WithField("component", "cart")).
		WithMetrics(checkoutMetrics)
	catalogSvc := catalog.New(deps.Books, deps.Categories, logger.WithField("component", "catalog"))
	checkoutSvc := checkout.New(
		deps.Orders,
		deps.Carts,
		deps.Books,
		deps.Users,
		deps.Outbox,
		deps.Timeline,
		logger.WithField("component", "checkout"),
	).WithMetrics(checkoutMetrics)

	return api.NewRouter(api.RouterConfig{
		Cart:    api.NewCartHandler(cartSvc),
		Catalog: api.NewCatalogHandler(catalogSvc),
		Orders:  api.NewOrderHandler(checkoutSvc, deps.Idempotency, logger.WithField("component", "orders_api")),
		Logger:  logger.WithField("component", "http"),
		Health:  health.LivenessHandler,
		Ready:   healthHandler.ReadinessHandler,
	})
}

// newAPIServer возвращает HTTP-сервер публичного API.
func newAPIServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// newMetricsServer возвращает сервер служебных endpoint'ов:
// /metrics, /healthz, /readyz, /livez.
func newMetricsServer(addr string, healthHandler *health.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)

	return &http.Server{Addr: addr, Handler: mux}
}

// serveHTTP блокирует до остановки сервера; остановка по ctx считается штатной.
func serveHTTP(ctx context.Context, srv *http.Server, name string, logger *log.Entry) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Infof("%s server listening", name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warnf("%s server shutdown with error", name)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

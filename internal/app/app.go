package app

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/bookshop/internal/health"
	"github.com/vladislavdragonenkov/bookshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookshop/internal/metrics"
	"github.com/vladislavdragonenkov/bookshop/internal/service/idempotency"
	"github.com/vladislavdragonenkov/bookshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/bookshop/internal/version"
)

// Run запускает приложение: хранилище, сервисы, публичный API, служебный
// HTTP-сервер и фоновые воркеры. Блокирует до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("storage close failed")
		}
	}()

	healthHandler := health.NewHandler(version.String())
	registerStorageChecker(healthHandler, deps)

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.WithError(err).Warn("kafka unavailable, events will stay in outbox")
	}
	defer closeKafka(producer, logger)

	checkoutMetrics := metrics.NewCheckoutMetrics()
	handler := buildAPIHandler(deps, healthHandler, checkoutMetrics)

	apiSrv := newAPIServer(cfg.HTTPAddr, handler)
	metricsSrv := newMetricsServer(cfg.MetricsAddr, healthHandler)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return serveHTTP(ctx, apiSrv, "api", logger)
	})
	group.Go(func() error {
		return serveHTTP(ctx, metricsSrv, "metrics", logger)
	})

	if producer != nil {
		publisher := kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)

		worker := outbox.NewWorker(
			deps.Outbox,
			publisher,
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
			outbox.WithLogger(logger.WithField("component", "outbox_worker")),
		)
		group.Go(func() error {
			worker.Run(ctx)
			return nil
		})
	} else {
		logger.Info("kafka brokers are not configured, outbox worker is disabled")
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.Idempotency,
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
		idempotency.WithLogger(logger.WithField("component", "idempotency_cleanup")),
	)
	group.Go(func() error {
		cleanup.Run(ctx)
		return nil
	})

	logger.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"storage":      string(cfg.StorageDriver),
	}).Info("bookshop started")

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

// registerStorageChecker подключает ping-проверку для postgres backend.
// In-memory хранилище проверок не требует.
func registerStorageChecker(handler *health.Handler, deps *Dependencies) {
	if deps.store == nil {
		return
	}
	handler.RegisterChecker("postgres", health.NewPingChecker("postgres", 2*time.Second, deps.store.Ping))
}

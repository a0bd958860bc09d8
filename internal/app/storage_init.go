package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/storage/postgres"
)

// initStorage собирает репозитории для выбранного storage driver.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return newMemoryDependencies(logger, cfg.SeedDemoData), nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires BOOKSHOP_POSTGRES_DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}

		logger.Info("using postgres storage")
		return &Dependencies{
			Users:       postgres.NewUserRepository(store),
			Books:       postgres.NewBookRepository(store),
			Categories:  postgres.NewCategoryRepository(store),
			Carts:       postgres.NewCartRepository(store),
			Orders:      postgres.NewOrderRepository(store),
			Outbox:      postgres.NewOutboxRepository(store),
			Timeline:    postgres.NewTimelineRepository(store),
			Idempotency: postgres.NewIdempotencyRepository(store),
			Logger:      logger,
			store:       store,
			closeFn:     store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

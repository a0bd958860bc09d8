package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StorageDriver определяет используемый storage backend.
type StorageDriver string

const (
	// StorageDriverMemory — in-memory хранилище для разработки и демо.
	StorageDriverMemory StorageDriver = "memory"
	// StorageDriverPostgres — PostgreSQL через pgx stdlib driver.
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int

	// SeedDemoData наполняет memory-хранилище демонстрационным каталогом
	// и пользователями. Для postgres не используется.
	SeedDemoData bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                    ":8080",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            200 * time.Millisecond,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
		SeedDemoData:                true,
	}
}

// ConfigFromEnv строит конфигурацию из переменных окружения BOOKSHOP_*,
// начиная со значений по умолчанию.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("BOOKSHOP_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BOOKSHOP_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("BOOKSHOP_STORAGE_DRIVER"); v != "" {
		cfg.StorageDriver = StorageDriver(strings.ToLower(strings.TrimSpace(v)))
	}
	if v := os.Getenv("BOOKSHOP_POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v, ok := envBool("BOOKSHOP_POSTGRES_AUTO_MIGRATE"); ok {
		cfg.PostgresAutoMigrate = v
	}
	if v := os.Getenv("BOOKSHOP_KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = v
	}
	if v, ok := envDuration("BOOKSHOP_OUTBOX_POLL_INTERVAL"); ok {
		cfg.OutboxPollInterval = v
	}
	if v, ok := envInt("BOOKSHOP_OUTBOX_BATCH_SIZE"); ok {
		cfg.OutboxBatchSize = v
	}
	if v, ok := envInt("BOOKSHOP_OUTBOX_MAX_ATTEMPTS"); ok {
		cfg.OutboxMaxAttempts = v
	}
	if v, ok := envDuration("BOOKSHOP_OUTBOX_RETRY_DELAY"); ok {
		cfg.OutboxRetryDelay = v
	}
	if v, ok := envDuration("BOOKSHOP_IDEMPOTENCY_CLEANUP_INTERVAL"); ok {
		cfg.IdempotencyCleanupInterval = v
	}
	if v, ok := envInt("BOOKSHOP_IDEMPOTENCY_CLEANUP_BATCH_SIZE"); ok {
		cfg.IdempotencyCleanupBatchSize = v
	}
	if v, ok := envBool("BOOKSHOP_SEED_DEMO_DATA"); ok {
		cfg.SeedDemoData = v
	}

	return cfg
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func envDuration(name string) (time.Duration, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

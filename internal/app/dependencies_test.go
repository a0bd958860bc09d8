package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

func TestNewMemoryDependencies_SeedsDemoData(t *testing.T) {
	logger := log.New().WithField("component", "test")

	deps := newMemoryDependencies(logger, true)

	exists, err := deps.Users.Exists("demo-reader")
	if err != nil {
		t.Fatalf("users exists: %v", err)
	}
	if !exists {
		t.Fatal("expected demo-reader to be seeded")
	}

	books, err := deps.Books.List(domain.EmptyBookFilter(), 10, 0)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) == 0 {
		t.Fatal("expected seeded demo books")
	}

	if err := deps.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewMemoryDependencies_WithoutSeed(t *testing.T) {
	logger := log.New().WithField("component", "test")

	deps := newMemoryDependencies(logger, false)

	books, err := deps.Books.List(domain.EmptyBookFilter(), 10, 0)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("expected empty catalog, got %d books", len(books))
	}
}

func TestInitStorage_MemoryDriver(t *testing.T) {
	logger := log.New().WithField("component", "test")

	deps, err := initStorage(context.Background(), Config{StorageDriver: StorageDriverMemory}, logger)
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	if deps.Orders == nil || deps.Carts == nil || deps.Idempotency == nil {
		t.Fatal("expected all repositories to be wired")
	}
}

func TestInitStorage_PostgresRequiresDSN(t *testing.T) {
	logger := log.New().WithField("component", "test")

	if _, err := initStorage(context.Background(), Config{StorageDriver: StorageDriverPostgres}, logger); err == nil {
		t.Fatal("expected error for missing DSN")
	}
}

func TestInitStorage_UnknownDriver(t *testing.T) {
	logger := log.New().WithField("component", "test")

	if _, err := initStorage(context.Background(), Config{StorageDriver: "cassandra"}, logger); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

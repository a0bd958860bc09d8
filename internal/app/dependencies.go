package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/bookshop/internal/storage/postgres"
)

// Dependencies связывает репозитории, над которыми работают сервисы.
type Dependencies struct {
	Users       domain.UserRepository
	Books       domain.BookRepository
	Categories  domain.CategoryRepository
	Carts       domain.CartRepository
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	Timeline    domain.TimelineRepository
	Idempotency domain.IdempotencyRepository

	Logger *log.Entry

	// store не nil только для postgres backend; используется health-проверкой.
	store *postgres.Store

	// closeFn освобождает ресурсы storage backend (пул соединений postgres).
	closeFn func() error
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// newMemoryDependencies собирает in-memory репозитории.
func newMemoryDependencies(logger *log.Entry, seedDemo bool) *Dependencies {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	books := memory.NewBookRepository(store)

	deps := &Dependencies{
		Users:       users,
		Books:       books,
		Categories:  memory.NewCategoryRepository(store),
		Carts:       memory.NewCartRepository(store),
		Orders:      memory.NewOrderRepository(store),
		Outbox:      memory.NewOutboxRepository(),
		Timeline:    memory.NewTimelineRepository(),
		Idempotency: memory.NewIdempotencyRepository(),
		Logger:      logger,
	}

	if seedDemo {
		seedDemoData(users, books, logger)
	}
	return deps
}

// seedDemoData наполняет memory-хранилище пользователями и небольшим каталогом.
// Identity-провайдера в demo-режиме нет, поэтому пользователи создаются здесь.
func seedDemoData(users interface{ Put(domain.User) }, books domain.BookRepository, logger *log.Entry) {
	now := time.Now().UTC()

	demoUsers := []domain.User{
		{ID: "demo-admin", Email: "admin@bookshop.local", Role: domain.UserRoleAdmin, CreatedAt: now},
		{ID: "demo-reader", Email: "reader@bookshop.local", Role: domain.UserRoleUser, CreatedAt: now},
	}
	for _, user := range demoUsers {
		users.Put(user)
	}

	demoBooks := []domain.Book{
		{ID: "demo-book-1", Title: "The Go Programming Language", Author: "Donovan, Kernighan", ISBN: "978-0134190440", PriceMinor: 3999, CreatedAt: now, UpdatedAt: now},
		{ID: "demo-book-2", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", ISBN: "978-1449373320", PriceMinor: 4450, CreatedAt: now, UpdatedAt: now},
		{ID: "demo-book-3", Title: "Database Internals", Author: "Alex Petrov", ISBN: "978-1492040347", PriceMinor: 3550, CreatedAt: now, UpdatedAt: now},
	}
	for _, book := range demoBooks {
		if err := books.Create(book); err != nil {
			logger.WithError(err).WithField("book_id", book.ID).Warn("demo seed failed")
		}
	}

	logger.WithFields(log.Fields{
		"users": len(demoUsers),
		"books": len(demoBooks),
	}).Info("demo data seeded")
}

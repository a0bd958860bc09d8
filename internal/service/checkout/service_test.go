package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookshop/internal/storage/memory"
)

type testEnv struct {
	svc      *Service
	carts    domain.CartRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	store := memory.NewStore()

	users := memory.NewUserRepository(store)
	users.Put(domain.User{ID: "buyer-1", Email: "buyer-1@example.com", Role: domain.UserRoleUser})
	users.Put(domain.User{ID: "buyer-2", Email: "buyer-2@example.com", Role: domain.UserRoleUser})

	books := memory.NewBookRepository(store)
	now := time.Now().UTC()
	seed := []domain.Book{
		{ID: "book-1", Title: "Clean Code", Author: "Robert Martin", ISBN: "isbn-1", PriceMinor: 1299, CreatedAt: now, UpdatedAt: now},
		{ID: "book-2", Title: "SICP", Author: "Abelson, Sussman", ISBN: "isbn-2", PriceMinor: 550, CreatedAt: now, UpdatedAt: now},
	}
	for _, book := range seed {
		if err := books.Create(book); err != nil {
			t.Fatalf("seed book %s: %v", book.ID, err)
		}
	}

	carts := memory.NewCartRepository(store)
	outbox := memory.NewOutboxRepository()
	timeline := memory.NewTimelineRepository()

	svc := New(memory.NewOrderRepository(store), carts, books, users, outbox, timeline, nil)

	return testEnv{svc: svc, carts: carts, outbox: outbox, timeline: timeline}
}

func addCartItem(t *testing.T, env testEnv, userID, bookID string, quantity int32) {
	t.Helper()

	now := time.Now().UTC()
	if err := env.carts.CreateItem(domain.CartItem{
		ID:        userID + "-" + bookID,
		UserID:    userID,
		BookID:    bookID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed cart item: %v", err)
	}
}

func TestCreateOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	env := newTestEnv(t)

	addCartItem(t, env, "buyer-1", "book-1", 2)
	addCartItem(t, env, "buyer-1", "book-2", 1)

	order, err := env.svc.CreateOrder("buyer-1", "1 Library Lane")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected PENDING status, got %s", order.Status)
	}
	// 2 x 12.99 + 1 x 5.50 = 31.48
	if order.TotalMinor != 3148 {
		t.Fatalf("expected total 3148, got %d", order.TotalMinor)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if issues := order.ValidateInvariants(); len(issues) != 0 {
		t.Fatalf("order violates invariants: %v", issues)
	}

	cart, err := env.carts.GetByUser("buyer-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d items", len(cart.Items))
	}

	pending, err := env.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull outbox: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != string(kafka.EventTypeOrderCreated) {
		t.Fatalf("expected one order.created outbox event, got %+v", pending)
	}

	history, err := env.svc.GetHistory("buyer-1", order.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(history) != 1 || history[0].Type != string(kafka.EventTypeOrderCreated) {
		t.Fatalf("expected one timeline event, got %+v", history)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.svc.CreateOrder("buyer-1", ""); !errors.Is(err, domain.ErrShippingAddressRequired) {
		t.Fatalf("expected ErrShippingAddressRequired, got %v", err)
	}
	if _, err := env.svc.CreateOrder("ghost", "addr"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := env.svc.CreateOrder("buyer-1", "addr"); !errors.Is(err, domain.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestGetOrder_CrossUserLooksMissing(t *testing.T) {
	env := newTestEnv(t)

	addCartItem(t, env, "buyer-1", "book-1", 1)
	order, err := env.svc.CreateOrder("buyer-1", "addr")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := env.svc.GetOrder("buyer-2", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}
	if _, err := env.svc.GetOrder("buyer-1", "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for missing order, got %v", err)
	}
}

func TestUpdateStatus_CaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	addCartItem(t, env, "buyer-1", "book-1", 1)
	order, err := env.svc.CreateOrder("buyer-1", "addr")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := env.svc.UpdateStatus(order.ID, "shipped")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", updated.Status)
	}
	if updated.Version != order.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}

	if _, err := env.svc.UpdateStatus(order.ID, "not_a_status"); !errors.Is(err, domain.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
	if _, err := env.svc.UpdateStatus("missing", "SHIPPED"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	// Setting the same status again is a no-op without new events.
	before, err := env.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull outbox: %v", err)
	}
	if _, err := env.svc.UpdateStatus(order.ID, "SHIPPED"); err != nil {
		t.Fatalf("repeat status: %v", err)
	}
	after, err := env.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull outbox: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("expected no new outbox events, got %d -> %d", len(before), len(after))
	}
}

// conflictingOrderRepo wraps a real repository and injects version conflicts
// on the first N Save calls to model a concurrent writer.
type conflictingOrderRepo struct {
	domain.OrderRepository
	failures int
	calls    int
}

func (r *conflictingOrderRepo) Save(order domain.Order) error {
	r.calls++
	if r.calls <= r.failures {
		return domain.ErrOrderVersionConflict
	}
	return r.OrderRepository.Save(order)
}

func TestUpdateStatus_RetriesOnVersionConflict(t *testing.T) {
	store := memory.NewStore()

	users := memory.NewUserRepository(store)
	users.Put(domain.User{ID: "buyer-1", Email: "buyer-1@example.com", Role: domain.UserRoleUser})

	books := memory.NewBookRepository(store)
	now := time.Now().UTC()
	if err := books.Create(domain.Book{
		ID: "book-1", Title: "t", Author: "a", ISBN: "isbn-1", PriceMinor: 100,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed book: %v", err)
	}

	carts := memory.NewCartRepository(store)
	wrapped := &conflictingOrderRepo{OrderRepository: memory.NewOrderRepository(store), failures: 2}
	svc := New(wrapped, carts, books, users, memory.NewOutboxRepository(), memory.NewTimelineRepository(), nil)

	if err := carts.CreateItem(domain.CartItem{
		ID: "item-1", UserID: "buyer-1", BookID: "book-1", Quantity: 1,
		CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed cart item: %v", err)
	}

	order, err := svc.CreateOrder("buyer-1", "addr")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Two conflicts in a row, the third save attempt goes through.
	updated, err := svc.UpdateStatus(order.ID, "DELIVERED")
	if err != nil {
		t.Fatalf("update with conflicts: %v", err)
	}
	if updated.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", updated.Status)
	}
	if wrapped.calls != 3 {
		t.Fatalf("expected 3 save attempts, got %d", wrapped.calls)
	}

	wrapped.calls = 0
	wrapped.failures = 100
	if _, err := svc.UpdateStatus(order.ID, "COMPLETED"); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict after exhausted retries, got %v", err)
	}
}

func TestOrderItems(t *testing.T) {
	env := newTestEnv(t)

	addCartItem(t, env, "buyer-1", "book-1", 2)
	order, err := env.svc.CreateOrder("buyer-1", "addr")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	items, err := env.svc.GetOrderItems("buyer-1", order.ID)
	if err != nil {
		t.Fatalf("get items: %v", err)
	}
	if len(items) != 1 || items[0].PriceMinor != 2598 {
		t.Fatalf("unexpected items: %+v", items)
	}

	item, err := env.svc.GetOrderItem("buyer-1", order.ID, items[0].ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", item.Quantity)
	}

	if _, err := env.svc.GetOrderItem("buyer-1", order.ID, "missing"); !errors.Is(err, domain.ErrOrderItemNotFound) {
		t.Fatalf("expected ErrOrderItemNotFound, got %v", err)
	}
	if _, err := env.svc.GetOrderItems("buyer-2", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign user, got %v", err)
	}
}

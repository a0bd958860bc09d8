package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/storage/memory"
)

func newOrder(id, userID string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:              id,
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		TotalMinor:      2550,
		ShippingAddress: "221B Baker Street, London",
		Items: []domain.OrderItem{
			{ID: id + "-i1", OrderID: id, BookID: "book-1", Quantity: 2, PriceMinor: 2000, CreatedAt: now},
			{ID: id + "-i2", OrderID: id, BookID: "book-2", Quantity: 1, PriceMinor: 550, CreatedAt: now},
		},
		Version:   0,
		OrderDate: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateFromCartClearsCart(t *testing.T) {
	store := memory.NewStore()
	carts := memory.NewCartRepository(store)
	orders := memory.NewOrderRepository(store)

	if err := carts.CreateItem(newCartItem("item-1", "user-1", "book-1", 2)); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	if err := carts.CreateItem(newCartItem("item-2", "user-1", "book-2", 1)); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	if err := orders.CreateFromCart(newOrder("order-1", "user-1")); err != nil {
		t.Fatalf("create from cart failed: %v", err)
	}

	stored, err := orders.Get("order-1")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(stored.Items))
	}

	cart, err := carts.GetByUser("user-1")
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected cart to be cleared, got %d items", len(cart.Items))
	}
}

func TestOrderRepository_CreateDuplicate(t *testing.T) {
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)

	if err := orders.CreateFromCart(newOrder("order-1", "user-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := orders.CreateFromCart(newOrder("order-1", "user-1")); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict, got %v", err)
	}
}

func TestOrderRepository_ListByUser(t *testing.T) {
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)

	first := newOrder("order-1", "user-1")
	first.OrderDate = time.Now().UTC().Add(-time.Hour)
	second := newOrder("order-2", "user-1")

	if err := orders.CreateFromCart(first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := orders.CreateFromCart(second); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := orders.CreateFromCart(newOrder("order-3", "user-2")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := orders.ListByUser("user-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}
	if list[0].ID != "order-2" {
		t.Fatalf("expected newest order first, got %s", list[0].ID)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	store := memory.NewStore()
	orders := memory.NewOrderRepository(store)

	if err := orders.CreateFromCart(newOrder("order-1", "user-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := orders.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	stored.Status = domain.OrderStatusShipped
	if err := orders.Save(stored); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	updated, err := orders.Get("order-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected SHIPPED, got %s", updated.Status)
	}
	if updated.Version != stored.Version+1 {
		t.Fatalf("expected version increment, got %d", updated.Version)
	}

	stale := stored
	stale.Status = domain.OrderStatusCanceled
	if err := orders.Save(stale); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

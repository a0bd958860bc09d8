package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// RouterConfig собирает обработчики для HTTP-маршрутизатора.
type RouterConfig struct {
	Cart    *CartHandler
	Catalog *CatalogHandler
	Orders  *OrderHandler
	Logger  *log.Entry
	Health  http.HandlerFunc
	Ready   http.HandlerFunc
}

// NewRouter строит дерево маршрутов сервиса под префиксом /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(UserIDMiddleware)

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health)
	}
	if cfg.Ready != nil {
		r.Get("/readyz", cfg.Ready)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Get("/", cfg.Catalog.SearchBooks)
			r.Get("/search", cfg.Catalog.SearchBooks)
			r.Post("/", cfg.Catalog.CreateBook)
			r.Get("/{bookID}", cfg.Catalog.GetBook)
			r.Put("/{bookID}", cfg.Catalog.UpdateBook)
			r.Delete("/{bookID}", cfg.Catalog.DeleteBook)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", cfg.Catalog.ListCategories)
			r.Post("/", cfg.Catalog.CreateCategory)
			r.Get("/{categoryID}", cfg.Catalog.GetCategory)
			r.Get("/{categoryID}/books", cfg.Catalog.ListCategoryBooks)
			r.Put("/{categoryID}", cfg.Catalog.UpdateCategory)
			r.Delete("/{categoryID}", cfg.Catalog.DeleteCategory)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{itemID}", cfg.Cart.UpdateItem)
			r.Delete("/items/{itemID}", cfg.Cart.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", cfg.Orders.CreateOrder)
			r.Get("/", cfg.Orders.ListOrders)
			r.Get("/{orderID}", cfg.Orders.GetOrder)
			r.Get("/{orderID}/items", cfg.Orders.GetOrderItems)
			r.Get("/{orderID}/items/{itemID}", cfg.Orders.GetOrderItem)
			r.Get("/{orderID}/history", cfg.Orders.GetHistory)
			r.Patch("/{orderID}", cfg.Orders.UpdateStatus)
			r.Put("/{orderID}/status", cfg.Orders.UpdateStatus)
		})
	})

	return r
}

package api

import (
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// Представления для JSON-ответов. Денежные поля сериализуются
// десятичными строками ("12.99"), минимальные единицы наружу не выходят.

type bookView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Price       string   `json:"price"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func newBookView(b domain.Book) bookView {
	return bookView{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Price:       domain.FormatAmountMinor(b.PriceMinor),
		Description: b.Description,
		CoverImage:  b.CoverImage,
		CategoryIDs: b.CategoryIDs,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
}

func newBookViews(books []domain.Book) []bookView {
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		views = append(views, newBookView(b))
	}
	return views
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func newCategoryView(c domain.Category) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

type cartItemView struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Quantity  int32  `json:"quantity"`
	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newCartItemView(item domain.CartItem) cartItemView {
	return cartItemView{
		ID:        item.ID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		Version:   item.Version,
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

type cartView struct {
	UserID        string         `json:"user_id"`
	Items         []cartItemView `json:"items"`
	TotalQuantity int64          `json:"total_quantity"`
}

func newCartView(cart domain.Cart) cartView {
	items := make([]cartItemView, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, newCartItemView(item))
	}
	return cartView{
		UserID:        cart.UserID,
		Items:         items,
		TotalQuantity: cart.TotalQuantity(),
	}
}

type orderItemView struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	Quantity  int32  `json:"quantity"`
	Price     string `json:"price"`
	CreatedAt string `json:"created_at"`
}

func newOrderItemView(item domain.OrderItem) orderItemView {
	return orderItemView{
		ID:        item.ID,
		BookID:    item.BookID,
		Quantity:  item.Quantity,
		Price:     domain.FormatAmountMinor(item.PriceMinor),
		CreatedAt: formatTime(item.CreatedAt),
	}
}

type orderView struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Status          string          `json:"status"`
	Total           string          `json:"total"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []orderItemView `json:"items"`
	Version         int64           `json:"version"`
	OrderDate       string          `json:"order_date"`
	UpdatedAt       string          `json:"updated_at"`
}

func newOrderView(order domain.Order) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, newOrderItemView(item))
	}
	return orderView{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		Total:           domain.FormatAmountMinor(order.TotalMinor),
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		Version:         order.Version,
		OrderDate:       formatTime(order.OrderDate),
		UpdatedAt:       formatTime(order.UpdatedAt),
	}
}

type timelineEventView struct {
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func newTimelineEventViews(events []domain.TimelineEvent) []timelineEventView {
	views := make([]timelineEventView, 0, len(events))
	for _, event := range events {
		views = append(views, timelineEventView{
			Type:       event.Type,
			Reason:     event.Reason,
			OccurredAt: formatTime(event.Occurred),
		})
	}
	return views
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

package domain

import (
	"strings"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ оформлен, обработка ещё не началась.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusProcessing — заказ собирается.
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "SHIPPED"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// OrderStatusCanceled — заказ отменён.
	OrderStatusCanceled OrderStatus = "CANCELED"
	// OrderStatusRefunded — средства по заказу возвращены.
	OrderStatusRefunded OrderStatus = "REFUNDED"
	// OrderStatusBackordered — часть позиций ожидает поступления на склад.
	OrderStatusBackordered OrderStatus = "BACKORDERED"
	// OrderStatusCompleted — заказ полностью завершён.
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// ParseOrderStatus нормализует строку статуса (регистронезависимо) к перечислению.
// Граф переходов намеренно плоский: любой статус может смениться любым другим.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case OrderStatusPending:
		return OrderStatusPending, nil
	case OrderStatusProcessing:
		return OrderStatusProcessing, nil
	case OrderStatusShipped:
		return OrderStatusShipped, nil
	case OrderStatusDelivered:
		return OrderStatusDelivered, nil
	case OrderStatusCanceled:
		return OrderStatusCanceled, nil
	case OrderStatusRefunded:
		return OrderStatusRefunded, nil
	case OrderStatusBackordered:
		return OrderStatusBackordered, nil
	case OrderStatusCompleted:
		return OrderStatusCompleted, nil
	default:
		return "", ErrStatusInvalid
	}
}

// OrderItem представляет одну позицию заказа.
// PriceMinor — зафиксированная на момент оформления стоимость строки
// (цена книги × количество); последующие изменения цены книги её не затрагивают.
type OrderItem struct {
	ID         string
	OrderID    string
	BookID     string
	Quantity   int32
	PriceMinor int64
	CreatedAt  time.Time
}

// Order агрегирует состояние заказа и его позиции.
// После создания заказ неизменяем, кроме переходов Status.
type Order struct {
	ID              string
	UserID          string
	Status          OrderStatus
	TotalMinor      int64
	ShippingAddress string
	Items           []OrderItem
	Deleted         bool
	Version         int64
	OrderDate       time.Time
	UpdatedAt       time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserNotFound)
	}
	if o.ShippingAddress == "" {
		errs = append(errs, ErrShippingAddressRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if o.TotalMinor < 0 {
		errs = append(errs, ErrPriceInvalid)
	}

	// Сверяем сумму заказа с суммой снапшотов позиций.
	var calc int64
	for _, item := range o.Items {
		if item.Quantity < 1 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrPriceInvalid)
		}
		calc += item.PriceMinor
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// ItemByID возвращает позицию заказа по её идентификатору.
func (o *Order) ItemByID(itemID string) (OrderItem, error) {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return OrderItem{}, ErrOrderItemNotFound
}

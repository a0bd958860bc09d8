package domain

import "time"

// CartItem представляет одну позицию корзины: книга и количество.
// Version используется для optimistic locking при конкурентных изменениях.
type CartItem struct {
	ID        string
	UserID    string
	BookID    string
	Quantity  int32
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты позиции корзины.
func (i *CartItem) ValidateInvariants() []error {
	var errs []error

	if i.UserID == "" {
		errs = append(errs, ErrUserNotFound)
	}
	if i.BookID == "" {
		errs = append(errs, ErrBookNotFound)
	}
	if i.Quantity < 1 {
		errs = append(errs, ErrQuantityInvalid)
	}

	return errs
}

// Cart агрегирует текущие позиции пользователя.
// Корзина существует ровно одна на пользователя и идентифицируется его ID;
// создаётся лениво при первом обращении и никогда не удаляется, только очищается.
type Cart struct {
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalQuantity возвращает суммарное количество единиц во всех позициях.
func (c *Cart) TotalQuantity() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Quantity)
	}
	return total
}

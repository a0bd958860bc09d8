package domain

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrBookNotFound возвращается, если книга не найдена в каталоге.
	ErrBookNotFound = errors.New("book not found")
	// ErrCategoryNotFound возвращается, если категория не найдена или помечена удалённой.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCartItemNotFound возвращается, если позиция корзины не найдена в корзине пользователя.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderItemNotFound возвращается, если позиция заказа не найдена.
	ErrOrderItemNotFound = errors.New("order item not found")

	// Ошибка некорректного количества товара (< 1).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// Ошибка отрицательной или неразборчивой цены.
	ErrPriceInvalid = errors.New("price must be a non-negative decimal with at most two fraction digits")
	// Ошибка неизвестного статуса заказа.
	ErrStatusInvalid = errors.New("unknown order status")
	// Ошибка пустого адреса доставки при оформлении заказа.
	ErrShippingAddressRequired = errors.New("shipping address is required")
	// Ошибка оформления заказа из пустой корзины.
	ErrCartEmpty = errors.New("cart must contain at least one item")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrTotalMismatch = errors.New("order total does not match items sum")
	// Ошибка отсутствующего названия книги.
	ErrTitleRequired = errors.New("book title is required")
	// Ошибка отсутствующего автора книги.
	ErrAuthorRequired = errors.New("book author is required")
	// Ошибка отсутствующего ISBN книги.
	ErrISBNRequired = errors.New("book isbn is required")
	// Ошибка дублирующегося ISBN при создании книги.
	ErrISBNExists = errors.New("book isbn already exists")
	// Ошибка отсутствующего имени категории.
	ErrCategoryNameRequired = errors.New("category name is required")
	// Ошибка неизвестной роли пользователя.
	ErrRoleInvalid = errors.New("unknown user role")

	// ErrCartItemExists сигнализирует, что позиция для пары (корзина, книга) уже создана.
	ErrCartItemExists = errors.New("cart item for this book already exists")
	// ErrCartConflict сигнализирует о конкурентном изменении позиции корзины.
	ErrCartConflict = errors.New("cart item concurrent modification conflict")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении заказа.
	ErrOrderVersionConflict = errors.New("order version conflict")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")

	// Ошибки ключей идемпотентности.
	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key reused with different request")
)

// IsNotFound проверяет, относится ли ошибка к семейству "не найдено".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrCartItemNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrOrderItemNotFound)
}

// IsInvalidArgument проверяет, относится ли ошибка к семейству ошибок валидации входа.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrQuantityInvalid) ||
		errors.Is(err, ErrPriceInvalid) ||
		errors.Is(err, ErrStatusInvalid) ||
		errors.Is(err, ErrShippingAddressRequired) ||
		errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrAuthorRequired) ||
		errors.Is(err, ErrISBNRequired) ||
		errors.Is(err, ErrCategoryNameRequired) ||
		errors.Is(err, ErrRoleInvalid)
}

// IsConflict проверяет, является ли ошибка конфликтом конкурентного доступа.
func IsConflict(err error) bool {
	return errors.Is(err, ErrCartConflict) ||
		errors.Is(err, ErrCartItemExists) ||
		errors.Is(err, ErrOrderVersionConflict)
}

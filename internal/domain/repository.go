package domain

// BookRepository описывает требования к хранилищу каталога книг.
type BookRepository interface {
	// Create сохраняет новую книгу. Возвращает ErrISBNExists при дубликате ISBN.
	Create(book Book) error
	// Get возвращает книгу по идентификатору или ErrBookNotFound.
	Get(id string) (Book, error)
	// List возвращает книги, удовлетворяющие фильтру, с пагинацией.
	List(filter BookFilter, limit, offset int) ([]Book, error)
	// Update перезаписывает книгу или возвращает ErrBookNotFound.
	Update(book Book) error
	// Delete жёстко удаляет книгу. Позиции корзин, ссылающиеся на неё,
	// удаляются каскадно; снапшоты в заказах сохраняются.
	Delete(id string) error
}

// CategoryRepository описывает хранилище категорий с мягким удалением.
// Все операции чтения применяют предикат "active only" — удалённые категории
// не видны ни по Get, ни по List.
type CategoryRepository interface {
	Create(category Category) error
	Get(id string) (Category, error)
	List() ([]Category, error)
	Update(category Category) error
	// SoftDelete помечает категорию удалённой; повторное удаление возвращает ErrCategoryNotFound.
	SoftDelete(id string) error
}

// CartRepository описывает хранилище корзин.
// Уникальность пары (корзина, книга) обеспечивается самим хранилищем:
// CreateItem для уже занятой пары возвращает ErrCartItemExists, а SaveItem
// сверяет Version и возвращает ErrCartConflict при расхождении. Сервисный слой
// строит на этом безопасный merge при конкурентных добавлениях.
type CartRepository interface {
	// GetByUser возвращает корзину пользователя, лениво создавая пустую при первом обращении.
	GetByUser(userID string) (Cart, error)
	// GetItem возвращает позицию из корзины пользователя или ErrCartItemNotFound.
	// Позиции чужих корзин не видны даже по существующему ID.
	GetItem(userID, itemID string) (CartItem, error)
	// FindItemByBook возвращает позицию по книге или ErrCartItemNotFound.
	FindItemByBook(userID, bookID string) (CartItem, error)
	// CreateItem сохраняет новую позицию; ErrCartItemExists, если пара (корзина, книга) занята.
	CreateItem(item CartItem) error
	// SaveItem применяет изменения с учётом optimistic locking.
	SaveItem(item CartItem) error
	// DeleteItem удаляет позицию из корзины пользователя.
	DeleteItem(userID, itemID string) error
	// Clear удаляет все позиции корзины; очистка пустой корзины — no-op без ошибки.
	Clear(userID string) error
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	// CreateFromCart атомарно сохраняет заказ с позициями и очищает корзину
	// пользователя: либо фиксируется всё, либо ничего.
	CreateFromCart(order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(userID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
}

// UserRepository — read-only срез identity, достаточный для корзины и заказов.
type UserRepository interface {
	Get(id string) (User, error)
	Exists(id string) (bool, error)
}

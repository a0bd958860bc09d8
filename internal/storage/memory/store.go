package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// Store — разделяемое in-memory хранилище для локальной разработки и тестов.
// Все таблицы защищены одним RWMutex: операция оформления заказа должна
// атомарно записать заказ и очистить корзину, поэтому блокировка общая,
// по аналогии с одним SQL-подключением у PostgreSQL-репозиториев.
type Store struct {
	mu sync.RWMutex

	users      map[string]domain.User
	books      map[string]domain.Book
	categories map[string]domain.Category
	cartItems  map[string]map[string]domain.CartItem // userID -> itemID -> item
	carts      map[string]time.Time                  // userID -> момент ленивого создания корзины
	orders     map[string]domain.Order
}

// NewStore создаёт пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		books:      make(map[string]domain.Book),
		categories: make(map[string]domain.Category),
		cartItems:  make(map[string]map[string]domain.CartItem),
		carts:      make(map[string]time.Time),
		orders:     make(map[string]domain.Order),
	}
}

// ensureCartLocked лениво создаёт корзину пользователя. Вызывается под mu.
func (s *Store) ensureCartLocked(userID string) {
	if _, ok := s.carts[userID]; !ok {
		s.carts[userID] = time.Now().UTC()
		s.cartItems[userID] = make(map[string]domain.CartItem)
	}
}

func cloneBook(b domain.Book) domain.Book {
	out := b
	out.CategoryIDs = append([]string(nil), b.CategoryIDs...)
	return out
}

func cloneOrder(o domain.Order) domain.Order {
	out := o
	out.Items = append([]domain.OrderItem(nil), o.Items...)
	return out
}

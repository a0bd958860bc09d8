package memory

import (
	"sort"
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация корзин.
// Уникальность пары (пользователь, книга) и проверка версий выполняются
// под общей блокировкой Store, поэтому merge-логика сервисного слоя
// получает те же гарантии, что и уникальный индекс в PostgreSQL.
type cartRepositoryInMemory struct {
	store *Store
}

// NewCartRepository возвращает in-memory реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepositoryInMemory{store: store}
}

// GetByUser возвращает корзину пользователя, лениво создавая пустую.
func (r *cartRepositoryInMemory) GetByUser(userID string) (domain.Cart, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ensureCartLocked(userID)

	items := make([]domain.CartItem, 0, len(r.store.cartItems[userID]))
	for _, item := range r.store.cartItems[userID] {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	return domain.Cart{
		UserID:    userID,
		Items:     items,
		CreatedAt: r.store.carts[userID],
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// GetItem возвращает позицию из корзины пользователя.
// Чужие позиции не видны даже по существующему ID.
func (r *cartRepositoryInMemory) GetItem(userID, itemID string) (domain.CartItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.cartItems[userID][itemID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartItemNotFound
	}
	return item, nil
}

// FindItemByBook ищет позицию по книге.
func (r *cartRepositoryInMemory) FindItemByBook(userID, bookID string) (domain.CartItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.cartItems[userID] {
		if item.BookID == bookID {
			return item, nil
		}
	}
	return domain.CartItem{}, domain.ErrCartItemNotFound
}

// CreateItem сохраняет новую позицию, если пара (корзина, книга) свободна.
func (r *cartRepositoryInMemory) CreateItem(item domain.CartItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ensureCartLocked(item.UserID)

	for _, existing := range r.store.cartItems[item.UserID] {
		if existing.BookID == item.BookID {
			return domain.ErrCartItemExists
		}
	}
	r.store.cartItems[item.UserID][item.ID] = item
	return nil
}

// SaveItem перезаписывает позицию, проверяя версию (optimistic locking).
func (r *cartRepositoryInMemory) SaveItem(item domain.CartItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.cartItems[item.UserID][item.ID]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	if current.Version != item.Version {
		return domain.ErrCartConflict
	}
	item.Version++
	item.UpdatedAt = time.Now().UTC()
	r.store.cartItems[item.UserID][item.ID] = item
	return nil
}

// DeleteItem удаляет позицию из корзины пользователя.
func (r *cartRepositoryInMemory) DeleteItem(userID, itemID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.cartItems[userID][itemID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(r.store.cartItems[userID], itemID)
	return nil
}

// Clear удаляет все позиции корзины; очистка пустой корзины — no-op.
func (r *cartRepositoryInMemory) Clear(userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.ensureCartLocked(userID)
	r.store.cartItems[userID] = make(map[string]domain.CartItem)
	return nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)

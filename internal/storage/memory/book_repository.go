package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// bookRepositoryInMemory — in-memory реализация каталога книг.
type bookRepositoryInMemory struct {
	store *Store
}

// NewBookRepository возвращает in-memory реализацию BookRepository.
func NewBookRepository(store *Store) domain.BookRepository {
	return &bookRepositoryInMemory{store: store}
}

// Create сохраняет новую книгу, проверяя уникальность ISBN.
func (r *bookRepositoryInMemory) Create(book domain.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.books {
		if existing.ISBN == book.ISBN {
			return domain.ErrISBNExists
		}
	}
	r.store.books[book.ID] = cloneBook(book)
	return nil
}

// Get возвращает книгу или ErrBookNotFound.
func (r *bookRepositoryInMemory) Get(id string) (domain.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	book, ok := r.store.books[id]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return cloneBook(book), nil
}

// List возвращает книги по фильтру, отсортированные по дате создания и ID.
func (r *bookRepositoryInMemory) List(filter domain.BookFilter, limit, offset int) ([]domain.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Book, 0, len(r.store.books))
	for _, book := range r.store.books {
		if filter.Matches(book) {
			result = append(result, cloneBook(book))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if offset > 0 {
		if offset >= len(result) {
			return []domain.Book{}, nil
		}
		result = result[offset:]
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Update перезаписывает книгу, сохраняя уникальность ISBN.
func (r *bookRepositoryInMemory) Update(book domain.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[book.ID]; !ok {
		return domain.ErrBookNotFound
	}
	for id, existing := range r.store.books {
		if id != book.ID && existing.ISBN == book.ISBN {
			return domain.ErrISBNExists
		}
	}
	r.store.books[book.ID] = cloneBook(book)
	return nil
}

// Delete жёстко удаляет книгу и каскадно убирает её из всех корзин.
// Снапшоты в позициях заказов не затрагиваются.
func (r *bookRepositoryInMemory) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.store.books, id)

	for userID, items := range r.store.cartItems {
		for itemID, item := range items {
			if item.BookID == id {
				delete(r.store.cartItems[userID], itemID)
			}
		}
	}

	return nil
}

var _ domain.BookRepository = (*bookRepositoryInMemory)(nil)

package memory

import (
	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// userRepositoryInMemory — read-only срез identity поверх общего Store.
type userRepositoryInMemory struct {
	store *Store
}

// NewUserRepository возвращает in-memory реализацию UserRepository.
func NewUserRepository(store *Store) *userRepositoryInMemory {
	return &userRepositoryInMemory{store: store}
}

// Get возвращает пользователя или ErrUserNotFound.
func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// Exists проверяет наличие пользователя.
func (r *userRepositoryInMemory) Exists(id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.users[id]
	return ok, nil
}

// Put добавляет пользователя (seed для разработки и тестов).
func (r *userRepositoryInMemory) Put(user domain.User) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.users[user.ID] = user
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)

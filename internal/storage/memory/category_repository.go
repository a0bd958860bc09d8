package memory

import (
	"sort"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

// categoryRepositoryInMemory — in-memory реализация категорий с мягким удалением.
// Предикат "active only" применяется здесь, а не в вызывающем коде.
type categoryRepositoryInMemory struct {
	store *Store
}

// NewCategoryRepository возвращает in-memory реализацию CategoryRepository.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &categoryRepositoryInMemory{store: store}
}

// Create сохраняет новую категорию.
func (r *categoryRepositoryInMemory) Create(category domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.categories[category.ID] = category
	return nil
}

// Get возвращает активную категорию или ErrCategoryNotFound.
func (r *categoryRepositoryInMemory) Get(id string) (domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	category, ok := r.store.categories[id]
	if !ok || category.Deleted {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

// List возвращает активные категории, отсортированные по имени.
func (r *categoryRepositoryInMemory) List() ([]domain.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.store.categories))
	for _, category := range r.store.categories {
		if category.Deleted {
			continue
		}
		result = append(result, category)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update перезаписывает активную категорию.
func (r *categoryRepositoryInMemory) Update(category domain.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.categories[category.ID]
	if !ok || existing.Deleted {
		return domain.ErrCategoryNotFound
	}
	category.Deleted = false
	r.store.categories[category.ID] = category
	return nil
}

// SoftDelete помечает категорию удалённой. Ссылки на её ID в книгах сохраняются.
func (r *categoryRepositoryInMemory) SoftDelete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	category, ok := r.store.categories[id]
	if !ok || category.Deleted {
		return domain.ErrCategoryNotFound
	}
	category.Deleted = true
	r.store.categories[id] = category
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)

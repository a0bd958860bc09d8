package catalog

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

const defaultPageSize = 50

// Service реализует операции каталога: книги, категории, поиск.
type Service struct {
	books      domain.BookRepository
	categories domain.CategoryRepository
	logger     *log.Entry
}

// New создаёт сервис каталога.
func New(books domain.BookRepository, categories domain.CategoryRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		books:      books,
		categories: categories,
		logger:     logger,
	}
}

// BookInput описывает данные для создания или обновления книги.
type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	PriceMinor  int64
	Description string
	CoverImage  string
	CategoryIDs []string
}

// CreateBook добавляет книгу в каталог. Все ссылки на категории
// должны указывать на активные категории.
func (s *Service) CreateBook(input BookInput) (domain.Book, error) {
	now := time.Now().UTC()
	book := domain.Book{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		PriceMinor:  input.PriceMinor,
		Description: input.Description,
		CoverImage:  input.CoverImage,
		CategoryIDs: input.CategoryIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if issues := book.ValidateInvariants(); len(issues) != 0 {
		return domain.Book{}, issues[0]
	}
	if err := s.ensureCategories(input.CategoryIDs); err != nil {
		return domain.Book{}, err
	}

	if err := s.books.Create(book); err != nil {
		return domain.Book{}, err
	}

	s.logger.WithFields(log.Fields{
		"book_id": book.ID,
		"isbn":    book.ISBN,
	}).Info("book created")

	return book, nil
}

// GetBook возвращает книгу по идентификатору.
func (s *Service) GetBook(id string) (domain.Book, error) {
	return s.books.Get(id)
}

// SearchBooks возвращает страницу каталога по фильтру.
func (s *Service) SearchBooks(filter domain.BookFilter, limit, offset int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.books.List(filter, limit, offset)
}

// UpdateBook заменяет атрибуты существующей книги.
func (s *Service) UpdateBook(id string, input BookInput) (domain.Book, error) {
	existing, err := s.books.Get(id)
	if err != nil {
		return domain.Book{}, err
	}

	existing.Title = input.Title
	existing.Author = input.Author
	existing.ISBN = input.ISBN
	existing.PriceMinor = input.PriceMinor
	existing.Description = input.Description
	existing.CoverImage = input.CoverImage
	existing.CategoryIDs = input.CategoryIDs
	existing.UpdatedAt = time.Now().UTC()

	if issues := existing.ValidateInvariants(); len(issues) != 0 {
		return domain.Book{}, issues[0]
	}
	if err := s.ensureCategories(input.CategoryIDs); err != nil {
		return domain.Book{}, err
	}

	if err := s.books.Update(existing); err != nil {
		return domain.Book{}, err
	}
	return existing, nil
}

// DeleteBook жёстко удаляет книгу. Позиции корзин с этой книгой исчезают,
// позиции уже оформленных заказов сохраняют снапшот.
func (s *Service) DeleteBook(id string) error {
	if err := s.books.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("book_id", id).Info("book deleted")
	return nil
}

// CategoryInput описывает данные для создания или обновления категории.
type CategoryInput struct {
	Name        string
	Description string
}

// CreateCategory добавляет активную категорию.
func (s *Service) CreateCategory(input CategoryInput) (domain.Category, error) {
	now := time.Now().UTC()
	category := domain.Category{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if issues := category.ValidateInvariants(); len(issues) != 0 {
		return domain.Category{}, issues[0]
	}

	if err := s.categories.Create(category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

// GetCategory возвращает активную категорию.
func (s *Service) GetCategory(id string) (domain.Category, error) {
	return s.categories.Get(id)
}

// ListCategories возвращает все активные категории.
func (s *Service) ListCategories() ([]domain.Category, error) {
	return s.categories.List()
}

// UpdateCategory заменяет атрибуты активной категории.
func (s *Service) UpdateCategory(id string, input CategoryInput) (domain.Category, error) {
	existing, err := s.categories.Get(id)
	if err != nil {
		return domain.Category{}, err
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.UpdatedAt = time.Now().UTC()

	if issues := existing.ValidateInvariants(); len(issues) != 0 {
		return domain.Category{}, issues[0]
	}

	if err := s.categories.Update(existing); err != nil {
		return domain.Category{}, err
	}
	return existing, nil
}

// DeleteCategory помечает категорию удалённой. Книги ссылки не теряют,
// но категория перестаёт быть видимой в чтениях и поиске.
func (s *Service) DeleteCategory(id string) error {
	return s.categories.SoftDelete(id)
}

func (s *Service) ensureCategories(ids []string) error {
	for _, id := range ids {
		if _, err := s.categories.Get(id); err != nil {
			return err
		}
	}
	return nil
}

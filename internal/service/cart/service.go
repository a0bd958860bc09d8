package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/metrics"
)

const (
	maxRetries = 3
	baseDelay  = 10 * time.Millisecond
)

// Service реализует операции над корзиной пользователя.
// Конкурентные изменения одной позиции разрешаются через optimistic locking
// с ограниченным числом повторов.
type Service struct {
	carts   domain.CartRepository
	books   domain.BookRepository
	users   domain.UserRepository
	logger  *log.Entry
	metrics *metrics.CheckoutMetrics
}

// New создаёт сервис корзины.
func New(
	carts domain.CartRepository,
	books domain.BookRepository,
	users domain.UserRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &Service{
		carts:  carts,
		books:  books,
		users:  users,
		logger: logger,
	}
}

// WithMetrics включает публикацию метрик конфликтов и повторов.
func (s *Service) WithMetrics(m *metrics.CheckoutMetrics) *Service {
	s.metrics = m
	return s
}

// GetCart возвращает корзину пользователя, лениво создавая её при первом обращении.
func (s *Service) GetCart(userID string) (domain.Cart, error) {
	if err := s.ensureUser(userID); err != nil {
		return domain.Cart{}, err
	}
	return s.carts.GetByUser(userID)
}

// AddItem добавляет книгу в корзину. Повторное добавление той же книги
// сливается с существующей позицией: количества складываются.
func (s *Service) AddItem(userID, bookID string, quantity int32) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.ErrQuantityInvalid
	}
	if err := s.ensureUser(userID); err != nil {
		return domain.CartItem{}, err
	}
	if _, err := s.books.Get(bookID); err != nil {
		return domain.CartItem{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			s.recordRetry()
			time.Sleep(baseDelay * time.Duration(1<<uint(attempt-1)))
		}

		existing, err := s.carts.FindItemByBook(userID, bookID)
		switch {
		case err == nil:
			existing.Quantity += quantity
			if err := s.carts.SaveItem(existing); err != nil {
				if domain.IsConflict(err) {
					s.recordConflict(userID, bookID, attempt, err)
					lastErr = err
					continue
				}
				return domain.CartItem{}, err
			}
			existing.Version++
			return existing, nil

		case errors.Is(err, domain.ErrCartItemNotFound):
			now := time.Now().UTC()
			item := domain.CartItem{
				ID:        uuid.NewString(),
				UserID:    userID,
				BookID:    bookID,
				Quantity:  quantity,
				Version:   0,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.carts.CreateItem(item); err != nil {
				// Конкурент успел создать позицию для той же книги:
				// перечитываем и сливаем количества на следующей итерации.
				if domain.IsConflict(err) {
					s.recordConflict(userID, bookID, attempt, err)
					lastErr = err
					continue
				}
				return domain.CartItem{}, err
			}
			return item, nil

		default:
			return domain.CartItem{}, err
		}
	}

	return domain.CartItem{}, lastErr
}

// SetItemQuantity заменяет количество в существующей позиции.
func (s *Service) SetItemQuantity(userID, itemID string, quantity int32) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.ErrQuantityInvalid
	}
	if err := s.ensureUser(userID); err != nil {
		return domain.CartItem{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			s.recordRetry()
			time.Sleep(baseDelay * time.Duration(1<<uint(attempt-1)))
		}

		item, err := s.carts.GetItem(userID, itemID)
		if err != nil {
			return domain.CartItem{}, err
		}

		item.Quantity = quantity
		if err := s.carts.SaveItem(item); err != nil {
			if domain.IsConflict(err) {
				s.recordConflict(userID, itemID, attempt, err)
				lastErr = err
				continue
			}
			return domain.CartItem{}, err
		}
		item.Version++
		return item, nil
	}

	return domain.CartItem{}, lastErr
}

// RemoveItem удаляет позицию из корзины пользователя.
func (s *Service) RemoveItem(userID, itemID string) error {
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	return s.carts.DeleteItem(userID, itemID)
}

// ClearCart удаляет все позиции корзины. Операция идемпотентна:
// очистка пустой корзины завершается успешно.
func (s *Service) ClearCart(userID string) error {
	if err := s.ensureUser(userID); err != nil {
		return err
	}
	return s.carts.Clear(userID)
}

func (s *Service) ensureUser(userID string) error {
	exists, err := s.users.Exists(userID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Service) recordConflict(userID, subject string, attempt int, err error) {
	s.logger.WithError(err).WithFields(log.Fields{
		"user_id": userID,
		"subject": subject,
		"attempt": attempt + 1,
	}).Warn("cart conflict detected, retrying")
	if s.metrics != nil {
		s.metrics.RecordCartConflict()
	}
}

func (s *Service) recordRetry() {
	if s.metrics != nil {
		s.metrics.RecordCartRetry()
	}
}

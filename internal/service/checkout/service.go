package checkout

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bookshop/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxStatusRetries = 3
	baseRetryDelay   = 10 * time.Millisecond
)

// Service реализует оформление заказа из корзины и дальнейший
// жизненный цикл заказа. Создание заказа атомарно: позиции и очистка
// корзины фиксируются репозиторием в одной транзакции.
type Service struct {
	orders   domain.OrderRepository
	carts    domain.CartRepository
	books    domain.BookRepository
	users    domain.UserRepository
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	logger   *log.Entry
	metrics  *metrics.CheckoutMetrics
}

// New создаёт сервис оформления заказов.
func New(
	orders domain.OrderRepository,
	carts domain.CartRepository,
	books domain.BookRepository,
	users domain.UserRepository,
	outbox domain.OutboxRepository,
	timeline domain.TimelineRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "checkout")
	}
	return &Service{
		orders:   orders,
		carts:    carts,
		books:    books,
		users:    users,
		outbox:   outbox,
		timeline: timeline,
		logger:   logger,
	}
}

// WithMetrics включает публикацию метрик оформления.
func (s *Service) WithMetrics(m *metrics.CheckoutMetrics) *Service {
	s.metrics = m
	return s
}

// CreateOrder снимает снапшот корзины пользователя и превращает его в заказ.
// Цены позиций фиксируются на момент оформления; корзина очищается в той же
// транзакции, в которой сохраняется заказ.
func (s *Service) CreateOrder(userID, shippingAddress string) (domain.Order, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordCheckoutStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordCheckoutFinished()
			s.metrics.RecordCheckoutDuration(time.Since(start))
		}
	}()

	if shippingAddress == "" {
		return domain.Order{}, domain.ErrShippingAddressRequired
	}
	if err := s.ensureUser(userID); err != nil {
		return domain.Order{}, err
	}

	cart, err := s.carts.GetByUser(userID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	now := time.Now().UTC()
	orderID := uuid.NewString()

	items := make([]domain.OrderItem, 0, len(cart.Items))
	var total int64
	for _, cartItem := range cart.Items {
		book, err := s.books.Get(cartItem.BookID)
		if err != nil {
			return domain.Order{}, err
		}
		lineTotal := book.PriceMinor * int64(cartItem.Quantity)
		items = append(items, domain.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			BookID:     book.ID,
			Quantity:   cartItem.Quantity,
			PriceMinor: lineTotal,
			CreatedAt:  now,
		})
		total += lineTotal
	}

	order := domain.Order{
		ID:              orderID,
		UserID:          userID,
		Status:          domain.OrderStatusPending,
		TotalMinor:      total,
		ShippingAddress: shippingAddress,
		Items:           items,
		Version:         0,
		OrderDate:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.CreateFromCart(order); err != nil {
		if s.metrics != nil {
			s.metrics.RecordOrderFailed()
		}
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
	}
	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"user_id":     userID,
		"total_minor": total,
		"items":       len(items),
	}).Info("order created from cart")

	s.emitEvent(&order, kafka.EventTypeOrderCreated, map[string]interface{}{
		"user_id":     userID,
		"status":      string(order.Status),
		"total_minor": total,
		"ts":          now.Format(time.RFC3339Nano),
	})

	return order, nil
}

// GetOrder возвращает заказ пользователя. Чужой заказ неотличим
// от несуществующего: в обоих случаях возвращается ErrOrderNotFound.
func (s *Service) GetOrder(userID, orderID string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (s *Service) ListOrders(userID string, limit int) ([]domain.Order, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(userID, limit)
}

// GetOrderItems возвращает позиции заказа пользователя.
func (s *Service) GetOrderItems(userID, orderID string) ([]domain.OrderItem, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// GetOrderItem возвращает одну позицию заказа пользователя.
func (s *Service) GetOrderItem(userID, orderID, itemID string) (domain.OrderItem, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return domain.OrderItem{}, err
	}
	return order.ItemByID(itemID)
}

// UpdateStatus переводит заказ в новый статус. Строка статуса разбирается
// регистронезависимо. При version conflict статус перечитывается и
// сохранение повторяется с экспоненциальной задержкой.
func (s *Service) UpdateStatus(orderID, statusRaw string) (domain.Order, error) {
	status, err := domain.ParseOrderStatus(statusRaw)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		if order.Status == status {
			return order, nil
		}

		order.Status = status
		order.UpdatedAt = time.Now().UTC()
		prevVersion := order.Version

		if err := s.orders.Save(order); err != nil {
			if domain.IsConflict(err) && attempt < maxStatusRetries-1 {
				s.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt + 1,
					"version":  order.Version,
				}).Warn("order version conflict, retrying")

				fresh, loadErr := s.orders.Get(orderID)
				if loadErr != nil {
					return domain.Order{}, loadErr
				}
				order = fresh

				time.Sleep(baseRetryDelay * time.Duration(1<<uint(attempt)))
				continue
			}
			return domain.Order{}, err
		}

		order.Version = prevVersion + 1
		if s.metrics != nil {
			s.metrics.RecordStatusChange()
		}
		s.emitEvent(&order, kafka.EventTypeOrderStatusChanged, map[string]interface{}{
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt.Format(time.RFC3339Nano),
			"ts":         order.UpdatedAt.Format(time.RFC3339Nano),
		})
		return order, nil
	}

	return domain.Order{}, domain.ErrOrderVersionConflict
}

// GetHistory возвращает события жизненного цикла заказа пользователя.
func (s *Service) GetHistory(userID, orderID string) ([]domain.TimelineEvent, error) {
	if _, err := s.GetOrder(userID, orderID); err != nil {
		return nil, err
	}
	return s.timeline.List(orderID)
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

func (s *Service) emitEvent(order *domain.Order, eventType kafka.EventType, payload map[string]interface{}) {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["order_id"] = order.ID

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	} else if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}

	if s.timeline == nil {
		return
	}

	occurred := order.UpdatedAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	event := domain.TimelineEvent{
		OrderID:  order.ID,
		Type:     string(eventType),
		Occurred: occurred,
	}
	if err := s.timeline.Append(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Warn("append timeline event failed")
	} else if s.metrics != nil {
		s.metrics.RecordTimelineEvent()
	}
}

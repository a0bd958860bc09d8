package api

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/service/checkout"
)

// HeaderIdempotencyKey — заголовок ключа идемпотентности на POST /orders.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyTTL определяет, как долго хранится сохранённый ответ
// до очистки фоновым воркером.
const idempotencyTTL = 24 * time.Hour

// OrderHandler обслуживает REST-операции оформления и жизненного цикла заказа.
type OrderHandler struct {
	svc         *checkout.Service
	idempotency domain.IdempotencyRepository
	logger      *log.Entry
}

// NewOrderHandler создаёт обработчик заказов. Репозиторий идемпотентности
// опционален: без него POST /orders обрабатывается без дедупликации.
func NewOrderHandler(svc *checkout.Service, idempotency domain.IdempotencyRepository, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "orders_api")
	}
	return &OrderHandler{svc: svc, idempotency: idempotency, logger: logger}
}

type createOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder оформляет заказ из корзины пользователя. При наличии заголовка
// Idempotency-Key повтор запроса с тем же телом возвращает сохранённый ответ,
// а не второй заказ.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "failed to read request body")
		return
	}

	var req createOrderRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
			return
		}
	}

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	if key == "" || h.idempotency == nil {
		h.createOrder(w, userID, req)
		return
	}

	requestHash := hashCreateOrderRequest(userID, body)

	if _, err := h.idempotency.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL)); err != nil {
		if errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
			h.replayOrConflict(w, key, requestHash)
			return
		}
		h.logger.WithError(err).WithField("key", key).Error("idempotency reservation failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	status, responseBody := h.createOrderBuffered(userID, req)

	mark := h.idempotency.MarkDone
	if status >= http.StatusBadRequest {
		mark = h.idempotency.MarkFailed
	}
	if err := mark(key, responseBody, status); err != nil {
		h.logger.WithError(err).WithField("key", key).Warn("idempotency record update failed")
	}

	writeRawJSON(w, status, responseBody)
}

// replayOrConflict обрабатывает повтор ключа: сохранённый ответ проигрывается
// заново, ключ с другим телом запроса отклоняется, незавершённая обработка
// отвечает конфликтом.
func (h *OrderHandler) replayOrConflict(w http.ResponseWriter, key, requestHash string) {
	record, err := h.idempotency.Get(key)
	if err != nil {
		h.logger.WithError(err).WithField("key", key).Error("idempotency lookup failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	if record.RequestHash != requestHash {
		respondError(w, http.StatusUnprocessableEntity, "idempotency_key_reused",
			domain.ErrIdempotencyHashMismatch.Error())
		return
	}

	switch record.Status {
	case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
		writeRawJSON(w, record.HTTPStatus, record.ResponseBody)
	default:
		respondError(w, http.StatusConflict, "request_in_progress",
			"request with this idempotency key is still being processed")
	}
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, userID string, req createOrderRequest) {
	order, err := h.svc.CreateOrder(userID, req.ShippingAddress)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newOrderView(order))
}

// createOrderBuffered выполняет оформление и сериализует ответ в память,
// чтобы его можно было сохранить в записи идемпотентности до отправки клиенту.
func (h *OrderHandler) createOrderBuffered(userID string, req createOrderRequest) (int, []byte) {
	order, err := h.svc.CreateOrder(userID, req.ShippingAddress)
	if err != nil {
		status, code := domainErrorStatus(err)
		message := err.Error()
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("create order failed")
			message = "internal server error"
		}
		body, _ := json.Marshal(ErrorResponse{Error: message, Code: code})
		return status, body
	}

	body, err := json.Marshal(newOrderView(order))
	if err != nil {
		h.logger.WithError(err).Error("failed to encode order response")
		body, _ = json.Marshal(ErrorResponse{Error: "internal server error", Code: "internal_error"})
		return http.StatusInternalServerError, body
	}
	return http.StatusCreated, body
}

// ListOrders возвращает заказы пользователя, новые первыми.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := parseIntParam(r.URL.Query().Get("limit"), 0)
	orders, err := h.svc.ListOrders(userID, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetOrder возвращает заказ пользователя.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(userID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(order))
}

// GetOrderItems возвращает позиции заказа.
func (h *OrderHandler) GetOrderItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.svc.GetOrderItems(userID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]orderItemView, 0, len(items))
	for _, item := range items {
		views = append(views, newOrderItemView(item))
	}
	respondJSON(w, http.StatusOK, views)
}

// GetOrderItem возвращает одну позицию заказа.
func (h *OrderHandler) GetOrderItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.GetOrderItem(userID, chi.URLParam(r, "orderID"), chi.URLParam(r, "itemID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderItemView(item))
}

// GetHistory возвращает события жизненного цикла заказа.
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	events, err := h.svc.GetHistory(userID, chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newTimelineEventViews(events))
}

// UpdateStatus переводит заказ в новый статус. Операция служебная
// и не привязана к владельцу заказа.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	order, err := h.svc.UpdateStatus(chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(order))
}

// hashCreateOrderRequest связывает ключ идемпотентности с пользователем и телом:
// тот же ключ с другим запросом считается ошибкой клиента.
func hashCreateOrderRequest(userID string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(userID))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

func writeRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			log.WithError(err).Warn("failed to write response")
		}
	}
}

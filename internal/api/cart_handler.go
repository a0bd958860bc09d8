package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/bookshop/internal/service/cart"
)

// CartHandler обслуживает REST-операции над корзиной текущего пользователя.
type CartHandler struct {
	svc *cart.Service
}

// NewCartHandler создаёт обработчик корзины.
func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

type addCartItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int32  `json:"quantity"`
}

type setCartQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

// GetCart возвращает корзину пользователя, создавая пустую при первом обращении.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	cartState, err := h.svc.GetCart(userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(cartState))
}

// AddItem добавляет книгу в корзину, сливая повтор с существующей позицией.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.BookID == "" {
		respondError(w, http.StatusBadRequest, "invalid_argument", "book_id is required")
		return
	}

	item, err := h.svc.AddItem(userID, req.BookID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCartItemView(item))
}

// UpdateItem заменяет количество в позиции корзины.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req setCartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	item, err := h.svc.SetItemQuantity(userID, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartItemView(item))
}

// RemoveItem удаляет позицию корзины.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(userID, chi.URLParam(r, "itemID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ClearCart очищает корзину. Повторная очистка пустой корзины успешна.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.svc.ClearCart(userID); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

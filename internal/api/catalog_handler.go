package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/service/catalog"
)

// CatalogHandler обслуживает REST-операции над каталогом: книги и категории.
type CatalogHandler struct {
	svc *catalog.Service
}

// NewCatalogHandler создаёт обработчик каталога.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type bookRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	CoverImage  string   `json:"cover_image"`
	CategoryIDs []string `json:"category_ids"`
}

func (req bookRequest) toInput() (catalog.BookInput, error) {
	priceMinor, err := domain.ParseAmountMinor(req.Price)
	if err != nil {
		return catalog.BookInput{}, err
	}
	return catalog.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		PriceMinor:  priceMinor,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		CategoryIDs: req.CategoryIDs,
	}, nil
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateBook добавляет книгу в каталог.
func (h *CatalogHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	book, err := h.svc.CreateBook(input)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newBookView(book))
}

// GetBook возвращает книгу по идентификатору.
func (h *CatalogHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.GetBook(chi.URLParam(r, "bookID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newBookView(book))
}

// SearchBooks возвращает страницу каталога. Фильтры передаются query-параметрами:
// title, author, isbn, category_id, price_min, price_max (десятичные строки),
// limit и offset.
func (h *CatalogHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domain.EmptyBookFilter()
	filter.Title = query.Get("title")
	filter.Author = query.Get("author")
	filter.ISBN = query.Get("isbn")
	filter.CategoryID = query.Get("category_id")

	if raw := query.Get("price_min"); raw != "" {
		minMinor, err := domain.ParseAmountMinor(raw)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		filter.PriceMinMinor = minMinor
	}
	if raw := query.Get("price_max"); raw != "" {
		maxMinor, err := domain.ParseAmountMinor(raw)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		filter.PriceMaxMinor = maxMinor
	}

	limit := parseIntParam(query.Get("limit"), 0)
	offset := parseIntParam(query.Get("offset"), 0)

	books, err := h.svc.SearchBooks(filter, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newBookViews(books))
}

// UpdateBook заменяет атрибуты книги.
func (h *CatalogHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	book, err := h.svc.UpdateBook(chi.URLParam(r, "bookID"), input)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newBookView(book))
}

// DeleteBook удаляет книгу из каталога.
func (h *CatalogHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBook(chi.URLParam(r, "bookID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// CreateCategory добавляет категорию.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	category, err := h.svc.CreateCategory(catalog.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCategoryView(category))
}

// GetCategory возвращает активную категорию.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.svc.GetCategory(chi.URLParam(r, "categoryID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryView(category))
}

// ListCategories возвращает все активные категории.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, newCategoryView(category))
	}
	respondJSON(w, http.StatusOK, views)
}

// ListCategoryBooks возвращает книги активной категории.
// Для удалённой или несуществующей категории отвечает NotFound.
func (h *CatalogHandler) ListCategoryBooks(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")
	if _, err := h.svc.GetCategory(categoryID); err != nil {
		respondDomainError(w, err)
		return
	}

	filter := domain.EmptyBookFilter()
	filter.CategoryID = categoryID

	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 0)
	offset := parseIntParam(query.Get("offset"), 0)

	books, err := h.svc.SearchBooks(filter, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newBookViews(books))
}

// UpdateCategory заменяет атрибуты категории.
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	category, err := h.svc.UpdateCategory(chi.URLParam(r, "categoryID"), catalog.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newCategoryView(category))
}

// DeleteCategory помечает категорию удалённой.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(chi.URLParam(r, "categoryID")); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func parseIntParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

package domain

import (
	"strings"
	"time"
)

// Book описывает книгу в каталоге.
type Book struct {
	ID          string
	Title       string
	Author      string
	ISBN        string
	PriceMinor  int64
	Description string
	CoverImage  string
	CategoryIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты книги и возвращает список замечаний.
func (b *Book) ValidateInvariants() []error {
	var errs []error

	if b.Title == "" {
		errs = append(errs, ErrTitleRequired)
	}
	if b.Author == "" {
		errs = append(errs, ErrAuthorRequired)
	}
	if b.ISBN == "" {
		errs = append(errs, ErrISBNRequired)
	}
	if b.PriceMinor < 0 {
		errs = append(errs, ErrPriceInvalid)
	}

	return errs
}

// BookFilter задаёт предикаты поиска по каталогу.
// Пустые поля не участвуют в фильтрации; PriceMinMinor/PriceMaxMinor < 0 означает
// отсутствие границы.
type BookFilter struct {
	Title         string
	Author        string
	ISBN          string
	PriceMinMinor int64
	PriceMaxMinor int64
	CategoryID    string
}

// EmptyBookFilter возвращает фильтр без ограничений.
func EmptyBookFilter() BookFilter {
	return BookFilter{PriceMinMinor: -1, PriceMaxMinor: -1}
}

// Matches проверяет книгу на соответствие фильтру (in-memory реализация предикатов).
func (f BookFilter) Matches(b Book) bool {
	if f.Title != "" && !containsFold(b.Title, f.Title) {
		return false
	}
	if f.Author != "" && !containsFold(b.Author, f.Author) {
		return false
	}
	if f.ISBN != "" && b.ISBN != f.ISBN {
		return false
	}
	if f.PriceMinMinor >= 0 && b.PriceMinor < f.PriceMinMinor {
		return false
	}
	if f.PriceMaxMinor >= 0 && b.PriceMinor > f.PriceMaxMinor {
		return false
	}
	if f.CategoryID != "" {
		found := false
		for _, id := range b.CategoryIDs {
			if id == f.CategoryID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

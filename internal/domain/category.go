package domain

import "time"

// Category описывает категорию каталога.
// Удаление категории мягкое: запись помечается Deleted и исключается из чтений,
// но ссылки на её ID в книгах сохраняются.
type Category struct {
	ID          string
	Name        string
	Description string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateInvariants проверяет базовые инварианты категории.
func (c *Category) ValidateInvariants() []error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrCategoryNameRequired)
	}
	return errs
}

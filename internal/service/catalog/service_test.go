package catalog

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
	"github.com/vladislavdragonenkov/bookshop/internal/storage/memory"
)

func newTestService() *Service {
	store := memory.NewStore()
	return New(memory.NewBookRepository(store), memory.NewCategoryRepository(store), nil)
}

func validBookInput() BookInput {
	return BookInput{
		Title:      "The Pragmatic Programmer",
		Author:     "Hunt, Thomas",
		ISBN:       "978-0135957059",
		PriceMinor: 3995,
	}
}

func TestCreateBook(t *testing.T) {
	svc := newTestService()

	book, err := svc.CreateBook(validBookInput())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	if book.ID == "" {
		t.Fatal("expected generated book id")
	}

	got, err := svc.GetBook(book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Title != book.Title || got.PriceMinor != 3995 {
		t.Fatalf("unexpected book: %+v", got)
	}
}

func TestCreateBook_Validation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name    string
		mutate  func(*BookInput)
		wantErr error
	}{
		{"missing title", func(in *BookInput) { in.Title = "" }, domain.ErrTitleRequired},
		{"missing author", func(in *BookInput) { in.Author = "" }, domain.ErrAuthorRequired},
		{"missing isbn", func(in *BookInput) { in.ISBN = "" }, domain.ErrISBNRequired},
		{"negative price", func(in *BookInput) { in.PriceMinor = -1 }, domain.ErrPriceInvalid},
		{"unknown category", func(in *BookInput) { in.CategoryIDs = []string{"ghost"} }, domain.ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validBookInput()
			tt.mutate(&input)
			if _, err := svc.CreateBook(input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateBook_DuplicateISBN(t *testing.T) {
	svc := newTestService()

	if _, err := svc.CreateBook(validBookInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateBook(validBookInput()); !errors.Is(err, domain.ErrISBNExists) {
		t.Fatalf("expected ErrISBNExists, got %v", err)
	}
}

func TestUpdateBook(t *testing.T) {
	svc := newTestService()

	book, err := svc.CreateBook(validBookInput())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	input := validBookInput()
	input.Title = "The Pragmatic Programmer, 20th Anniversary"
	input.PriceMinor = 4495
	updated, err := svc.UpdateBook(book.ID, input)
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if updated.Title != input.Title || updated.PriceMinor != 4495 {
		t.Fatalf("unexpected updated book: %+v", updated)
	}

	if _, err := svc.UpdateBook("missing", input); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestDeleteBook(t *testing.T) {
	svc := newTestService()

	book, err := svc.CreateBook(validBookInput())
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	if err := svc.DeleteBook(book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, err := svc.GetBook(book.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound after delete, got %v", err)
	}
	if err := svc.DeleteBook(book.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound on second delete, got %v", err)
	}
}

func TestSearchBooks(t *testing.T) {
	svc := newTestService()

	category, err := svc.CreateCategory(CategoryInput{Name: "Programming"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	first := validBookInput()
	first.CategoryIDs = []string{category.ID}
	if _, err := svc.CreateBook(first); err != nil {
		t.Fatalf("create first book: %v", err)
	}

	second := BookInput{Title: "War and Peace", Author: "Tolstoy", ISBN: "isbn-wp", PriceMinor: 1099}
	if _, err := svc.CreateBook(second); err != nil {
		t.Fatalf("create second book: %v", err)
	}

	filter := domain.EmptyBookFilter()
	filter.Author = "tolstoy"
	found, err := svc.SearchBooks(filter, 0, 0)
	if err != nil {
		t.Fatalf("search by author: %v", err)
	}
	if len(found) != 1 || found[0].Title != "War and Peace" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	filter = domain.EmptyBookFilter()
	filter.CategoryID = category.ID
	found, err = svc.SearchBooks(filter, 0, 0)
	if err != nil {
		t.Fatalf("search by category: %v", err)
	}
	if len(found) != 1 || found[0].ISBN != first.ISBN {
		t.Fatalf("unexpected category result: %+v", found)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	svc := newTestService()

	if _, err := svc.CreateCategory(CategoryInput{}); !errors.Is(err, domain.ErrCategoryNameRequired) {
		t.Fatalf("expected ErrCategoryNameRequired, got %v", err)
	}

	category, err := svc.CreateCategory(CategoryInput{Name: "Science"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	updated, err := svc.UpdateCategory(category.ID, CategoryInput{Name: "Science", Description: "Popular science"})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Description != "Popular science" {
		t.Fatalf("unexpected category: %+v", updated)
	}

	if err := svc.DeleteCategory(category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := svc.GetCategory(category.ID); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound after soft delete, got %v", err)
	}

	listed, err := svc.ListCategories()
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no active categories, got %+v", listed)
	}
}

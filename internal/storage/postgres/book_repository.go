package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // postgres dialect
	"github.com/jmoiron/sqlx"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

const dialectPostgres = "postgres"

type bookRepository struct {
	db  *sql.DB
	dbx *sqlx.DB
}

// bookRow — проекция строки books для sqlx.
type bookRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Author      string    `db:"author"`
	ISBN        string    `db:"isbn"`
	PriceMinor  int64     `db:"price_minor"`
	Description string    `db:"description"`
	CoverImage  string    `db:"cover_image"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// NewBookRepository создаёт PostgreSQL-реализацию BookRepository.
// Динамические предикаты поиска собираются через goqu, строки читаются sqlx.
func NewBookRepository(store *Store) domain.BookRepository {
	return &bookRepository{db: store.DB(), dbx: store.DBX()}
}

func (r *bookRepository) Create(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (id, title, author, isbn, price_minor, description, cover_image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		book.ID, book.Title, book.Author, book.ISBN, book.PriceMinor,
		book.Description, book.CoverImage, book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrISBNExists
		}
		return fmt.Errorf("insert book: %w", err)
	}

	if err = insertBookCategories(ctx, tx, book.ID, book.CategoryIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create book: %w", err)
	}

	return nil
}

func (r *bookRepository) Get(id string) (domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var row bookRow
	err := r.dbx.GetContext(ctx, &row, `
		SELECT id, title, author, isbn, price_minor, description, cover_image, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("select book: %w", err)
	}

	book := row.toDomain()
	book.CategoryIDs, err = r.loadCategoryIDs(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}

	return book, nil
}

// List строит запрос из непустых предикатов фильтра.
func (r *bookRepository) List(filter domain.BookFilter, limit, offset int) ([]domain.Book, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	ds := goqu.Dialect(dialectPostgres).
		From("books").
		Select("id", "title", "author", "isbn", "price_minor", "description", "cover_image", "created_at", "updated_at")

	if filter.Title != "" {
		ds = ds.Where(goqu.I("title").ILike("%" + filter.Title + "%"))
	}
	if filter.Author != "" {
		ds = ds.Where(goqu.I("author").ILike("%" + filter.Author + "%"))
	}
	if filter.ISBN != "" {
		ds = ds.Where(goqu.I("isbn").Eq(filter.ISBN))
	}
	if filter.PriceMinMinor >= 0 {
		ds = ds.Where(goqu.I("price_minor").Gte(filter.PriceMinMinor))
	}
	if filter.PriceMaxMinor >= 0 {
		ds = ds.Where(goqu.I("price_minor").Lte(filter.PriceMaxMinor))
	}
	if filter.CategoryID != "" {
		ds = ds.Where(goqu.I("id").In(
			goqu.From("book_categories").
				Select("book_id").
				Where(goqu.I("category_id").Eq(filter.CategoryID)),
		))
	}

	ds = ds.Order(goqu.I("created_at").Asc(), goqu.I("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	if offset > 0 {
		ds = ds.Offset(uint(offset))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build book list query: %w", err)
	}

	var rows []bookRow
	if err := r.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	books := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		book := row.toDomain()
		book.CategoryIDs, err = r.loadCategoryIDs(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, nil
}

func (r *bookRepository) Update(book domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET title = $1,
		    author = $2,
		    isbn = $3,
		    price_minor = $4,
		    description = $5,
		    cover_image = $6,
		    updated_at = $7
		WHERE id = $8
	`,
		book.Title, book.Author, book.ISBN, book.PriceMinor,
		book.Description, book.CoverImage, book.UpdatedAt, book.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrISBNExists
		}
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM book_categories WHERE book_id = $1`, book.ID); err != nil {
		return fmt.Errorf("reset book categories: %w", err)
	}
	if err = insertBookCategories(ctx, tx, book.ID, book.CategoryIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update book: %w", err)
	}

	return nil
}

// Delete жёстко удаляет книгу; связки категорий и позиции корзин
// убираются каскадом через FK ON DELETE CASCADE.
func (r *bookRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrBookNotFound
	}

	return nil
}

func (r *bookRepository) loadCategoryIDs(ctx context.Context, bookID string) ([]string, error) {
	var ids []string
	if err := r.dbx.SelectContext(ctx, &ids, `
		SELECT category_id FROM book_categories WHERE book_id = $1 ORDER BY category_id
	`, bookID); err != nil {
		return nil, fmt.Errorf("load book categories: %w", err)
	}
	return ids, nil
}

func insertBookCategories(ctx context.Context, tx *sql.Tx, bookID string, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO book_categories (book_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, bookID, categoryID); err != nil {
			return fmt.Errorf("insert book category: %w", err)
		}
	}
	return nil
}

func (row bookRow) toDomain() domain.Book {
	return domain.Book{
		ID:          row.ID,
		Title:       row.Title,
		Author:      row.Author,
		ISBN:        row.ISBN,
		PriceMinor:  row.PriceMinor,
		Description: row.Description,
		CoverImage:  row.CoverImage,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

var _ domain.BookRepository = (*bookRepository)(nil)

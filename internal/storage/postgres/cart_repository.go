package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bookshop/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
// Уникальный индекс cart_items(user_id, book_id) гарантирует отсутствие
// дублей при конкурентных добавлениях, версия строки — optimistic locking.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

// GetByUser возвращает корзину пользователя, лениво создавая запись carts.
func (r *cartRepository) GetByUser(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.ensureCart(ctx, userID); err != nil {
		return domain.Cart{}, err
	}

	var createdAt time.Time
	if err := r.db.QueryRowContext(ctx, `
		SELECT created_at FROM carts WHERE user_id = $1
	`, userID).Scan(&createdAt); err != nil {
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, book_id, quantity, version, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.BookID, &item.Quantity, &item.Version, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}

	return domain.Cart{
		UserID:    userID,
		Items:     items,
		CreatedAt: createdAt,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// GetItem возвращает позицию только из корзины запрашивающего пользователя.
func (r *cartRepository) GetItem(userID, itemID string) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanItem(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, book_id, quantity, version, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND id = $2
	`, userID, itemID))
}

// FindItemByBook возвращает позицию по книге или ErrCartItemNotFound.
func (r *cartRepository) FindItemByBook(userID, bookID string) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanItem(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, book_id, quantity, version, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND book_id = $2
	`, userID, bookID))
}

// CreateItem сохраняет новую позицию; занятая пара (корзина, книга)
// превращается в ErrCartItemExists через нарушение уникального индекса.
func (r *cartRepository) CreateItem(item domain.CartItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.ensureCart(ctx, item.UserID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, user_id, book_id, quantity, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, item.ID, item.UserID, item.BookID, item.Quantity, item.Version, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCartItemExists
		}
		return fmt.Errorf("insert cart item: %w", err)
	}

	return nil
}

// SaveItem применяет изменения с проверкой версии.
func (r *cartRepository) SaveItem(item domain.CartItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1,
		    version = version + 1,
		    updated_at = $2
		WHERE id = $3
		  AND user_id = $4
		  AND version = $5
	`, item.Quantity, time.Now().UTC(), item.ID, item.UserID, item.Version)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetItem(item.UserID, item.ID); err != nil {
			return err
		}
		return domain.ErrCartConflict
	}

	return nil
}

// DeleteItem удаляет позицию из корзины пользователя.
func (r *cartRepository) DeleteItem(userID, itemID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1 AND id = $2
	`, userID, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}

	return nil
}

// Clear удаляет все позиции корзины; пустая корзина очищается без ошибки.
func (r *cartRepository) Clear(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.ensureCart(ctx, userID); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

func (r *cartRepository) ensureCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (user_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure cart: %w", err)
	}
	return nil
}

func (r *cartRepository) scanItem(row *sql.Row) (domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.UserID, &item.BookID, &item.Quantity, &item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, fmt.Errorf("scan cart item: %w", err)
	}
	return item, nil
}

var _ domain.CartRepository = (*cartRepository)(nil)

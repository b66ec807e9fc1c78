package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maharab2134/deshishop/internal/domain/cart"
)

const (
	getCartLinesSQL = `SELECT product_id, quantity, added_at
		FROM cart_items WHERE user_id = $1 ORDER BY added_at, product_id`

	setCartLineSQL = `INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	removeCartLineSQL = `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	clearCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. The
// (user_id, product_id) primary key keeps every product on at most one line
// per cart.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart. A user without stored lines gets an empty cart.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartLinesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		var l cart.Line
		err := row.Scan(&l.ProductID, &l.Quantity, &l.AddedAt)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	return &cart.Cart{UserID: userID, Lines: lines}, nil
}

// SetLine upserts the line for productID with the given quantity.
func (r *CartRepository) SetLine(ctx context.Context, userID, productID string, quantity int) error {
	_, err := r.pool.Exec(ctx, setCartLineSQL, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("setting cart line (%q, %q): %w", userID, productID, err)
	}
	return nil
}

// RemoveLine deletes the line for productID. A missing line is a no-op.
func (r *CartRepository) RemoveLine(ctx context.Context, userID, productID string) error {
	_, err := r.pool.Exec(ctx, removeCartLineSQL, userID, productID)
	if err != nil {
		return fmt.Errorf("removing cart line (%q, %q): %w", userID, productID, err)
	}
	return nil
}

// Clear deletes all lines. Clearing an empty cart is a no-op.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, clearCartSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", userID, err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Maharab2134/deshishop/internal/domain/order"
	"github.com/Maharab2134/deshishop/internal/domain/product"
)

const (
	insertOrderSQL = `INSERT INTO orders (
			id, user_id, subtotal, discount, shipping, tax, total, coupon_code,
			shipping_address, phone, payment_method, status, payment_status,
			bkash_account_number, bkash_transaction_id, payment_reference_id,
			idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			NULLIF($17, ''))
		RETURNING created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`

	// Conditional decrement: no row is touched when stock would go negative.
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2`

	currentStockSQL = `SELECT stock FROM products WHERE id = $1`

	getOrderSQL = `SELECT id, user_id, subtotal, discount, shipping, tax, total, coupon_code,
			shipping_address, phone, payment_method, status, payment_status,
			bkash_account_number, bkash_transaction_id, payment_reference_id,
			COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE id = $1`

	findOrderByKeySQL = `SELECT id, user_id, subtotal, discount, shipping, tax, total, coupon_code,
			shipping_address, phone, payment_method, status, payment_status,
			bkash_account_number, bkash_transaction_id, payment_reference_id,
			COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE user_id = $1 AND idempotency_key = $2`

	listOrdersByUserSQL = `SELECT id, user_id, subtotal, discount, shipping, tax, total, coupon_code,
			shipping_address, phone, payment_method, status, payment_status,
			bkash_account_number, bkash_transaction_id, payment_reference_id,
			COALESCE(idempotency_key, ''), created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	listAllOrdersSQL = `SELECT id, user_id, subtotal, discount, shipping, tax, total, coupon_code,
			shipping_address, phone, payment_method, status, payment_status,
			bkash_account_number, bkash_transaction_id, payment_reference_id,
			COALESCE(idempotency_key, ''), created_at
		FROM orders ORDER BY created_at DESC`

	getOrderItemsSQL = `SELECT product_id, name, unit_price, quantity, line_total
		FROM order_items WHERE order_id = $1 ORDER BY product_id`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	updatePaymentStatusSQL = `UPDATE orders SET payment_status = $2 WHERE id = $1`

	clearUserCartSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order, its lines, the stock decrements, and the cart
// clear in one transaction. A line whose conditional decrement touches no
// row aborts the whole transaction with *product.InsufficientStockError, so
// the cart is only cleared when the order is durably written.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Subtotal, o.Discount, o.Shipping, o.Tax, o.Total, o.CouponCode,
		o.ShippingAddress, o.Phone, string(o.Method), string(o.Status), string(o.PaymentStatus),
		o.Bkash.AccountNumber, o.Bkash.TransactionID, o.Bkash.ReferenceID,
		o.IdempotencyKey,
	).Scan(&o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return order.ErrDuplicateRequest
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, line := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, line.ProductID, line.Name, line.UnitPrice, line.Quantity, line.LineTotal,
		); err != nil {
			return fmt.Errorf("creating order item %q: %w", line.ProductID, err)
		}

		tag, err := tx.Exec(ctx, decrementStockSQL, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", line.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			available := 0
			// Best effort within the doomed tx; defaults to 0 if the row vanished.
			_ = tx.QueryRow(ctx, currentStockSQL, line.ProductID).Scan(&available)
			return &product.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: available,
			}
		}
	}

	if _, err := tx.Exec(ctx, clearUserCartSQL, o.UserID); err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// FindByIdempotencyKey returns the order a previous request with the same
// key created, or order.ErrNotFound.
func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrderByKeySQL, userID, key)
	if err != nil {
		return nil, fmt.Errorf("finding order by idempotency key: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("finding order by idempotency key: %w", err)
	}

	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first, with lines.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return r.collectWithLines(ctx, rows)
}

// ListAll returns every order, newest first, with lines.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return r.collectWithLines(ctx, rows)
}

// UpdateStatus sets the fulfilment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdatePaymentStatus sets the payment status.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx, updatePaymentStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating payment status for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) collectWithLines(ctx context.Context, rows pgx.Rows) ([]order.Order, error) {
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *OrderRepository) loadLines(ctx context.Context, o *order.Order) error {
	rows, err := r.pool.Query(ctx, getOrderItemsSQL, o.ID)
	if err != nil {
		return fmt.Errorf("getting items for order %q: %w", o.ID, err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Line, error) {
		var (
			l         order.Line
			unitPrice decimal.Decimal
			lineTotal decimal.Decimal
		)
		err := row.Scan(&l.ProductID, &l.Name, &unitPrice, &l.Quantity, &lineTotal)
		l.UnitPrice = unitPrice
		l.LineTotal = lineTotal
		return l, err
	})
	if err != nil {
		return fmt.Errorf("getting items for order %q: %w", o.ID, err)
	}

	o.Lines = lines
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		method        string
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.Discount, &o.Shipping, &o.Tax, &o.Total, &o.CouponCode,
		&o.ShippingAddress, &o.Phone, &method, &status, &paymentStatus,
		&o.Bkash.AccountNumber, &o.Bkash.TransactionID, &o.Bkash.ReferenceID,
		&o.IdempotencyKey, &o.CreatedAt,
	)
	o.Method = order.PaymentMethod(method)
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)
	return o, err
}

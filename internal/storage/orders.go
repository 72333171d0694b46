package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/storebot/internal/models"
)

// OrderRepo persists manual-channel orders.
type OrderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo binds the repository to a database handle.
func NewOrderRepo(db *sqlx.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create inserts a pending order and returns its id.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) (int64, error) {
	const q = `
		INSERT INTO orders (user_id, display_name, product_id, amount, status, photo_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, q,
		o.UserID, o.DisplayName, o.ProductID, o.Amount, o.Status, o.PhotoPath,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// ByID returns the order with the given id, or nil if it does not exist.
func (r *OrderRepo) ByID(ctx context.Context, id int64) (*models.Order, error) {
	const q = `SELECT * FROM orders WHERE id = $1`
	var o models.Order
	if err := r.db.GetContext(ctx, &o, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	return &o, nil
}

// Pending lists orders awaiting review, oldest first.
func (r *OrderRepo) Pending(ctx context.Context) ([]models.Order, error) {
	const q = `SELECT * FROM orders WHERE status = $1 ORDER BY created_at`
	var out []models.Order
	if err := r.db.SelectContext(ctx, &out, q, models.OrderStatusPending); err != nil {
		return nil, fmt.Errorf("select pending orders: %w", err)
	}
	return out, nil
}

// MarkClosed transitions a pending order to closed.
// Returns false when the order is missing or already closed.
func (r *OrderRepo) MarkClosed(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, q, id, models.OrderStatusClosed, models.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("close order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close order rows: %w", err)
	}
	return n > 0, nil
}

// ClosedBefore lists closed orders created before the cutoff.
func (r *OrderRepo) ClosedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	const q = `SELECT * FROM orders WHERE status = $1 AND created_at < $2`
	var out []models.Order
	if err := r.db.SelectContext(ctx, &out, q, models.OrderStatusClosed, cutoff); err != nil {
		return nil, fmt.Errorf("select closed orders: %w", err)
	}
	return out, nil
}

// Delete removes an order row.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM orders WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

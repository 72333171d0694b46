package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/storebot/internal/models"
)

// PaymentRepo persists token-channel payments keyed by correlation payload.
type PaymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo binds the repository to a database handle.
func NewPaymentRepo(db *sqlx.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create inserts a pending payment row and returns its id.
func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) (int64, error) {
	const q = `
		INSERT INTO payments (user_id, product_id, amount, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, q,
		p.UserID, p.ProductID, p.Amount, p.Payload, p.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

// ByPayload returns the payment with the given correlation token, or nil.
func (r *PaymentRepo) ByPayload(ctx context.Context, payload string) (*models.Payment, error) {
	const q = `SELECT * FROM payments WHERE payload = $1`
	var p models.Payment
	if err := r.db.GetContext(ctx, &p, q, payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select payment: %w", err)
	}
	return &p, nil
}

// SetStatus updates the payment status by payload.
func (r *PaymentRepo) SetStatus(ctx context.Context, payload, status string) error {
	const q = `UPDATE payments SET status = $2 WHERE payload = $1`
	if _, err := r.db.ExecContext(ctx, q, payload, status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// Complete records provider charge identifiers and marks the payment completed.
func (r *PaymentRepo) Complete(ctx context.Context, payload string, telegramChargeID, providerChargeID *string) error {
	const q = `
		UPDATE payments
		SET status = $2, telegram_charge_id = $3, provider_charge_id = $4
		WHERE payload = $1`
	if _, err := r.db.ExecContext(ctx, q, payload, models.PaymentStatusCompleted, telegramChargeID, providerChargeID); err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/storebot/internal/models"
)

// ProductRepo persists purchasable products.
type ProductRepo struct {
	db *sqlx.DB
}

// NewProductRepo binds the repository to a database handle.
func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create inserts a product and returns its id.
func (r *ProductRepo) Create(ctx context.Context, p *models.Product) (int64, error) {
	const q = `
		INSERT INTO products (name, description, price, token_price, category_id, activation_instruction, photo_path, channel)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, q,
		p.Name, p.Description, p.Price, p.TokenPrice, p.CategoryID,
		p.ActivationInstruction, p.PhotoPath, p.Channel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// ByID returns the product with the given id, or nil if it does not exist.
func (r *ProductRepo) ByID(ctx context.Context, id int64) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

// ByCategory lists products of a category ordered by name.
func (r *ProductRepo) ByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	const q = `SELECT * FROM products WHERE category_id = $1 ORDER BY name`
	var out []models.Product
	if err := r.db.SelectContext(ctx, &out, q, categoryID); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return out, nil
}

// CountByCategory returns the number of products in a category.
func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM products WHERE category_id = $1`
	var n int
	if err := r.db.GetContext(ctx, &n, q, categoryID); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Delete removes a single product row.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM products WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/storebot/internal/models"
)

// CategoryRepo persists catalog categories.
type CategoryRepo struct {
	db *sqlx.DB
}

// NewCategoryRepo binds the repository to a database handle.
func NewCategoryRepo(db *sqlx.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a category and returns its id.
func (r *CategoryRepo) Create(ctx context.Context, cat *models.Category) (int64, error) {
	const q = `
		INSERT INTO categories (name, description, photo_path, channel)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	err := r.db.QueryRowxContext(ctx, q, cat.Name, cat.Description, cat.PhotoPath, cat.Channel).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

// ByID returns the category with the given id, or nil if it does not exist.
func (r *CategoryRepo) ByID(ctx context.Context, id int64) (*models.Category, error) {
	const q = `SELECT * FROM categories WHERE id = $1`
	var cat models.Category
	if err := r.db.GetContext(ctx, &cat, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &cat, nil
}

// ByChannel lists categories of a fulfillment channel ordered by name.
func (r *CategoryRepo) ByChannel(ctx context.Context, ch models.Channel) ([]models.Category, error) {
	const q = `SELECT * FROM categories WHERE channel = $1 ORDER BY name`
	var cats []models.Category
	if err := r.db.SelectContext(ctx, &cats, q, ch); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return cats, nil
}

// Delete removes the category row. Products must be removed beforehand.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM categories WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

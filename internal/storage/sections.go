package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/storebot/internal/models"
)

// SectionRepo persists singleton content sections.
type SectionRepo struct {
	db *sqlx.DB
}

// NewSectionRepo binds the repository to a database handle.
func NewSectionRepo(db *sqlx.DB) *SectionRepo {
	return &SectionRepo{db: db}
}

// ByKey returns the section with the given key, or nil if it does not exist.
func (r *SectionRepo) ByKey(ctx context.Context, key string) (*models.Section, error) {
	const q = `SELECT * FROM sections WHERE key = $1`
	var s models.Section
	if err := r.db.GetContext(ctx, &s, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select section: %w", err)
	}
	return &s, nil
}

// Update replaces the content and photo of a section in place.
func (r *SectionRepo) Update(ctx context.Context, key, content string, photoPath *string) error {
	const q = `
		UPDATE sections
		SET content = $2, photo_path = $3, updated_at = NOW()
		WHERE key = $1`
	if _, err := r.db.ExecContext(ctx, q, key, content, photoPath); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Seed inserts a section if it is not present yet.
func (r *SectionRepo) Seed(ctx context.Context, key, content string) error {
	const q = `
		INSERT INTO sections (key, content)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, q, key, content); err != nil {
		return fmt.Errorf("seed section: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/storage"
)

// CategoryStore is the persistence contract required by the catalog service.
type CategoryStore interface {
	Create(ctx context.Context, cat *models.Category) (int64, error)
	ByID(ctx context.Context, id int64) (*models.Category, error)
	ByChannel(ctx context.Context, ch models.Channel) ([]models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// ProductStore is the persistence contract for products.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) (int64, error)
	ByID(ctx context.Context, id int64) (*models.Product, error)
	ByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryListing pairs a category with its product count for menu rendering.
type CategoryListing struct {
	Category models.Category
	Products int
}

// CatalogService provides catalog projections for both shop and admin flows.
type CatalogService struct {
	categories CategoryStore
	products   ProductStore
}

// NewCatalogService wires the catalog service with its stores.
func NewCatalogService(categories CategoryStore, products ProductStore) *CatalogService {
	return &CatalogService{categories: categories, products: products}
}

// CreateCategory validates and persists a new category.
// Duplicate names map to ErrDuplicateName.
func (s *CatalogService) CreateCategory(ctx context.Context, cat *models.Category) (int64, error) {
	if !cat.Channel.Valid() {
		return 0, ErrInvalidProduct
	}
	id, err := s.categories.Create(ctx, cat)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, ErrDuplicateName
		}
		return 0, err
	}
	logger.Info(ctx, "service.catalog", "category.created",
		slog.Int64("category_id", id),
		slog.String("channel", string(cat.Channel)),
	)
	return id, nil
}

// Category returns a category by id or ErrNotFound.
func (s *CatalogService) Category(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.categories.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// Categories lists categories of a channel with per-category product counts.
func (s *CatalogService) Categories(ctx context.Context, ch models.Channel) ([]CategoryListing, error) {
	cats, err := s.categories.ByChannel(ctx, ch)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryListing, 0, len(cats))
	for _, cat := range cats {
		n, err := s.products.CountByCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryListing{Category: cat, Products: n})
	}
	return out, nil
}

// CreateProduct persists a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	if !p.Channel.Valid() {
		return 0, ErrInvalidProduct
	}
	if _, err := s.Category(ctx, p.CategoryID); err != nil {
		return 0, err
	}
	id, err := s.products.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	logger.Info(ctx, "service.catalog", "product.created",
		slog.Int64("product_id", id),
		slog.Int64("category_id", p.CategoryID),
		slog.String("channel", string(p.Channel)),
	)
	return id, nil
}

// Product returns a product by id or ErrNotFound.
func (s *CatalogService) Product(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Products lists products of a category.
func (s *CatalogService) Products(ctx context.Context, categoryID int64) ([]models.Product, error) {
	return s.products.ByCategory(ctx, categoryID)
}

// DeleteProduct removes a single product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.Product(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info(ctx, "service.catalog", "product.deleted",
		slog.Int64("product_id", id),
	)
	return nil
}

// DeleteCategoryCascade removes every product of the category one by one,
// then the category itself. Each step is logged so the cascade stays
// observable; the count of removed products is returned.
func (s *CatalogService) DeleteCategoryCascade(ctx context.Context, categoryID int64) (int, error) {
	if _, err := s.Category(ctx, categoryID); err != nil {
		return 0, err
	}
	prods, err := s.products.ByCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, p := range prods {
		if err := s.products.Delete(ctx, p.ID); err != nil {
			return removed, err
		}
		removed++
		logger.Info(ctx, "service.catalog", "category.cascade.product_deleted",
			slog.Int64("category_id", categoryID),
			slog.Int64("product_id", p.ID),
		)
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return removed, err
	}
	logger.Info(ctx, "service.catalog", "category.deleted",
		slog.Int64("category_id", categoryID),
		slog.Int("count", removed),
	)
	return removed, nil
}

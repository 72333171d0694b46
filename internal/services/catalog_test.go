package services

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/storebot/internal/models"
)

func newCatalog() (*CatalogService, *memCategories, *memProducts) {
	cats := newMemCategories()
	prods := newMemProducts()
	return NewCatalogService(cats, prods), cats, prods
}

func TestCreateCategoryThenList(t *testing.T) {
	svc, _, _ := newCatalog()
	ctx := context.Background()

	id, err := svc.CreateCategory(ctx, &models.Category{Name: "VPN", Channel: models.ChannelManual})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	listings, err := svc.Categories(ctx, models.ChannelManual)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 1 || listings[0].Category.Name != "VPN" {
		t.Fatalf("unexpected listings: %+v", listings)
	}
	if listings[0].Products != 0 {
		t.Fatalf("expected zero products, got %d", listings[0].Products)
	}

	// The other channel stays empty.
	other, err := svc.Categories(ctx, models.ChannelToken)
	if err != nil {
		t.Fatalf("list token: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("token channel should be empty, got %+v", other)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	svc, _, _ := newCatalog()
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, &models.Category{Name: "Keys", Channel: models.ChannelToken}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.CreateCategory(ctx, &models.Category{Name: "Keys", Channel: models.ChannelToken})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestCreateProductRequiresCategory(t *testing.T) {
	svc, _, _ := newCatalog()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &models.Product{
		Name:       "Orphan",
		CategoryID: 42,
		Channel:    models.ChannelManual,
		Price:      10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProductNotFoundDistinctFromCategory(t *testing.T) {
	svc, _, _ := newCatalog()
	ctx := context.Background()

	if _, err := svc.Product(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("product err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Category(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("category err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCategoryCascade(t *testing.T) {
	svc, cats, prods := newCatalog()
	ctx := context.Background()

	catID, err := svc.CreateCategory(ctx, &models.Category{Name: "Games", Channel: models.ChannelManual})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	for _, name := range []string{"A", "B", "C"} {
		if _, err := svc.CreateProduct(ctx, &models.Product{
			Name:       name,
			CategoryID: catID,
			Channel:    models.ChannelManual,
			Price:      5,
		}); err != nil {
			t.Fatalf("create product %s: %v", name, err)
		}
	}

	removed, err := svc.DeleteCategoryCascade(ctx, catID)
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	if got, _ := prods.CountByCategory(ctx, catID); got != 0 {
		t.Fatalf("products left: %d", got)
	}
	if cat, _ := cats.ByID(ctx, catID); cat != nil {
		t.Fatal("category should be gone")
	}
}

func TestDeleteCategoryCascadeMissing(t *testing.T) {
	svc, _, _ := newCatalog()
	if _, err := svc.DeleteCategoryCascade(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCategoriesCarryProductCounts(t *testing.T) {
	svc, _, _ := newCatalog()
	ctx := context.Background()

	catID, _ := svc.CreateCategory(ctx, &models.Category{Name: "Accounts", Channel: models.ChannelToken})
	for i := 0; i < 2; i++ {
		if _, err := svc.CreateProduct(ctx, &models.Product{
			Name:       "acc",
			CategoryID: catID,
			Channel:    models.ChannelToken,
			TokenPrice: 100,
		}); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	listings, err := svc.Categories(ctx, models.ChannelToken)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 1 || listings[0].Products != 2 {
		t.Fatalf("unexpected listings: %+v", listings)
	}
}

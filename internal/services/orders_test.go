package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m3rciful/storebot/internal/models"
)

func seedProduct(t *testing.T, prods *memProducts, price float64) int64 {
	t.Helper()
	id, err := prods.Create(context.Background(), &models.Product{
		Name:    "Test key",
		Price:   price,
		Channel: models.ChannelManual,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func TestCreateFromReceiptNotifiesApprovers(t *testing.T) {
	orders := newMemOrders()
	prods := newMemProducts()
	notifier := &fakeNotifier{}
	svc := NewOrderService(orders, prods, &fakeFiles{}, notifier)
	ctx := context.Background()

	productID := seedProduct(t, prods, 49.90)
	order, err := svc.CreateFromReceipt(ctx, 100, "alice", productID, "receipts/r1.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if order.Amount != 49.90 {
		t.Fatalf("amount = %v, want product price", order.Amount)
	}
	if len(notifier.orders) != 1 || notifier.orders[0] != order.ID {
		t.Fatalf("notifier saw %v", notifier.orders)
	}
}

func TestCreateFromReceiptUnknownProduct(t *testing.T) {
	files := &fakeFiles{}
	svc := NewOrderService(newMemOrders(), newMemProducts(), files, nil)
	_, err := svc.CreateFromReceipt(context.Background(), 100, "alice", 5, "receipts/r1.jpg")
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("err = %v, want ErrInvalidProduct", err)
	}
	if len(files.removed) != 1 || files.removed[0] != "receipts/r1.jpg" {
		t.Fatalf("removed = %v, want the orphaned receipt", files.removed)
	}
}

type failingOrders struct {
	*memOrders
}

func (f *failingOrders) Create(context.Context, *models.Order) (int64, error) {
	return 0, errors.New("insert failed")
}

func TestCreateFromReceiptRemovesPhotoOnStoreFailure(t *testing.T) {
	prods := newMemProducts()
	files := &fakeFiles{}
	svc := NewOrderService(&failingOrders{newMemOrders()}, prods, files, nil)
	ctx := context.Background()

	productID := seedProduct(t, prods, 25)
	_, err := svc.CreateFromReceipt(ctx, 7, "carol", productID, "receipts/r9.jpg")
	if err == nil {
		t.Fatal("create should surface the store failure")
	}
	if len(files.removed) != 1 || files.removed[0] != "receipts/r9.jpg" {
		t.Fatalf("removed = %v, want the orphaned receipt", files.removed)
	}
}

func TestCloseIsIdempotentSafe(t *testing.T) {
	orders := newMemOrders()
	prods := newMemProducts()
	svc := NewOrderService(orders, prods, &fakeFiles{}, nil)
	ctx := context.Background()

	productID := seedProduct(t, prods, 10)
	order, err := svc.CreateFromReceipt(ctx, 1, "bob", productID, "receipts/r2.jpg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := svc.Close(ctx, order.ID)
	if err != nil || !ok {
		t.Fatalf("first close = %v/%v, want true", ok, err)
	}
	ok, err = svc.Close(ctx, order.ID)
	if err != nil || ok {
		t.Fatalf("second close = %v/%v, want false without error", ok, err)
	}
	ok, err = svc.Close(ctx, 999)
	if err != nil || ok {
		t.Fatalf("missing close = %v/%v, want false without error", ok, err)
	}
}

func TestPurgeClosedOlderThanRetention(t *testing.T) {
	orders := newMemOrders()
	prods := newMemProducts()
	files := &fakeFiles{}
	svc := NewOrderService(orders, prods, files, nil)
	ctx := context.Background()

	now := time.Now()
	svc.now = func() time.Time { return now }

	photo := func(p string) *string { return &p }
	ages := []int{3, 8, 10}
	for i, days := range ages {
		_, err := orders.Create(ctx, &models.Order{
			UserID:    int64(i + 1),
			ProductID: 1,
			Status:    models.OrderStatusClosed,
			PhotoPath: photo("receipts/old.jpg"),
			CreatedAt: now.AddDate(0, 0, -days),
		})
		if err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}
	// A pending order of any age must survive.
	if _, err := orders.Create(ctx, &models.Order{
		UserID:    9,
		ProductID: 1,
		Status:    models.OrderStatusPending,
		CreatedAt: now.AddDate(0, 0, -30),
	}); err != nil {
		t.Fatalf("seed pending: %v", err)
	}

	purged, err := svc.PurgeClosedOlderThan(ctx, 7)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 2 {
		t.Fatalf("purged = %d, want 2 (ages 8d and 10d)", purged)
	}
	if len(files.removed) != 2 {
		t.Fatalf("receipt files removed = %d, want 2", len(files.removed))
	}
	pending, _ := orders.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("pending orders = %d, want 1", len(pending))
	}
}

func TestPurgeSurvivesFileRemovalFailure(t *testing.T) {
	orders := newMemOrders()
	svc := NewOrderService(orders, newMemProducts(), &fakeFiles{fail: true}, nil)
	ctx := context.Background()

	now := time.Now()
	svc.now = func() time.Time { return now }
	photo := "receipts/gone.jpg"
	if _, err := orders.Create(ctx, &models.Order{
		UserID:    1,
		ProductID: 1,
		Status:    models.OrderStatusClosed,
		PhotoPath: &photo,
		CreatedAt: now.AddDate(0, 0, -14),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	purged, err := svc.PurgeClosedOlderThan(ctx, 7)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1 despite file removal failure", purged)
	}
}

func TestPurgeNonPositiveRetentionIsNoop(t *testing.T) {
	svc := NewOrderService(newMemOrders(), newMemProducts(), &fakeFiles{}, nil)
	purged, err := svc.PurgeClosedOlderThan(context.Background(), 0)
	if err != nil || purged != 0 {
		t.Fatalf("purge = %d/%v, want 0 and no error", purged, err)
	}
}

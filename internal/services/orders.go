package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/models"
)

// OrderStore is the persistence contract for manual-channel orders.
type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (int64, error)
	ByID(ctx context.Context, id int64) (*models.Order, error)
	Pending(ctx context.Context) ([]models.Order, error)
	MarkClosed(ctx context.Context, id int64) (bool, error)
	ClosedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	Delete(ctx context.Context, id int64) error
}

// OrderNotifier fans a new order out to approvers. Delivery is best-effort;
// failures must not abort order creation.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order *models.Order, product *models.Product)
}

// OrderService manages the manual purchase lifecycle.
type OrderService struct {
	orders   OrderStore
	products ProductStore
	files    FileRemover
	notifier OrderNotifier

	now func() time.Time
}

// NewOrderService wires the order service. notifier may be nil.
func NewOrderService(orders OrderStore, products ProductStore, files FileRemover, notifier OrderNotifier) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		files:    files,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateFromReceipt records a pending order for a submitted receipt photo
// and fans it out to approvers. The order survives notifier failures.
// When no order ends up owning the photo, the file is removed so failed
// checkouts do not leave receipts on disk.
func (s *OrderService) CreateFromReceipt(ctx context.Context, userID int64, displayName string, productID int64, photoPath string) (*models.Order, error) {
	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		s.discardReceipt(ctx, photoPath)
		return nil, err
	}
	if product == nil {
		s.discardReceipt(ctx, photoPath)
		return nil, ErrInvalidProduct
	}

	order := &models.Order{
		UserID:      userID,
		DisplayName: displayName,
		ProductID:   productID,
		Amount:      product.Price,
		Status:      models.OrderStatusPending,
		PhotoPath:   &photoPath,
	}
	id, err := s.orders.Create(ctx, order)
	if err != nil {
		s.discardReceipt(ctx, photoPath)
		return nil, err
	}
	order.ID = id
	order.CreatedAt = s.now()

	logger.Info(ctx, "service.orders", "order.created",
		slog.Int64("order_id", id),
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
	)

	if s.notifier != nil {
		s.notifier.NotifyNewOrder(ctx, order, product)
	}
	return order, nil
}

// discardReceipt removes a receipt file that no order references.
func (s *OrderService) discardReceipt(ctx context.Context, photoPath string) {
	if s.files == nil || photoPath == "" {
		return
	}
	if err := s.files.Remove(photoPath); err != nil {
		logger.Warn(ctx, "service.orders", "order.receipt_cleanup_failed",
			slog.String("path", photoPath),
			slog.String("err", err.Error()),
		)
	}
}

// Order returns an order by id or ErrNotFound.
func (s *OrderService) Order(ctx context.Context, id int64) (*models.Order, error) {
	o, err := s.orders.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrNotFound
	}
	return o, nil
}

// Pending lists orders awaiting review.
func (s *OrderService) Pending(ctx context.Context) ([]models.Order, error) {
	return s.orders.Pending(ctx)
}

// Close transitions an order to closed. It returns false without error
// when the order is missing or already closed, so a second button press
// on the same order is harmless.
func (s *OrderService) Close(ctx context.Context, orderID int64) (bool, error) {
	ok, err := s.orders.MarkClosed(ctx, orderID)
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info(ctx, "service.orders", "order.closed",
			slog.Int64("order_id", orderID),
		)
	}
	return ok, nil
}

// PurgeClosedOlderThan deletes closed orders older than the retention
// window and removes their receipt files best-effort. Returns the number
// of purged orders.
func (s *OrderService) PurgeClosedOlderThan(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -days)
	stale, err := s.orders.ClosedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, o := range stale {
		if err := s.orders.Delete(ctx, o.ID); err != nil {
			return purged, err
		}
		purged++
		if o.PhotoPath != nil && s.files != nil {
			if err := s.files.Remove(*o.PhotoPath); err != nil {
				logger.Warn(ctx, "service.orders", "order.receipt_cleanup_failed",
					slog.Int64("order_id", o.ID),
					slog.String("err", err.Error()),
				)
			}
		}
	}
	if purged > 0 {
		logger.Info(ctx, "service.orders", "orders.purged",
			slog.Int("purged", purged),
			slog.Int("count", len(stale)),
		)
	}
	return purged, nil
}

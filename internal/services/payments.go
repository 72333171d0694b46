package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/models"
)

// PaymentStore is the persistence contract for token-channel payments.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) (int64, error)
	ByPayload(ctx context.Context, payload string) (*models.Payment, error)
	SetStatus(ctx context.Context, payload, status string) error
	Complete(ctx context.Context, payload string, telegramChargeID, providerChargeID *string) error
}

// InvoiceSender submits a token invoice to the payment provider.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, userID int64, product *models.Product, payload string) error
}

// PaymentService correlates provider payment events with local payment rows
// through opaque payload tokens.
type PaymentService struct {
	payments PaymentStore
	products ProductStore
	invoices InvoiceSender

	newPayload func() string
}

// NewPaymentService wires the payment service.
func NewPaymentService(payments PaymentStore, products ProductStore, invoices InvoiceSender) *PaymentService {
	return &PaymentService{
		payments:   payments,
		products:   products,
		invoices:   invoices,
		newPayload: uuid.NewString,
	}
}

// Initiate creates a pending payment and submits the invoice. When invoice
// submission fails the payment is marked failed and the error surfaces to
// the caller.
func (s *PaymentService) Initiate(ctx context.Context, userID, productID int64) (*models.Payment, error) {
	product, err := s.products.ByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TokenPrice <= 0 {
		return nil, ErrInvalidProduct
	}

	payment := &models.Payment{
		UserID:    userID,
		ProductID: productID,
		Amount:    product.TokenPrice,
		Payload:   s.newPayload(),
		Status:    models.PaymentStatusPending,
	}
	id, err := s.payments.Create(ctx, payment)
	if err != nil {
		return nil, err
	}
	payment.ID = id

	logger.Info(ctx, "service.payments", "payment.initiated",
		slog.Int64("payment_id", id),
		slog.Int64("user_id", userID),
		slog.Int64("product_id", productID),
		slog.Int64("amount", payment.Amount),
	)

	if err := s.invoices.SendInvoice(ctx, userID, product, payment.Payload); err != nil {
		if markErr := s.payments.SetStatus(ctx, payment.Payload, models.PaymentStatusFailed); markErr != nil {
			logger.Error(ctx, "service.payments", "payment.mark_failed_error",
				slog.Int64("payment_id", id),
				slog.String("err", markErr.Error()),
			)
		}
		logger.Warn(ctx, "service.payments", "payment.invoice_failed",
			slog.Int64("payment_id", id),
			slog.String("err", err.Error()),
		)
		return nil, err
	}
	return payment, nil
}

// ValidatePreCheckout re-reads the live product for a pre-checkout query.
// Unknown tokens, missing products, and non-positive live prices reject.
func (s *PaymentService) ValidatePreCheckout(ctx context.Context, payload string) error {
	payment, err := s.payments.ByPayload(ctx, payload)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	product, err := s.products.ByID(ctx, payment.ProductID)
	if err != nil {
		return err
	}
	if product == nil || product.TokenPrice <= 0 {
		return ErrInvalidProduct
	}
	logger.Debug(ctx, "service.payments", "payment.precheckout_ok",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("product_id", product.ID),
	)
	return nil
}

// Finalize records charge identifiers, completes the payment, and returns
// the purchased product for fulfillment delivery. A duplicate successful
// payment event yields ErrPaymentAlreadyCompleted so fulfillment is never
// re-delivered.
func (s *PaymentService) Finalize(ctx context.Context, payload string, telegramChargeID, providerChargeID string) (*models.Product, error) {
	payment, err := s.payments.ByPayload(ctx, payload)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == models.PaymentStatusCompleted {
		return nil, ErrPaymentAlreadyCompleted
	}

	var tgID, provID *string
	if telegramChargeID != "" {
		tgID = &telegramChargeID
	}
	if providerChargeID != "" {
		provID = &providerChargeID
	}
	if err := s.payments.Complete(ctx, payload, tgID, provID); err != nil {
		return nil, err
	}

	product, err := s.products.ByID(ctx, payment.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		// Paid but the product vanished; complete the payment anyway and
		// let the caller decide what to tell the user.
		logger.Error(ctx, "service.payments", "payment.product_missing",
			slog.Int64("payment_id", payment.ID),
			slog.Int64("product_id", payment.ProductID),
		)
		return nil, ErrInvalidProduct
	}

	logger.Info(ctx, "service.payments", "payment.completed",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("user_id", payment.UserID),
		slog.Int64("product_id", product.ID),
		slog.Int64("amount", payment.Amount),
	)
	return product, nil
}

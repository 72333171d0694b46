package services

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/storebot/internal/models"
)

func seedTokenProduct(t *testing.T, prods *memProducts, tokenPrice int64) int64 {
	t.Helper()
	id, err := prods.Create(context.Background(), &models.Product{
		Name:       "500 gems",
		TokenPrice: tokenPrice,
		Channel:    models.ChannelToken,
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}

func TestInitiateCreatesPendingPayment(t *testing.T) {
	payments := newMemPayments()
	prods := newMemProducts()
	invoices := &fakeInvoices{}
	svc := NewPaymentService(payments, prods, invoices)
	svc.newPayload = func() string { return "payload-1" }
	ctx := context.Background()

	productID := seedTokenProduct(t, prods, 250)
	payment, err := svc.Initiate(ctx, 77, productID)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if payment.Status != models.PaymentStatusPending {
		t.Fatalf("status = %s, want pending", payment.Status)
	}
	if payment.Amount != 250 {
		t.Fatalf("amount = %d, want live token price", payment.Amount)
	}
	if len(invoices.payloads) != 1 || invoices.payloads[0] != "payload-1" {
		t.Fatalf("invoice payloads = %v", invoices.payloads)
	}
	stored, _ := payments.ByPayload(ctx, "payload-1")
	if stored == nil || stored.Status != models.PaymentStatusPending {
		t.Fatalf("stored payment = %+v", stored)
	}
}

func TestInitiateRejectsManualProduct(t *testing.T) {
	prods := newMemProducts()
	svc := NewPaymentService(newMemPayments(), prods, &fakeInvoices{})
	ctx := context.Background()

	id, _ := prods.Create(ctx, &models.Product{
		Name:    "manual only",
		Price:   19.90,
		Channel: models.ChannelManual,
	})
	if _, err := svc.Initiate(ctx, 1, id); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("err = %v, want ErrInvalidProduct", err)
	}
}

func TestInitiateMarksFailedWhenInvoiceRejected(t *testing.T) {
	payments := newMemPayments()
	prods := newMemProducts()
	svc := NewPaymentService(payments, prods, &fakeInvoices{fail: true})
	svc.newPayload = func() string { return "payload-2" }
	ctx := context.Background()

	productID := seedTokenProduct(t, prods, 100)
	if _, err := svc.Initiate(ctx, 1, productID); err == nil {
		t.Fatal("expected invoice error to surface")
	}
	stored, _ := payments.ByPayload(ctx, "payload-2")
	if stored == nil || stored.Status != models.PaymentStatusFailed {
		t.Fatalf("stored payment = %+v, want failed", stored)
	}
}

func TestValidatePreCheckoutUnknownPayload(t *testing.T) {
	svc := NewPaymentService(newMemPayments(), newMemProducts(), &fakeInvoices{})
	err := svc.ValidatePreCheckout(context.Background(), "no-such-token")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestValidatePreCheckoutReReadsLiveProduct(t *testing.T) {
	payments := newMemPayments()
	prods := newMemProducts()
	svc := NewPaymentService(payments, prods, &fakeInvoices{})
	svc.newPayload = func() string { return "payload-3" }
	ctx := context.Background()

	productID := seedTokenProduct(t, prods, 100)
	if _, err := svc.Initiate(ctx, 1, productID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := svc.ValidatePreCheckout(ctx, "payload-3"); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// Product deleted between invoice and pre-checkout: reject.
	if err := prods.Delete(ctx, productID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := svc.ValidatePreCheckout(ctx, "payload-3"); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("err = %v, want ErrInvalidProduct", err)
	}
}

func TestFinalizeCompletesOnce(t *testing.T) {
	payments := newMemPayments()
	prods := newMemProducts()
	svc := NewPaymentService(payments, prods, &fakeInvoices{})
	svc.newPayload = func() string { return "payload-4" }
	ctx := context.Background()

	productID := seedTokenProduct(t, prods, 100)
	if _, err := svc.Initiate(ctx, 5, productID); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	product, err := svc.Finalize(ctx, "payload-4", "tg-charge", "prov-charge")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if product == nil || product.ID != productID {
		t.Fatalf("product = %+v", product)
	}
	stored, _ := payments.ByPayload(ctx, "payload-4")
	if stored.Status != models.PaymentStatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
	if stored.TelegramChargeID == nil || *stored.TelegramChargeID != "tg-charge" {
		t.Fatalf("telegram charge id = %v", stored.TelegramChargeID)
	}

	// A duplicate successful-payment event must not re-deliver.
	if _, err := svc.Finalize(ctx, "payload-4", "tg-charge", "prov-charge"); !errors.Is(err, ErrPaymentAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrPaymentAlreadyCompleted", err)
	}
}

func TestFinalizeUnknownPayload(t *testing.T) {
	svc := NewPaymentService(newMemPayments(), newMemProducts(), &fakeInvoices{})
	if _, err := svc.Finalize(context.Background(), "ghost", "", ""); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}

func TestFinalizeProductVanished(t *testing.T) {
	payments := newMemPayments()
	prods := newMemProducts()
	svc := NewPaymentService(payments, prods, &fakeInvoices{})
	svc.newPayload = func() string { return "payload-5" }
	ctx := context.Background()

	productID := seedTokenProduct(t, prods, 100)
	if _, err := svc.Initiate(ctx, 5, productID); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := prods.Delete(ctx, productID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	_, err := svc.Finalize(ctx, "payload-5", "tg", "prov")
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("err = %v, want ErrInvalidProduct", err)
	}
	// The payment itself still records completion.
	stored, _ := payments.ByPayload(ctx, "payload-5")
	if stored.Status != models.PaymentStatusCompleted {
		t.Fatalf("status = %s, want completed", stored.Status)
	}
}

package handlers

import (
	"errors"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	"github.com/m3rciful/storebot/core/telegram/format"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

// BuyTokens starts the token purchase: a pending payment is created and the
// invoice lands in the same chat. No session is needed because the amount
// is fixed by the product.
func (h *Handlers) BuyTokens(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.EditOrSendMD(c, "That product is gone.", backToMenuMarkup())
	}

	_, err = h.payments.Initiate(ctx, c.Sender().ID, productID)
	if errors.Is(err, services.ErrInvalidProduct) {
		return tghelpers.EditOrSendMD(c, "This product cannot be bought with tokens.", backToMenuMarkup())
	}
	if err != nil {
		return tghelpers.EditOrSendMD(c, "Could not create the invoice, please try again later.", backToMenuMarkup())
	}
	return c.Respond(&tele.CallbackResponse{Text: "Invoice sent"})
}

// PreCheckout answers the provider's pre-checkout query. The live product
// is re-validated so stale pricing never gets charged.
func (h *Handlers) PreCheckout(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	query := c.PreCheckoutQuery()
	if query == nil {
		return nil
	}

	err := h.payments.ValidatePreCheckout(ctx, query.Payload)
	switch {
	case err == nil:
		return c.Accept()
	case errors.Is(err, services.ErrPaymentNotFound):
		return c.Accept("This payment is unknown, please start the purchase again.")
	case errors.Is(err, services.ErrInvalidProduct):
		return c.Accept("This product is no longer available.")
	default:
		return c.Accept("Payment could not be verified, please try again later.")
	}
}

// PaymentSuccess finalizes a completed payment and delivers fulfillment.
// A duplicate provider notice completes without re-delivering.
func (h *Handlers) PaymentSuccess(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	payment := c.Message().Payment
	if payment == nil {
		return nil
	}

	product, err := h.payments.Finalize(ctx, payment.Payload, payment.TelegramChargeID, payment.ProviderChargeID)
	switch {
	case errors.Is(err, services.ErrPaymentAlreadyCompleted):
		return tghelpers.SendMD(c, "This payment was already processed.", backToMenuMarkup())
	case errors.Is(err, services.ErrPaymentNotFound):
		return tghelpers.SendMD(c, "We could not match this payment. Please contact support: "+md(h.opts.SupportContact), backToMenuMarkup())
	case errors.Is(err, services.ErrInvalidProduct):
		return tghelpers.SendMD(c, "Payment received, but the product is gone. Please contact support: "+md(h.opts.SupportContact), backToMenuMarkup())
	case err != nil:
		return tghelpers.SendMD(c, "Payment received, finalization failed. Please contact support: "+md(h.opts.SupportContact), backToMenuMarkup())
	}

	text := "🎉 *Payment confirmed!*\nThank you for the purchase of *" + md(product.Name) + "*."
	if instr := format.DerefString(product.ActivationInstruction, ""); instr != "" {
		text += "\n\n🔑 *Activation*\n" + md(instr)
	}
	return tghelpers.SendMD(c, text, backToMenuMarkup())
}

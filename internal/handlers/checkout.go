package handlers

import (
	"errors"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

// StartReceipt begins the manual checkout dialog: the session is bound to
// the chosen product and only a photo advances it.
func (h *Handlers) StartReceipt(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.EditOrSendMD(c, "That product is gone.", backToMenuMarkup())
	}
	product, err := h.catalog.Product(ctx, productID)
	if errors.Is(err, services.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "That product is gone.", backToMenuMarkup())
	}
	if err != nil {
		return err
	}
	if product.Channel != models.ChannelManual {
		return tghelpers.EditOrSendMD(c, "This product is paid with tokens.", backToMenuMarkup())
	}

	userID := c.Sender().ID
	h.fsm.Start(userID, flowCheckout, stateAwaitReceiptPhoto)
	h.fsm.Put(userID, keyProductID, product.ID)

	text := "💳 *Payment*\n" + md(h.opts.PaymentDetails) +
		"\n\nAmount: " + priceLabel(product) +
		"\n\nPay and send a *photo* of the receipt here."
	return tghelpers.SendMD(c, text, cancelMarkup())
}

// ReceiptPhoto consumes the receipt photo, stores it, and hands off to the
// order lifecycle. The session is cleared whatever the outcome.
func (h *Handlers) ReceiptPhoto(c tele.Context) error {
	userID := c.Sender().ID
	photo := c.Message().Photo
	if photo == nil {
		return tghelpers.SendMD(c, "Please send a *photo* of the receipt, or cancel.", cancelMarkup())
	}

	ctx := tghelpers.BuildContext(c)
	productID, ok := h.fsm.Int64(userID, keyProductID)
	if !ok {
		h.fsm.Clear(userID)
		return tghelpers.SendMD(c, "Something went wrong, please start over.", backToMenuMarkup())
	}
	h.fsm.Clear(userID)

	rc, err := c.Bot().File(&photo.File)
	if err != nil {
		return tghelpers.SendMD(c, "Could not read the photo, please try again.", backToMenuMarkup())
	}
	defer rc.Close()

	path, err := h.files.SaveReceipt(rc)
	if err != nil {
		return tghelpers.SendMD(c, "Could not save the receipt, please try again.", backToMenuMarkup())
	}

	order, err := h.orders.CreateFromReceipt(ctx, userID, displayName(c.Sender()), productID, path)
	if errors.Is(err, services.ErrInvalidProduct) {
		return tghelpers.SendMD(c, "That product is no longer available.", backToMenuMarkup())
	}
	if err != nil {
		return tghelpers.SendMD(c, "Could not register the order, please try again later.", backToMenuMarkup())
	}

	text := "✅ *Receipt received!*\nOrder `#" + formatID(order.ID) + "` is awaiting review. We will be in touch."
	return tghelpers.SendMD(c, text, backToMenuMarkup())
}

// CancelFlow clears any dialog in progress and returns to the menu.
func (h *Handlers) CancelFlow(c tele.Context) error {
	userID := c.Sender().ID
	h.fsm.Clear(userID)
	if h.IsAdmin(userID) {
		return tghelpers.EditOrSendMD(c, "Canceled.", h.adminMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "Canceled.", h.mainMenuMarkup(userID))
}

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "❌ Cancel", Unique: cbAdminCancel},
	})
}

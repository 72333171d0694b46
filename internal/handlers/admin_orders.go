package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// AdminOrders lists pending orders. Opening the listing is also the purge
// trigger: closed orders past retention are deleted first, so the call can
// take longer when there is backlog.
func (h *Handlers) AdminOrders(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	purged, err := h.orders.PurgeClosedOlderThan(ctx, h.opts.RetentionDays)
	if err != nil {
		return failNotice(c, h.adminMenuMarkup(), err)
	}

	pending, err := h.orders.Pending(ctx)
	if err != nil {
		return failNotice(c, h.adminMenuMarkup(), err)
	}
	if len(pending) == 0 {
		text := "📋 No pending orders."
		if purged > 0 {
			text += fmt.Sprintf("\n🧹 Purged %d old order(s).", purged)
		}
		return tghelpers.EditOrSendMD(c, text, h.adminMenuMarkup())
	}

	var b strings.Builder
	b.WriteString("📋 *Pending orders*\n")
	if purged > 0 {
		fmt.Fprintf(&b, "🧹 Purged %d old order(s).\n", purged)
	}
	buttons := make([]keyboard.InlineBtn, 0, len(pending)+1)
	for _, o := range pending {
		productName := "deleted product"
		if p, err := h.catalog.Product(ctx, o.ProductID); err == nil {
			productName = p.Name
		}
		fmt.Fprintf(&b, "\n`#%d` %s — %s, %.2f (%s)",
			o.ID, md(o.DisplayName), md(productName), o.Amount, o.CreatedAt.Format("02.01 15:04"))
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("✅ Close #%d", o.ID),
			Unique: cbCloseOrder,
			Data:   strconv.FormatInt(o.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbAdminMenu})

	return tghelpers.EditOrSendMD(c, b.String(), keyboard.InlineButtons(buttons))
}

// CloseOrder transitions an order to closed. A second press on the same
// button reports "already closed" instead of failing.
func (h *Handlers) CloseOrder(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	orderID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad order id"})
	}

	ctx := tghelpers.BuildContext(c)
	ok, err := h.orders.Close(ctx, orderID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Could not close the order"})
	}
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Already closed"})
	}
	return c.Respond(&tele.CallbackResponse{Text: fmt.Sprintf("Order #%d closed", orderID)})
}

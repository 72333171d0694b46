package handlers

import (
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

const adminMenuText = "🔧 *Admin panel*"

func (h *Handlers) adminMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "➕ Category", Unique: cbAdminAddCat},
			{Text: "➕ Product", Unique: cbAdminAddProd},
		},
		[]keyboard.InlineBtn{
			{Text: "🗂 Delete category", Unique: cbAdminCats},
			{Text: "📦 Delete product", Unique: cbAdminProds},
		},
		[]keyboard.InlineBtn{
			{Text: "📝 About", Unique: cbAdminEditSection, Data: sectionAboutKey},
			{Text: "📝 Promotions", Unique: cbAdminEditSection, Data: sectionPromotionsKey},
		},
		[]keyboard.InlineBtn{
			{Text: "📋 Orders", Unique: cbAdminOrders},
		},
		[]keyboard.InlineBtn{
			{Text: "⬅️ Menu", Unique: cbMainMenu},
		},
	)
}

// AdminMenu handles /admin. The command router already gates it by the
// allow-list; the check here covers direct calls.
func (h *Handlers) AdminMenu(c tele.Context) error {
	if !h.IsAdmin(c.Sender().ID) {
		return h.denyNotAdmin(c)
	}
	h.fsm.Clear(c.Sender().ID)
	return tghelpers.SendMD(c, adminMenuText, h.adminMenuMarkup())
}

// AdminMenuCallback re-renders the admin panel in place.
func (h *Handlers) AdminMenuCallback(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	h.fsm.Clear(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, adminMenuText, h.adminMenuMarkup())
}

package handlers

import (
	"errors"

	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

const (
	sectionAboutKey      = models.SectionAbout
	sectionPromotionsKey = models.SectionPromotions
)

const welcomeText = "👋 *Welcome!*\nBrowse the catalog, read about us, or reach support below."

func (h *Handlers) mainMenuMarkup(userID int64) *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		{
			{Text: "🛍 Shop", Unique: cbShopCats, Data: string(models.ChannelManual)},
			{Text: "⭐ Token shop", Unique: cbShopCats, Data: string(models.ChannelToken)},
		},
		{
			{Text: "ℹ️ About", Unique: cbAbout},
			{Text: "🎁 Promotions", Unique: cbPromotions},
		},
		{
			{Text: "🆘 Support", Unique: cbSupport},
		},
	}
	if h.IsAdmin(userID) {
		rows = append(rows, []keyboard.InlineBtn{{Text: "🔧 Admin panel", Unique: cbAdminMenu}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

// Start handles /start: welcome message plus the main menu.
func (h *Handlers) Start(c tele.Context) error {
	h.fsm.Clear(c.Sender().ID)
	return tghelpers.SendMD(c, welcomeText, h.mainMenuMarkup(c.Sender().ID))
}

// MainMenu re-renders the main menu in place.
func (h *Handlers) MainMenu(c tele.Context) error {
	return tghelpers.EditOrSendMD(c, welcomeText, h.mainMenuMarkup(c.Sender().ID))
}

// Support shows the support contact.
func (h *Handlers) Support(c tele.Context) error {
	text := "🆘 *Support*\nWrite to " + md(h.opts.SupportContact) + " and we will get back to you."
	return tghelpers.EditOrSendMD(c, text, backToMenuMarkup())
}

// sectionHandler renders a singleton content section. A stored photo that
// is missing on disk degrades to text-only display.
func (h *Handlers) sectionHandler(key string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		section, err := h.sections.Section(ctx, key)
		if errors.Is(err, services.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, "Nothing here yet.", backToMenuMarkup())
		}
		if err != nil {
			return err
		}

		markup := backToMenuMarkup()
		if section.PhotoPath != nil && h.files.Exists(*section.PhotoPath) {
			photo := &tele.Photo{File: tele.FromDisk(*section.PhotoPath), Caption: section.Content}
			return tghelpers.SendPhoto(c, photo, markup)
		}
		return tghelpers.EditOrSendMD(c, section.Content, markup)
	}
}

func backToMenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Menu", Unique: cbMainMenu},
	})
}

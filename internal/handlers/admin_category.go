package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

// Add-category flow: name (text) → channel (buttons) → persist.

// StartAddCategory begins the add-category dialog.
func (h *Handlers) StartAddCategory(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	h.fsm.Start(c.Sender().ID, flowAddCategory, stateCategoryName)
	return tghelpers.SendMD(c, "Send the *category name*.", cancelMarkup())
}

// CategoryName consumes the name and asks for the channel.
func (h *Handlers) CategoryName(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	name := strings.TrimSpace(c.Text())
	if name == "" || c.Message().Photo != nil {
		return tghelpers.SendMD(c, "Send the category name as *text*.", cancelMarkup())
	}

	h.fsm.Put(userID, keyName, name)
	h.fsm.SetState(userID, stateCategoryChannel)
	return tghelpers.SendMD(c, "Pick the *fulfillment channel*.", channelMarkup(cbAdminCatChannel))
}

// PickCategoryChannel is the terminal step: re-validate admin, persist.
func (h *Handlers) PickCategoryChannel(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	if h.fsm.Flow(userID) != flowAddCategory || h.fsm.State(userID) != stateCategoryChannel {
		return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
	}

	channel := models.Channel(callbacks.CallbackPayload(c))
	name, ok := h.fsm.String(userID, keyName)
	if !ok || !channel.Valid() {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Something went wrong, please start over.", h.adminMenuMarkup())
	}

	ctx := tghelpers.BuildContext(c)
	_, err := h.catalog.CreateCategory(ctx, &models.Category{Name: name, Channel: channel})
	if errors.Is(err, services.ErrDuplicateName) {
		// Keep the session, go back one step for another name.
		h.fsm.SetState(userID, stateCategoryName)
		return tghelpers.SendMD(c, "That name is taken. Send *another name*.", cancelMarkup())
	}
	if err != nil {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Could not save the category, please try again later.", h.adminMenuMarkup())
	}

	h.fsm.Clear(userID)
	return tghelpers.EditOrSendMD(c, "✅ Category *"+md(name)+"* created.", h.adminMenuMarkup())
}

// AdminCategories lists every category with a delete affordance.
func (h *Handlers) AdminCategories(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	var buttons []keyboard.InlineBtn
	for _, channel := range []models.Channel{models.ChannelManual, models.ChannelToken} {
		listings, err := h.catalog.Categories(ctx, channel)
		if err != nil {
			return err
		}
		for _, l := range listings {
			buttons = append(buttons, keyboard.InlineBtn{
				Text:   fmt.Sprintf("🗑 %s [%s] (%d)", l.Category.Name, l.Category.Channel, l.Products),
				Unique: cbAdminDelCat,
				Data:   strconv.FormatInt(l.Category.ID, 10),
			})
		}
	}
	if len(buttons) == 0 {
		return tghelpers.EditOrSendMD(c, "No categories yet.", h.adminMenuMarkup())
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbAdminMenu})
	return tghelpers.EditOrSendMD(c, "Tap a category to *delete it with all its products*.",
		keyboard.InlineButtons(buttons))
}

// DeleteCategory runs the explicit cascade: products one by one, then the
// category itself.
func (h *Handlers) DeleteCategory(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad category id"})
	}

	ctx := tghelpers.BuildContext(c)
	removed, err := h.catalog.DeleteCategoryCascade(ctx, categoryID)
	if errors.Is(err, services.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "That category is already gone.", h.adminMenuMarkup())
	}
	if err != nil {
		return tghelpers.EditOrSendMD(c, "Deletion failed part-way, check the catalog.", h.adminMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c,
		fmt.Sprintf("✅ Category deleted together with *%d* product(s).", removed),
		h.adminMenuMarkup())
}

func channelMarkup(unique string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "💳 Manual", Unique: unique, Data: string(models.ChannelManual)},
			{Text: "⭐ Token", Unique: unique, Data: string(models.ChannelToken)},
		},
		[]keyboard.InlineBtn{
			{Text: "❌ Cancel", Unique: cbAdminCancel},
		},
	)
}

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

// Add-product flow: channel → category → name → price (channel-dependent)
// → description (skippable) → activation instruction (token only,
// skippable) → persist.

// StartAddProduct begins the add-product dialog.
func (h *Handlers) StartAddProduct(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	h.fsm.Start(c.Sender().ID, flowAddProduct, stateProductChannel)
	return tghelpers.SendMD(c, "Pick the *fulfillment channel* of the new product.", channelMarkup(cbAdminProdChannel))
}

// PickProductChannel stores the channel and offers the matching categories.
func (h *Handlers) PickProductChannel(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	if h.fsm.Flow(userID) != flowAddProduct || h.fsm.State(userID) != stateProductChannel {
		return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
	}
	channel := models.Channel(callbacks.CallbackPayload(c))
	if !channel.Valid() {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown channel"})
	}

	ctx := tghelpers.BuildContext(c)
	listings, err := h.catalog.Categories(ctx, channel)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Create a *"+string(channel)+"* category first.", h.adminMenuMarkup())
	}

	h.fsm.Put(userID, keyChannel, string(channel))
	h.fsm.SetState(userID, stateProductCategory)

	buttons := make([]keyboard.InlineBtn, 0, len(listings)+1)
	for _, l := range listings {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   l.Category.Name,
			Unique: cbAdminProdCat,
			Data:   strconv.FormatInt(l.Category.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "❌ Cancel", Unique: cbAdminCancel})
	return tghelpers.EditOrSendMD(c, "Pick the *category*.", keyboard.InlineButtons(buttons))
}

// PickProductCategory stores the owning category and asks for the name.
func (h *Handlers) PickProductCategory(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	if h.fsm.Flow(userID) != flowAddProduct || h.fsm.State(userID) != stateProductCategory {
		return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
	}
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad category id"})
	}

	ctx := tghelpers.BuildContext(c)
	if _, err := h.catalog.Category(ctx, categoryID); err != nil {
		h.fsm.Clear(userID)
		if errors.Is(err, services.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, "That category was deleted meanwhile.", h.adminMenuMarkup())
		}
		return err
	}

	h.fsm.Put(userID, keyCategoryID, categoryID)
	h.fsm.SetState(userID, stateProductName)
	return tghelpers.SendMD(c, "Send the *product name*.", cancelMarkup())
}

// ProductName consumes the name and asks for the channel-dependent price.
func (h *Handlers) ProductName(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	name := strings.TrimSpace(c.Text())
	if name == "" || c.Message().Photo != nil {
		return tghelpers.SendMD(c, "Send the product name as *text*.", cancelMarkup())
	}

	h.fsm.Put(userID, keyName, name)
	h.fsm.SetState(userID, stateProductPrice)
	return tghelpers.SendMD(c, h.pricePrompt(userID), cancelMarkup())
}

// ProductPrice parses the price. A parse failure re-prompts without
// discarding the fields collected so far.
func (h *Handlers) ProductPrice(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	raw := strings.TrimSpace(strings.ReplaceAll(c.Text(), ",", "."))

	if h.tokenFlow(userID) {
		tokens, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tokens <= 0 {
			return tghelpers.SendMD(c, "Send the token price as a *positive whole number*.", cancelMarkup())
		}
		h.fsm.Put(userID, keyTokenPrice, tokens)
	} else {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price <= 0 {
			return tghelpers.SendMD(c, "Send the price as a *positive number*, e.g. `99.90`.", cancelMarkup())
		}
		h.fsm.Put(userID, keyPrice, price)
	}

	h.fsm.SetState(userID, stateProductDescription)
	return tghelpers.SendMD(c, "Send the *description*, or skip.", skipMarkup(skipDescription))
}

// ProductDescription consumes the description and moves to activation (token)
// or persists (manual).
func (h *Handlers) ProductDescription(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	if text == "" || c.Message().Photo != nil {
		return tghelpers.SendMD(c, "Send the description as *text*, or skip.", skipMarkup(skipDescription))
	}
	h.fsm.Put(userID, keyDescription, text)
	return h.afterDescription(c)
}

// ProductActivation consumes the activation instruction and persists.
func (h *Handlers) ProductActivation(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	text := strings.TrimSpace(c.Text())
	if text == "" || c.Message().Photo != nil {
		return tghelpers.SendMD(c, "Send the activation instruction as *text*, or skip.", skipMarkup(skipActivation))
	}
	h.fsm.Put(c.Sender().ID, keyActivation, text)
	return h.persistProduct(c)
}

// SkipStep handles the skip button across skippable steps; the payload
// names the step being skipped.
func (h *Handlers) SkipStep(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	switch callbacks.CallbackPayload(c) {
	case skipDescription:
		if h.fsm.State(c.Sender().ID) != stateProductDescription {
			return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
		}
		return h.afterDescription(c)
	case skipActivation:
		if h.fsm.State(c.Sender().ID) != stateProductActivation {
			return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
		}
		return h.persistProduct(c)
	case skipSectionPhoto:
		return h.keepSectionPhoto(c)
	}
	return c.Respond(&tele.CallbackResponse{Text: "Nothing to skip"})
}

func (h *Handlers) afterDescription(c tele.Context) error {
	userID := c.Sender().ID
	if h.tokenFlow(userID) {
		h.fsm.SetState(userID, stateProductActivation)
		return tghelpers.SendMD(c, "Send the *activation instruction* delivered after payment, or skip.", skipMarkup(skipActivation))
	}
	return h.persistProduct(c)
}

// persistProduct is the terminal step; the admin check runs once more
// right before the write.
func (h *Handlers) persistProduct(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	channelRaw, _ := h.fsm.String(userID, keyChannel)
	name, okName := h.fsm.String(userID, keyName)
	categoryID, okCat := h.fsm.Int64(userID, keyCategoryID)
	channel := models.Channel(channelRaw)
	if !okName || !okCat || !channel.Valid() {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Something went wrong, please start over.", h.adminMenuMarkup())
	}

	product := &models.Product{
		Name:       name,
		CategoryID: categoryID,
		Channel:    channel,
	}
	if desc, ok := h.fsm.String(userID, keyDescription); ok {
		product.Description = desc
	}
	if channel == models.ChannelToken {
		product.TokenPrice, _ = h.fsm.Int64(userID, keyTokenPrice)
		if instr, ok := h.fsm.String(userID, keyActivation); ok && instr != "" {
			product.ActivationInstruction = &instr
		}
	} else {
		product.Price, _ = h.fsm.Float64(userID, keyPrice)
	}
	h.fsm.Clear(userID)

	_, err := h.catalog.CreateProduct(ctx, product)
	if errors.Is(err, services.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "The category was deleted meanwhile.", h.adminMenuMarkup())
	}
	if err != nil {
		return tghelpers.EditOrSendMD(c, "Could not save the product, please try again later.", h.adminMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "✅ Product *"+md(name)+"* created.", h.adminMenuMarkup())
}

// AdminProducts starts product deletion: pick a category first.
func (h *Handlers) AdminProducts(c tele.Context) error {
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
				Text:   fmt.Sprintf("%s [%s] (%d)", l.Category.Name, l.Category.Channel, l.Products),
				Unique: cbAdminProdsCat,
				Data:   strconv.FormatInt(l.Category.ID, 10),
			})
		}
	}
	if len(buttons) == 0 {
		return tghelpers.EditOrSendMD(c, "No categories yet.", h.adminMenuMarkup())
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbAdminMenu})
	return tghelpers.EditOrSendMD(c, "Pick a category.", keyboard.InlineButtons(buttons))
}

// AdminProductsByCategory lists the products of one category for deletion.
func (h *Handlers) AdminProductsByCategory(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad category id"})
	}

	ctx := tghelpers.BuildContext(c)
	products, err := h.catalog.Products(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return tghelpers.EditOrSendMD(c, "No products in this category.", h.adminMenuMarkup())
	}

	buttons := make([]keyboard.InlineBtn, 0, len(products)+1)
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("🗑 %s — %s", p.Name, priceLabel(&p)),
			Unique: cbAdminDelProd,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbAdminProds})
	return tghelpers.EditOrSendMD(c, "Tap a product to *delete* it.", keyboard.InlineButtons(buttons))
}

// DeleteProduct removes a single product.
func (h *Handlers) DeleteProduct(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Bad product id"})
	}

	ctx := tghelpers.BuildContext(c)
	if err := h.catalog.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return tghelpers.EditOrSendMD(c, "That product is already gone.", h.adminMenuMarkup())
		}
		return tghelpers.EditOrSendMD(c, "Could not delete the product.", h.adminMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "✅ Product deleted.", h.adminMenuMarkup())
}

func (h *Handlers) tokenFlow(userID int64) bool {
	channel, _ := h.fsm.String(userID, keyChannel)
	return models.Channel(channel) == models.ChannelToken
}

func (h *Handlers) pricePrompt(userID int64) string {
	if h.tokenFlow(userID) {
		return "Send the *token price* as a whole number."
	}
	return "Send the *price*, e.g. `99.90`."
}

const (
	skipDescription  = "description"
	skipActivation   = "activation"
	skipSectionPhoto = "section_photo"
)

func skipMarkup(step string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "⏭ Skip", Unique: cbAdminSkip, Data: step}},
		[]keyboard.InlineBtn{{Text: "❌ Cancel", Unique: cbAdminCancel}},
	)
}

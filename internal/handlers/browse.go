package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

// Browsing is stateless: each screen is a read projection keyed by the
// callback payload, no session involved.

// ShopCategories lists the categories of one fulfillment channel with
// product counts.
func (h *Handlers) ShopCategories(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	channel := models.Channel(callbacks.CallbackPayload(c))
	if !channel.Valid() {
		return tghelpers.EditOrSendMD(c, "Unknown shop.", backToMenuMarkup())
	}

	listings, err := h.catalog.Categories(ctx, channel)
	if err != nil {
		return failNotice(c, backToMenuMarkup(), err)
	}
	if len(listings) == 0 {
		return tghelpers.EditOrSendMD(c, "The catalog is empty for now.", backToMenuMarkup())
	}

	buttons := make([]keyboard.InlineBtn, 0, len(listings)+1)
	for _, l := range listings {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s (%d)", l.Category.Name, l.Products),
			Unique: cbShopCat,
			Data:   strconv.FormatInt(l.Category.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Menu", Unique: cbMainMenu})

	title := "🛍 *Categories*"
	if channel == models.ChannelToken {
		title = "⭐ *Token categories*"
	}
	return tghelpers.EditOrSendMD(c, title, keyboard.InlineButtons(buttons))
}

// ShopProducts lists the products of a category with channel-appropriate prices.
func (h *Handlers) ShopProducts(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	categoryID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return tghelpers.EditOrSendMD(c, "That category is gone.", backToMenuMarkup())
	}

	category, err := h.catalog.Category(ctx, categoryID)
	if errors.Is(err, services.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, "That category is gone.", backToMenuMarkup())
	}
	if err != nil {
		return failNotice(c, backToMenuMarkup(), err)
	}
	products, err := h.catalog.Products(ctx, categoryID)
	if err != nil {
		return failNotice(c, backToMenuMarkup(), err)
	}
	if len(products) == 0 {
		return tghelpers.EditOrSendMD(c, "No products here yet.",
			keyboard.InlineButtons([]keyboard.InlineBtn{
				{Text: "⬅️ Back", Unique: cbShopCats, Data: string(category.Channel)},
			}))
	}

	buttons := make([]keyboard.InlineBtn, 0, len(products)+1)
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%s — %s", p.Name, priceLabel(&p)),
			Unique: cbShopProd,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: "⬅️ Back", Unique: cbShopCats, Data: string(category.Channel)})

	return tghelpers.EditOrSendMD(c, "📦 *"+md(category.Name)+"*", keyboard.InlineButtons(buttons))
}

// ShopProductDetail renders a product card with the channel-specific
// purchase affordance.
func (h *Handlers) ShopProductDetail(c tele.Context) error {
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
		return failNotice(c, backToMenuMarkup(), err)
	}

	text := "*" + md(product.Name) + "*"
	if product.Description != "" {
		text += "\n\n" + md(product.Description)
	}
	text += "\n\nPrice: " + priceLabel(product)

	id := strconv.FormatInt(product.ID, 10)
	var buy keyboard.InlineBtn
	if product.Channel == models.ChannelToken {
		buy = keyboard.InlineBtn{Text: "⭐ Buy", Unique: cbBuyTokens, Data: id}
	} else {
		buy = keyboard.InlineBtn{Text: "📸 Submit receipt", Unique: cbSendReceipt, Data: id}
	}
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		buy,
		{Text: "⬅️ Back", Unique: cbShopCat, Data: strconv.FormatInt(product.CategoryID, 10)},
	})

	if product.PhotoPath != nil && h.files.Exists(*product.PhotoPath) {
		photo := &tele.Photo{File: tele.FromDisk(*product.PhotoPath), Caption: text}
		return tghelpers.SendPhoto(c, photo, markup)
	}
	return tghelpers.EditOrSendMD(c, text, markup)
}

func priceLabel(p *models.Product) string {
	if p.Channel == models.ChannelToken {
		return fmt.Sprintf("%d ⭐", p.TokenPrice)
	}
	return fmt.Sprintf("%.2f", p.Price)
}

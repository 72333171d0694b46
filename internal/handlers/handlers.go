// Package handlers binds the storefront conversations to the bot: menu and
// catalog browsing, the checkout and admin entry FSM flows, and the payment
// provider callbacks.
package handlers

import (
	"strconv"
	"strings"

	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/commands"
	"github.com/m3rciful/storebot/core/telegram/format"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/files"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

// Options carries the shop-facing configuration the handlers need.
type Options struct {
	AdminIDs       []int64
	SupportContact string
	PaymentDetails string
	RetentionDays  int
	Currency       string
}

// Deps lists the collaborators injected into the handler set.
type Deps struct {
	FSM      state.Manager
	Catalog  *services.CatalogService
	Sections *services.SectionService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Files    *files.Store
	Courier  *Courier
	Options  Options
}

// Handlers is the full set of bot handlers with their dependencies.
type Handlers struct {
	fsm      state.Manager
	catalog  *services.CatalogService
	sections *services.SectionService
	orders   *services.OrderService
	payments *services.PaymentService
	files    *files.Store
	courier  *Courier
	opts     Options

	admins map[int64]struct{}
}

// New builds the handler set.
func New(deps Deps) *Handlers {
	admins := make(map[int64]struct{}, len(deps.Options.AdminIDs))
	for _, id := range deps.Options.AdminIDs {
		admins[id] = struct{}{}
	}
	return &Handlers{
		fsm:      deps.FSM,
		catalog:  deps.Catalog,
		sections: deps.Sections,
		orders:   deps.Orders,
		payments: deps.Payments,
		files:    deps.Files,
		courier:  deps.Courier,
		opts:     deps.Options,
		admins:   admins,
	}
}

// IsAdmin reports whether the user is on the admin allow-list.
func (h *Handlers) IsAdmin(userID int64) bool {
	_, ok := h.admins[userID]
	return ok
}

// Register wires commands, callbacks, and FSM step handlers.
func (h *Handlers) Register(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Open the shop",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     h.AdminMenu,
		Description: "Admin panel",
		AdminOnly:   true,
		Hidden:      true,
	})

	for key, handler := range map[string]tele.HandlerFunc{
		cbMainMenu:    h.MainMenu,
		cbAbout:       h.sectionHandler(sectionAboutKey),
		cbPromotions:  h.sectionHandler(sectionPromotionsKey),
		cbSupport:     h.Support,
		cbShopCats:    h.ShopCategories,
		cbShopCat:     h.ShopProducts,
		cbShopProd:    h.ShopProductDetail,
		cbSendReceipt: h.StartReceipt,
		cbBuyTokens:   h.BuyTokens,
		cbCloseOrder:  h.CloseOrder,

		cbAdminMenu:        h.AdminMenuCallback,
		cbAdminEditSection: h.StartEditSection,
		cbAdminAddCat:      h.StartAddCategory,
		cbAdminCatChannel:  h.PickCategoryChannel,
		cbAdminAddProd:     h.StartAddProduct,
		cbAdminProdChannel: h.PickProductChannel,
		cbAdminProdCat:     h.PickProductCategory,
		cbAdminSkip:        h.SkipStep,
		cbAdminDelPhoto:    h.DeleteSectionPhoto,
		cbAdminCancel:      h.CancelFlow,
		cbAdminCats:        h.AdminCategories,
		cbAdminDelCat:      h.DeleteCategory,
		cbAdminProds:       h.AdminProducts,
		cbAdminProdsCat:    h.AdminProductsByCategory,
		cbAdminDelProd:     h.DeleteProduct,
		cbAdminOrders:      h.AdminOrders,
	} {
		_ = reg.RegisterCallback(key, handler)
	}

	h.fsm.Handle(stateAwaitReceiptPhoto, h.ReceiptPhoto)
	h.fsm.Handle(stateCategoryName, h.CategoryName)
	h.fsm.Handle(stateCategoryChannel, h.repromptButtons("Pick a channel with the buttons above."))
	h.fsm.Handle(stateProductChannel, h.repromptButtons("Pick a channel with the buttons above."))
	h.fsm.Handle(stateProductCategory, h.repromptButtons("Pick a category with the buttons above."))
	h.fsm.Handle(stateProductName, h.ProductName)
	h.fsm.Handle(stateProductPrice, h.ProductPrice)
	h.fsm.Handle(stateProductDescription, h.ProductDescription)
	h.fsm.Handle(stateProductActivation, h.ProductActivation)
	h.fsm.Handle(stateSectionText, h.SectionText)
	h.fsm.Handle(stateSectionPhoto, h.SectionPhoto)

	reg.SetTextFallback(h.UnknownText)
}

// UnknownText answers text that matches no command and no active dialog.
func (h *Handlers) UnknownText(c tele.Context) error {
	return tghelpers.SendMD(c, "I did not get that. Use the menu below.", h.mainMenuMarkup(c.Sender().ID))
}

// UnknownPhoto answers a photo sent outside any dialog.
func (h *Handlers) UnknownPhoto(c tele.Context) error {
	return tghelpers.SendMD(c, "I was not expecting a photo. Use the menu below.", h.mainMenuMarkup(c.Sender().ID))
}

// repromptButtons answers text input in a step that only accepts buttons.
func (h *Handlers) repromptButtons(msg string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msg)
	}
}

// denyNotAdmin is used both as the admin-command reject hook and as the
// per-event guard inside admin flows.
func (h *Handlers) denyNotAdmin(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Admins only"})
	}
	return tghelpers.SendText(c, "This action is available to admins only.")
}

// requireAdmin aborts any in-flight admin flow for a user who is no longer
// on the allow-list.
func (h *Handlers) requireAdmin(c tele.Context) bool {
	if h.IsAdmin(c.Sender().ID) {
		return true
	}
	h.fsm.Clear(c.Sender().ID)
	_ = h.denyNotAdmin(c)
	return false
}

// failNotice tells the user a screen is temporarily unavailable and
// propagates the cause so the router still records the failure.
func failNotice(c tele.Context, markup *tele.ReplyMarkup, err error) error {
	_ = tghelpers.EditOrSendMD(c, "⚠️ Something went wrong, please try again later.", markup)
	return err
}

func md(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return out
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func displayName(u *tele.User) string {
	if u == nil {
		return "unknown"
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Username != "" {
		if name == "" {
			return "@" + u.Username
		}
		return name + " (@" + u.Username + ")"
	}
	if name == "" {
		return "unknown"
	}
	return name
}

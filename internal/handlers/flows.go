package handlers

import "github.com/m3rciful/storebot/core/telegram/state"

// Conversation flows. A user holds at most one active flow at a time.
const (
	flowCheckout    state.Flow = "checkout.receipt"
	flowAddCategory state.Flow = "admin.add_category"
	flowAddProduct  state.Flow = "admin.add_product"
	flowEditSection state.Flow = "admin.edit_section"
)

// FSM steps. Each step accepts exactly one input kind; anything else
// re-prompts without advancing.
const (
	stateAwaitReceiptPhoto state.State = "checkout.await_receipt_photo"

	stateCategoryName    state.State = "add_category.name"
	stateCategoryChannel state.State = "add_category.channel"

	stateProductChannel     state.State = "add_product.channel"
	stateProductCategory    state.State = "add_product.category"
	stateProductName        state.State = "add_product.name"
	stateProductPrice       state.State = "add_product.price"
	stateProductDescription state.State = "add_product.description"
	stateProductActivation  state.State = "add_product.activation"

	stateSectionText  state.State = "edit_section.text"
	stateSectionPhoto state.State = "edit_section.photo"
)

// Session field-bag keys. The bag is flow-scoped: Start hands out a fresh
// bag, so fields never leak between flows.
const (
	keyProductID   = "product_id"
	keyName        = "name"
	keyChannel     = "channel"
	keyCategoryID  = "category_id"
	keyPrice       = "price"
	keyTokenPrice  = "token_price"
	keyDescription = "description"
	keyActivation  = "activation"
	keySectionKey  = "section"
	keySectionText = "text"
)

// Callback uniques. Keys are dispatched through the registry, payloads
// carry typed ids parsed by the callbacks helpers.
const (
	cbMainMenu    = "main_menu"
	cbAbout       = "about"
	cbPromotions  = "promotions"
	cbSupport     = "support"
	cbShopCats    = "shop_cats"
	cbShopCat     = "shop_cat"
	cbShopProd    = "shop_prod"
	cbSendReceipt = "send_receipt"
	cbBuyTokens   = "buy_tokens"
	cbCloseOrder  = "close_order"

	cbAdminMenu        = "admin_menu"
	cbAdminEditSection = "admin_edit_section"
	cbAdminAddCat      = "admin_add_cat"
	cbAdminCatChannel  = "admin_cat_channel"
	cbAdminAddProd     = "admin_add_prod"
	cbAdminProdChannel = "admin_prod_channel"
	cbAdminProdCat     = "admin_prod_cat"
	cbAdminSkip        = "admin_skip"
	cbAdminDelPhoto    = "admin_del_photo"
	cbAdminCancel      = "admin_cancel"
	cbAdminCats        = "admin_cats"
	cbAdminDelCat      = "admin_del_cat"
	cbAdminProds       = "admin_prods"
	cbAdminProdsCat    = "admin_prods_cat"
	cbAdminDelProd     = "admin_del_prod"
	cbAdminOrders      = "admin_orders"
)

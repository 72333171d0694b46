package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/storebot/core/telegram/state"
	"github.com/m3rciful/storebot/internal/models"
	"github.com/m3rciful/storebot/internal/services"

	tele "gopkg.in/telebot.v4"
)

var errStoreDown = errors.New("store unavailable")

// botContext fakes the slice of tele.Context the handlers touch; anything
// else panics via the nil embedded interface.
type botContext struct {
	tele.Context

	user *tele.User
	cb   *tele.Callback
	kv   map[string]any
	sent []string
}

func newBotContext(userID int64, callbackData string) *botContext {
	var cb *tele.Callback
	if callbackData != "" {
		cb = &tele.Callback{Data: callbackData}
	}
	return &botContext{
		user: &tele.User{ID: userID, FirstName: "Test"},
		cb:   cb,
		kv:   make(map[string]any),
	}
}

func (b *botContext) Update() tele.Update      { return tele.Update{ID: 1, Callback: b.cb} }
func (b *botContext) Callback() *tele.Callback { return b.cb }
func (b *botContext) Sender() *tele.User       { return b.user }
func (b *botContext) Chat() *tele.Chat         { return &tele.Chat{ID: b.user.ID} }
func (b *botContext) Get(key string) any       { return b.kv[key] }
func (b *botContext) Set(key string, v any)    { b.kv[key] = v }

func (b *botContext) EditOrSend(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		b.sent = append(b.sent, s)
	}
	return nil
}

func (b *botContext) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		b.sent = append(b.sent, s)
	}
	return nil
}

func (b *botContext) Respond(...*tele.CallbackResponse) error { return nil }

func (b *botContext) sawFailureNotice() bool {
	for _, s := range b.sent {
		if strings.Contains(s, "Something went wrong") {
			return true
		}
	}
	return false
}

type downCategories struct{}

func (downCategories) Create(context.Context, *models.Category) (int64, error) {
	return 0, errStoreDown
}
func (downCategories) ByID(context.Context, int64) (*models.Category, error) {
	return nil, errStoreDown
}
func (downCategories) ByChannel(context.Context, models.Channel) ([]models.Category, error) {
	return nil, errStoreDown
}
func (downCategories) Delete(context.Context, int64) error { return errStoreDown }

type downProducts struct{}

func (downProducts) Create(context.Context, *models.Product) (int64, error) {
	return 0, errStoreDown
}
func (downProducts) ByID(context.Context, int64) (*models.Product, error) {
	return nil, errStoreDown
}
func (downProducts) ByCategory(context.Context, int64) ([]models.Product, error) {
	return nil, errStoreDown
}
func (downProducts) CountByCategory(context.Context, int64) (int, error) {
	return 0, errStoreDown
}
func (downProducts) Delete(context.Context, int64) error { return errStoreDown }

type downOrders struct{}

func (downOrders) Create(context.Context, *models.Order) (int64, error) { return 0, errStoreDown }
func (downOrders) ByID(context.Context, int64) (*models.Order, error)  { return nil, errStoreDown }
func (downOrders) Pending(context.Context) ([]models.Order, error)     { return nil, errStoreDown }
func (downOrders) MarkClosed(context.Context, int64) (bool, error)     { return false, errStoreDown }
func (downOrders) ClosedBefore(context.Context, time.Time) ([]models.Order, error) {
	return nil, errStoreDown
}
func (downOrders) Delete(context.Context, int64) error { return errStoreDown }

func TestShopCategoriesTellsUserOnStoreFailure(t *testing.T) {
	h := New(Deps{
		FSM:     state.NewMemoryManager(),
		Catalog: services.NewCatalogService(downCategories{}, downProducts{}),
	})
	c := newBotContext(100, "\f"+cbShopCats+"|"+string(models.ChannelManual))

	err := h.ShopCategories(c)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want the store failure propagated", err)
	}
	if !c.sawFailureNotice() {
		t.Fatalf("user got no failure notice, sent: %q", c.sent)
	}
}

func TestAdminOrdersTellsAdminOnStoreFailure(t *testing.T) {
	h := New(Deps{
		FSM:    state.NewMemoryManager(),
		Orders: services.NewOrderService(downOrders{}, downProducts{}, nil, nil),
		Options: Options{
			AdminIDs: []int64{42},
		},
	})
	c := newBotContext(42, "\f"+cbAdminOrders)

	err := h.AdminOrders(c)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want the store failure propagated", err)
	}
	if !c.sawFailureNotice() {
		t.Fatalf("admin got no failure notice, sent: %q", c.sent)
	}
}

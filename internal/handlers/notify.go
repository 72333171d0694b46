package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/sender"
	"github.com/m3rciful/storebot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// Courier pushes outbound messages that originate outside a handler
// context: approver fan-out for new orders and token invoices. The bot is
// attached once the transport is up; until then sends fail soft.
type Courier struct {
	bot        atomic.Pointer[tele.Bot]
	dispatcher atomic.Pointer[sender.Dispatcher]

	adminIDs []int64
	currency string
}

// NewCourier builds a courier for the given approver set and invoice currency.
func NewCourier(adminIDs []int64, currency string) *Courier {
	return &Courier{adminIDs: adminIDs, currency: currency}
}

// Attach wires the live bot and the async dispatcher. Safe to call once
// the transport starts.
func (co *Courier) Attach(bot *tele.Bot, d *sender.Dispatcher) {
	co.bot.Store(bot)
	co.dispatcher.Store(d)
}

// NotifyNewOrder fans the order out to every approver with a close button.
// Delivery is best-effort per approver; failures are logged and never
// abort order creation.
func (co *Courier) NotifyNewOrder(ctx context.Context, order *models.Order, product *models.Product) {
	bot := co.bot.Load()
	if bot == nil {
		logger.Warn(ctx, "tg.courier", "order.notify_skipped",
			slog.Int64("order_id", order.ID),
			slog.String("reason", "bot_not_attached"),
		)
		return
	}

	caption := fmt.Sprintf(
		"🧾 *New order #%d*\nFrom: %s (`%d`)\nProduct: %s\nAmount: %.2f",
		order.ID, md(order.DisplayName), order.UserID, md(product.Name), order.Amount,
	)
	markup := &tele.ReplyMarkup{}
	btn := markup.Data("✅ Close order", cbCloseOrder, fmt.Sprintf("%d", order.ID))
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}

	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, ReplyMarkup: markup}
	for _, adminID := range co.adminIDs {
		to := &tele.User{ID: adminID}
		send := func() error {
			if order.PhotoPath != nil {
				photo := &tele.Photo{File: tele.FromDisk(*order.PhotoPath), Caption: caption}
				_, err := bot.Send(to, photo, opts)
				return err
			}
			_, err := bot.Send(to, caption, opts)
			return err
		}
		if err := co.run(ctx, "send.order_notice", "sendPhoto", send); err != nil {
			logger.Warn(ctx, "tg.courier", "order.notify_failed",
				slog.Int64("order_id", order.ID),
				slog.Int64("user_id", adminID),
				slog.String("err", err.Error()),
			)
		}
	}
}

// SendInvoice submits a token invoice to the user.
func (co *Courier) SendInvoice(ctx context.Context, userID int64, product *models.Product, payload string) error {
	bot := co.bot.Load()
	if bot == nil {
		return fmt.Errorf("courier: bot not attached")
	}
	invoice := &tele.Invoice{
		Title:       product.Name,
		Description: invoiceDescription(product),
		Payload:     payload,
		Currency:    co.currency,
		Prices: []tele.Price{
			{Label: product.Name, Amount: int(product.TokenPrice)},
		},
	}
	_, err := bot.Send(&tele.User{ID: userID}, invoice)
	return err
}

// run enqueues through the async dispatcher when attached, otherwise runs inline.
func (co *Courier) run(ctx context.Context, action, endpoint string, fn func() error) error {
	if d := co.dispatcher.Load(); d != nil {
		if err := d.Enqueue(ctx, action, endpoint, fn); err == nil {
			return nil
		}
	}
	return fn()
}

func invoiceDescription(product *models.Product) string {
	if product.Description != "" {
		return product.Description
	}
	return product.Name
}

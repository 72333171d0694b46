package middleware

import (
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers recently logged update ids; the middleware sits on
// several endpoint branches and must log each update once.
var (
	seenMu      sync.Mutex
	seenUpdates = make(map[int]time.Time)
	seenTTL     = 10 * time.Second
)

func firstSighting(updateID int) bool {
	now := time.Now()
	seenMu.Lock()
	defer seenMu.Unlock()
	for id, ts := range seenUpdates {
		if now.Sub(ts) > seenTTL {
			delete(seenUpdates, id)
		}
	}
	if _, ok := seenUpdates[updateID]; ok {
		return false
	}
	seenUpdates[updateID] = now
	return true
}

// LoggerMiddleware builds the per-update context (RID, update meta, tg
// logger), caches it on the telebot context, and logs one sampled receipt
// line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && firstSighting(upd.ID) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("rid", rid),
				slog.Int("update_id", upd.ID),
			}
			if chatID != 0 {
				attrs = append(attrs,
					slog.Int64("chat_id", chatID),
					slog.String("chat_type", string(chat.Type)),
				)
			}
			if userID != 0 {
				attrs = append(attrs, slog.Int64("user_id", userID))
				if user.Username != "" {
					attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
				}
				if user.LanguageCode != "" {
					attrs = append(attrs, slog.String("lang", user.LanguageCode))
				}
			}
			attrs = append(attrs, receiptPayload(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

// receiptPayload enriches the receipt line with the kind-specific payload:
// callback key and data, pre-checkout correlation token, or message text.
func receiptPayload(c tele.Context, upd tele.Update) []slog.Attr {
	var attrs []slog.Attr
	switch {
	case upd.Callback != nil:
		key, payload := splitCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.PreCheckoutQuery != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.PreCheckoutQuery.Payload, 256)))
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

func splitCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	key, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(key), payload
}

package router

import (
	"time"

	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions supplies the handler for callback keys nobody registered.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the single OnCallback route: it answers the callback
// immediately (stops the client spinner), then dispatches by registry key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()

		key, _ := parseCallback(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		_ = c.Respond()

		cb, ok := reg.GetCallback(key)
		if ok && cb != nil {
			return handleWithSummary(c, name, start, "", "", func() error {
				return cb(c)
			}, extras...)
		}

		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		extras = append(extras, slog.String("reason", "not_found"))
		return handleWithSummary(c, name, start, "", "", func() error {
			if fallback != nil {
				return fallback(c)
			}
			return nil
		}, extras...)
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

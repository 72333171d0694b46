package middleware

import (
	"context"
	"runtime/debug"

	"github.com/m3rciful/storebot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware contains handler panics: the update is lost but the
// poller keeps serving every other customer.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logPanic(c, r)
			}
		}()
		return next(c)
	}
}

func logPanic(c tele.Context, cause any) {
	attrs := []slog.Attr{
		slog.String("event", "tg.panic"),
		slog.Any("err", cause),
		slog.String("stack", string(debug.Stack())),
	}
	if sender := c.Sender(); sender != nil {
		attrs = append(attrs, slog.Int64("user_id", sender.ID))
	}
	logger.TG.LogAttrs(context.Background(), slog.LevelError, "panic recovered", attrs...)
}

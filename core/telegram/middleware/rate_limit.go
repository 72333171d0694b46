package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/storebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures the per-user throttle.
type RateLimitOptions struct {
	// Interval is the minimum gap between updates from one user.
	Interval time.Duration
	// Exclude names update kinds the throttle ignores ("callback",
	// "message", "pre_checkout", "other").
	Exclude map[string]struct{}
	// OnLimited runs for the user whose update was dropped.
	OnLimited tele.HandlerFunc
}

type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	lastSeen map[int64]time.Time
}

// allow records the update and reports whether it arrived after the
// user's cool-down.
func (t *throttle) allow(userID int64, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastSeen[userID]; ok && now.Sub(last) < t.interval {
		return false
	}
	t.lastSeen[userID] = now
	return true
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.PreCheckoutQuery != nil:
		return "pre_checkout"
	case upd.Message != nil:
		return "message"
	}
	return "other"
}

// RateLimitMiddleware drops updates that arrive faster than the configured
// interval per user. Button mashing on the shop menus is the common case;
// excluded kinds (payment callbacks) always pass.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := &throttle{
		interval: opts.Interval,
		lastSeen: make(map[int64]time.Time),
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if limiter.allow(user.ID, time.Now()) {
				return next(c)
			}

			attrs := []slog.Attr{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "rate limit", attrs...)

			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

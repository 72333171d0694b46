package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/storebot/core/config"
	"github.com/m3rciful/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares is the global chain every update passes through:
// recover, per-user serialization (so checkout and admin dialogs never see
// interleaved steps), the optional rate limiter, then logging and metrics.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "serialize", Use: middleware.SerializeMiddleware()},
	}
	if mw, ok := rateLimitFromConfig(cfg, onLimited); ok {
		mws = append(mws, mw)
	}
	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

func rateLimitFromConfig(cfg *coreconfig.Config, onLimited func(tele.Context) error) (Middleware, bool) {
	if cfg == nil {
		return Middleware{}, false
	}
	interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
	if interval <= 0 {
		return Middleware{}, false
	}
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[strings.ToLower(kind)] = struct{}{}
	}
	return Middleware{
		Name: "rate_limit",
		Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval:  interval,
			Exclude:   exclude,
			OnLimited: onLimited,
		}),
	}, true
}

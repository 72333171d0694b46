package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/storebot/core/config"
	"github.com/m3rciful/storebot/core/logger"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	tgsender "github.com/m3rciful/storebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
	"log/slog"
)

// Middleware is a named global middleware registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds one handler to a telebot endpoint (command string, tele.OnText,
// tele.OnCallback, tele.OnCheckout, ...).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions describes everything RunTelegram needs to assemble the bot.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime hands the live components to the OnStart/OnStop hooks; the shop
// uses it to attach the courier once the bot and dispatcher exist.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram assembles the bot and blocks until ctx is done or the poller
// stops on its own.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	cfg := opts.Config

	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	started := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: pollerFor(cfg),
		Client: BuildHTTPClient(),
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logAdapterMode(ctx, cfg, bot.Poller, time.Since(started))

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	SetupCommands(bot, reg)

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	pollDone := make(chan struct{})
	go func() {
		bot.Start()
		close(pollDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-pollDone
		runErr = ctx.Err()
	case <-pollDone:
	}

	if opts.OnStop != nil {
		if stopErr := opts.OnStop(ctx, rt); stopErr != nil {
			return stopErr
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func pollerFor(cfg *coreconfig.Config) tele.Poller {
	return BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})
}

func logAdapterMode(ctx context.Context, cfg *coreconfig.Config, poller tele.Poller, buildTook time.Duration) {
	if wh, ok := poller.(*tele.Webhook); ok {
		logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook mode",
			slog.String("event", "mode"),
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
		return
	}

	timeout := cfg.Telegram.LongPollTimeoutSeconds
	if timeout <= 0 {
		timeout = 10
	}
	logger.TG.Info("polling mode",
		slog.String("event", "mode"),
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", timeout),
		slog.Duration("duration", logger.RoundMS(buildTook)),
	)

	// A leftover webhook silently starves a long poller, so drop it.
	if strings.EqualFold(cfg.Telegram.RunMode, coreconfig.RunModeLongpoll) {
		if err := deleteWebhook(cfg.Telegram.Token); err != nil {
			logger.TG.Warn("failed to delete webhook",
				slog.String("event", "delete_webhook"),
				slog.String("mode", "polling"),
				slog.String("err", err.Error()),
			)
			return
		}
		logger.TG.Info("webhook deleted",
			slog.String("event", "delete_webhook"),
			slog.String("mode", "polling"),
		)
	}
}

func deleteWebhook(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url,
		strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}

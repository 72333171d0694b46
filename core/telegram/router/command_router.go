package router

import (
	"github.com/m3rciful/storebot/core/logger"
	tg "github.com/m3rciful/storebot/core/telegram"
	"github.com/m3rciful/storebot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions supplies the admin allow-list check for AdminOnly
// commands and what to do when the check rejects.
type CommandRouteOptions struct {
	IsAdmin       func(userID int64) bool
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes builds one route per registered command. Every command gets
// recover and logging; admin commands (/admin) additionally get the
// allow-list gate.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		IsAdmin:  opts.IsAdmin,
		OnReject: opts.OnAdminReject,
	})

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := middleware.LoggerMiddleware(middleware.RecoverMiddleware(def.Handler))
		if def.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

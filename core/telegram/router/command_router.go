package router

import (
	"log/slog"

	"github.com/m3rciful/fitbot/core/logger"
	tg "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns registered commands into routes. Each handler logs a
// handler.handled summary; admin commands are gated by AdminOnlyMiddleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for cmd, def := range cmds {
		name, inner := normalizeHandlerName(cmd), def.Handler
		var h tele.HandlerFunc = func(c tele.Context) error {
			return handleWithSummary(c, name, func() error { return inner(c) })
		}
		if def.AdminOnly {
			h = gate(h)
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands.routed"),
		slog.Int("count", len(routes)),
		slog.Bool("admin", opts.AdminID != 0),
	)
	return routes
}

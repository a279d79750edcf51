package router

import (
	"context"
	"time"

	tg "github.com/m3rciful/fitbot/core/telegram"
	tghelpers "github.com/m3rciful/fitbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation driver.
type FSM interface {
	InProgress(ctx context.Context, userID int64) bool
	HandleText(c tele.Context) error
}

func inProgress(fsm FSM, c tele.Context) bool {
	if fsm == nil || c.Sender() == nil {
		return false
	}
	return fsm.InProgress(tghelpers.BuildContext(c), c.Sender().ID)
}

// TextRoutes builds the plain text route.
// Text from users with an active conversation goes to the FSM; otherwise a
// bare command name such as "create" runs that command, and anything else is
// dropped.
func TextRoutes(fsm FSM, reg *tg.Registry) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if inProgress(fsm, c) {
			return handleWithSummary(c, "fsm", func() error {
				return fsm.HandleText(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), func() error {
					return cmd.Handler(c)
				})
			}
		}

		logSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  handler,
	}}
}

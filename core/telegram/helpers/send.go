package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

// sendAsync hands run to the dispatcher. Once the dispatcher is closed the
// call runs inline; a full shard is reported to the caller rather than sent
// inline, which could overtake replies still queued for the same chat.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueClosed):
		logger.Debug(ctx, "tg.sender", "queue.inline",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
		)
		return run()
	default:
		logger.Warn(ctx, "tg.sender", "queue.reject",
			slog.String("status", "fail"),
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return err
	}
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	countOutgoing(c, 1, hasMarkup(sendOpts))
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// Outgoing is one message of an ordered batch.
type Outgoing struct {
	Text string
	Opts *tele.SendOptions
}

// SendSequence delivers msgs in order as a single dispatcher job, so
// concurrent workers cannot reorder them. A retried job resumes from the
// first message that was not delivered.
func SendSequence(c tele.Context, msgs ...Outgoing) error {
	if len(msgs) == 0 {
		return nil
	}
	kb := false
	for _, m := range msgs {
		kb = kb || hasMarkup(m.Opts)
	}
	countOutgoing(c, len(msgs), kb)

	next := 0
	return sendAsync(c, "send.sequence", "sendMessage", func() error {
		for next < len(msgs) {
			m := msgs[next]
			var err error
			if m.Opts != nil {
				err = c.Send(m.Text, m.Opts)
			} else {
				err = c.Send(m.Text)
			}
			if err != nil {
				return err
			}
			next++
		}
		return nil
	})
}

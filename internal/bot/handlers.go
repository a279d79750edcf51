// Package bot connects the program selection dialog to Telegram.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/fitbot/core/logger"
	tghelpers "github.com/m3rciful/fitbot/core/telegram/helpers"
	"github.com/m3rciful/fitbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

const msgFailure = "⚠️ Что-то пошло не так. Попробуй позже."

// Handlers exposes Telegram handlers backed by a dialog.Machine.
type Handlers struct {
	machine *dialog.Machine
}

// NewHandlers wraps machine.
func NewHandlers(machine *dialog.Machine) *Handlers {
	return &Handlers{machine: machine}
}

// Start handles /start.
func (h *Handlers) Start(c tele.Context) error {
	return h.dispatch(c, dialog.TriggerStart, "")
}

// Create handles /create.
func (h *Handlers) Create(c tele.Context) error {
	return h.dispatch(c, dialog.TriggerBegin, "")
}

// Cancel handles /cancel.
func (h *Handlers) Cancel(c tele.Context) error {
	return h.dispatch(c, dialog.TriggerCancel, "")
}

// HandleText feeds a reply into the running dialog.
func (h *Handlers) HandleText(c tele.Context) error {
	return h.dispatch(c, dialog.TriggerText, c.Text())
}

// InProgress reports whether the user has an open dialog.
func (h *Handlers) InProgress(ctx context.Context, userID int64) bool {
	return h.machine.InProgress(ctx, userID)
}

// Sessions reports the number of open dialogs. Admin only.
func (h *Handlers) Sessions(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	n, err := h.machine.Active(ctx)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}
	logger.Info(ctx, "service.dialog", "sessions.count",
		slog.String("status", "ok"),
		slog.Int("sessions", n),
	)
	return tghelpers.SendText(c, fmt.Sprintf("Активных диалогов: %d", n))
}

func (h *Handlers) dispatch(c tele.Context, trigger dialog.Trigger, text string) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	intents, err := h.machine.Handle(ctx, dialog.Event{
		SessionID: user.ID,
		Trigger:   trigger,
		Text:      text,
	})
	if err != nil {
		_ = tghelpers.SendText(c, msgFailure, h.retryOptions(ctx, user.ID))
		return err
	}
	return Render(c, intents)
}

// retryOptions brings back the keyboard of a dialog that survived a fault;
// the one-time keyboard was hidden by the reply that failed.
func (h *Handlers) retryOptions(ctx context.Context, userID int64) *tele.SendOptions {
	s, err := h.machine.Session(ctx, userID)
	if err != nil {
		return nil
	}
	prompt, ok := dialog.Pending(s)
	if !ok {
		return nil
	}
	return &tele.SendOptions{ReplyMarkup: optionsMarkup(prompt)}
}

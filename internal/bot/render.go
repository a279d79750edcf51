package bot

import (
	tghelpers "github.com/m3rciful/fitbot/core/telegram/helpers"
	"github.com/m3rciful/fitbot/core/telegram/keyboard"
	"github.com/m3rciful/fitbot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// Messages turns intents into outgoing Telegram messages. ClearOptions is
// attached as keyboard removal to the message before it; on its own it has
// nothing to ride on and is dropped.
func Messages(intents []dialog.Intent) []tghelpers.Outgoing {
	out := make([]tghelpers.Outgoing, 0, len(intents))
	for _, in := range intents {
		switch v := in.(type) {
		case dialog.ShowOptions:
			out = append(out, tghelpers.Outgoing{
				Text: v.Prompt,
				Opts: &tele.SendOptions{ReplyMarkup: optionsMarkup(v)},
			})
		case dialog.Notice:
			out = append(out, tghelpers.Outgoing{Text: v.Text})
		case dialog.ProgramDelivered:
			out = append(out, tghelpers.Outgoing{Text: v.Text})
		case dialog.ClearOptions:
			if len(out) == 0 {
				continue
			}
			last := &out[len(out)-1]
			if last.Opts == nil {
				last.Opts = &tele.SendOptions{}
			}
			last.Opts.ReplyMarkup = keyboard.Remove()
		}
	}
	return out
}

// Render sends intents in order.
func Render(c tele.Context, intents []dialog.Intent) error {
	return tghelpers.SendSequence(c, Messages(intents)...)
}

func optionsMarkup(v dialog.ShowOptions) *tele.ReplyMarkup {
	if v.SingleChoice {
		return keyboard.Choice(v.Options...)
	}
	return keyboard.Grid(2, v.Options...)
}

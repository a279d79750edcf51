// Package keyboard builds Telegram reply keyboards.
package keyboard

import tele "gopkg.in/telebot.v4"

// Remove returns markup that hides the current reply keyboard.
func Remove() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// Grid lays labels out cols per row in a resized reply keyboard. cols < 1
// puts every label on one row.
func Grid(cols int, labels ...string) *tele.ReplyMarkup {
	if cols < 1 {
		cols = len(labels)
	}
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]tele.Row, 0, (len(labels)+cols-1)/max(cols, 1))
	for start := 0; start < len(labels); start += cols {
		end := min(start+cols, len(labels))
		btns := make([]tele.Btn, 0, end-start)
		for _, l := range labels[start:end] {
			btns = append(btns, markup.Text(l))
		}
		rows = append(rows, markup.Row(btns...))
	}
	markup.Reply(rows...)
	return markup
}

// Choice is a one option per row keyboard that Telegram hides once the
// user taps a button.
func Choice(labels ...string) *tele.ReplyMarkup {
	markup := Grid(1, labels...)
	markup.OneTimeKeyboard = true
	return markup
}

package helpers

import tele "gopkg.in/telebot.v4"

const (
	keyMessages = "out_messages"
	keyKeyboard = "out_kb"
)

// countOutgoing records queued replies on c for the handler summary. Counting
// happens at enqueue time because delivery is asynchronous.
func countOutgoing(c tele.Context, n int, keyboard bool) {
	if c == nil || n == 0 {
		return
	}
	prev, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, prev+n)
	if keyboard {
		c.Set(keyKeyboard, true)
	}
}

// Counters reports how many replies were queued for the update and whether
// any of them carried reply markup.
func Counters(c tele.Context) (messages int, keyboard bool) {
	if c == nil {
		return 0, false
	}
	messages, _ = c.Get(keyMessages).(int)
	keyboard, _ = c.Get(keyKeyboard).(bool)
	return messages, keyboard
}

func hasMarkup(opts *tele.SendOptions) bool {
	return opts != nil && opts.ReplyMarkup != nil
}

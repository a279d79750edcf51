package keyboard

import "testing"

func TestChoice(t *testing.T) {
	m := Choice("Новичок", "Средний", "Продвинутый")
	if !m.ResizeKeyboard || !m.OneTimeKeyboard {
		t.Fatalf("flags = resize:%v one_time:%v", m.ResizeKeyboard, m.OneTimeKeyboard)
	}
	if len(m.ReplyKeyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.ReplyKeyboard))
	}
	for i, want := range []string{"Новичок", "Средний", "Продвинутый"} {
		row := m.ReplyKeyboard[i]
		if len(row) != 1 || row[0].Text != want {
			t.Fatalf("row %d = %+v, want %q", i, row, want)
		}
	}
}

func TestGrid(t *testing.T) {
	m := Grid(2, "a", "b", "c")
	if len(m.ReplyKeyboard) != 2 || len(m.ReplyKeyboard[0]) != 2 || m.ReplyKeyboard[1][0].Text != "c" {
		t.Fatalf("keyboard = %+v", m.ReplyKeyboard)
	}
	if m.OneTimeKeyboard {
		t.Fatal("grid should stay open")
	}
	if one := Grid(0, "a", "b"); len(one.ReplyKeyboard) != 1 || len(one.ReplyKeyboard[0]) != 2 {
		t.Fatalf("single row = %+v", one.ReplyKeyboard)
	}
	if empty := Grid(0); len(empty.ReplyKeyboard) != 0 {
		t.Fatalf("empty = %+v", empty.ReplyKeyboard)
	}
}

func TestRemove(t *testing.T) {
	if !Remove().RemoveKeyboard {
		t.Fatal("remove flag not set")
	}
}

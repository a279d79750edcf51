package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryListAndLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/create", Command{Handler: noop, Description: "create"})
	reg.RegisterCommand("/sessions", Command{Handler: noop, Description: "admin", AdminOnly: true, Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "/create" || visible[1].Text != "/start" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all = %+v", all)
	}

	for _, in := range []string{"/create", "create", " create "} {
		key, _, ok := reg.LookupCommand(in)
		if !ok || key != "/create" {
			t.Fatalf("LookupCommand(%q) = %q, %v", in, key, ok)
		}
	}
	for _, in := range []string{"", "Сила", "/Create"} {
		if _, _, ok := reg.LookupCommand(in); ok {
			t.Fatalf("LookupCommand(%q) matched", in)
		}
	}
}

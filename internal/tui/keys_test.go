package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestKeyString(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "q"},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), "space"},
		{tcell.NewEventKey(tcell.KeyRune, '/', tcell.ModNone), "/"},
		{tcell.NewEventKey(tcell.KeyRune, 'X', tcell.ModAlt), "alt+x"},
		{tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), "tab"},
		{tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone), "shift+tab"},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "enter"},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "esc"},
		{tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone), "backspace"},
		{tcell.NewEventKey(tcell.KeyCtrlO, 0, tcell.ModNone), "ctrl+o"},
		{tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), "pgdn"},
		{tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), "del"},
		{tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModCtrl), "ctrl+end"},
	}
	for _, c := range cases {
		if got := KeyString(c.ev); got != c.want {
			t.Fatalf("KeyString(%v) = %q, want %q", c.ev.Name(), got, c.want)
		}
	}
}

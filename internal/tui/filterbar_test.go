package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qstock/internal/config"
	"github.com/kobzarvs/qstock/internal/filter"
)

func typeRunes(b *FilterBar, s string) {
	for _, r := range s {
		b.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestFilterBarEditing(t *testing.T) {
	var b FilterBar
	b.Focus("")
	typeRunes(&b, "mlk")
	b.HandleKey(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	typeRunes(&b, "i")
	if got := b.Search(); got != "mlik" {
		t.Fatalf("search = %q, want mlik", got)
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	if changed := b.HandleKey(tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone)); changed {
		t.Fatalf("backspace at start reported a change")
	}
	if changed := b.HandleKey(tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone)); !changed {
		t.Fatalf("delete did not report a change")
	}
	if got := b.Search(); got != "lik" {
		t.Fatalf("search = %q, want lik", got)
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyCtrlU, 0, tcell.ModNone))
	if b.Search() != "" {
		t.Fatalf("ctrl+u left %q", b.Search())
	}
	b.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if b.Active() {
		t.Fatalf("esc did not blur the search box")
	}
}

func TestFilterBarRender(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(100, 3)

	b := FilterBar{ShopLabel: "Hypermart"}
	b.Render(s, NewStyles(config.Default().Theme, 2), 0, 0, 100, "instance",
		filter.State{Search: "milk", Family: "Dairy", ShopID: "s1", MissingOnly: true})

	line := screenLine(s, 0)
	for _, want := range []string{"INSTANCE", "milk", "family: Dairy", "shop: Hypermart", "missing only"} {
		if !strings.Contains(line, want) {
			t.Fatalf("filter bar %q lacks %q", line, want)
		}
	}
}

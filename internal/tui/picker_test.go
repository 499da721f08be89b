package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qstock/internal/config"
)

func pickerItems(labels ...string) []PickerItem {
	items := make([]PickerItem, len(labels))
	for i, l := range labels {
		items[i] = PickerItem{Label: l, Value: strings.ToLower(l)}
	}
	return items
}

func TestPickerStartsOnCheckedItem(t *testing.T) {
	items := pickerItems("Any", "Bakery", "Dairy")
	items[2].Checked = true
	p := NewPicker("Family", items)
	if p.Index != 2 {
		t.Fatalf("index = %d, want 2", p.Index)
	}
}

func TestPickerNavigation(t *testing.T) {
	p := NewPicker("Shop", pickerItems("a", "b", "c", "d", "e", "f"))
	down := tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	for range 4 {
		p.HandleKey(down, 3)
	}
	if p.Index != 4 || p.Scroll != 2 {
		t.Fatalf("index/scroll = %d/%d, want 4/2", p.Index, p.Scroll)
	}
	p.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'g', tcell.ModNone), 3)
	if p.Index != 0 || p.Scroll != 0 {
		t.Fatalf("after g index/scroll = %d/%d, want 0/0", p.Index, p.Scroll)
	}
	p.HandleKey(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone), 3)
	if p.Index != 3 {
		t.Fatalf("after pgdn index = %d, want 3", p.Index)
	}
	p.HandleKey(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone), 3)
	if p.Index != 5 {
		t.Fatalf("after end index = %d, want 5", p.Index)
	}
	if a := p.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), 3); a != PickerActionSelect {
		t.Fatalf("enter action = %v, want select", a)
	}
	if a := p.HandleKey(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), 3); a != PickerActionClose {
		t.Fatalf("esc action = %v, want close", a)
	}
}

func TestPickerEmptyDoesNotSelect(t *testing.T) {
	p := NewPicker("Empty", nil)
	if a := p.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), 3); a != PickerActionNone {
		t.Fatalf("enter on empty picker = %v", a)
	}
}

func TestPickerRender(t *testing.T) {
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer s.Fini()
	s.SetSize(40, 12)

	items := pickerItems("Bakery", "Dairy")
	items[1].Checked = true
	p := NewPicker("Family", items)
	p.Render(s, NewStyles(config.Default().Theme, 2))

	var found bool
	for y := range 12 {
		line := screenLine(s, y)
		if strings.Contains(line, "* Dairy") {
			found = true
		}
	}
	if !found {
		t.Fatalf("checked item not drawn")
	}
}

package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// PickerItem is one choice of a picker.
type PickerItem struct {
	Label   string
	Value   string
	Checked bool // shown with a check mark (current value, multi-select membership)
}

// PickerAction is what a key did to the picker.
type PickerAction int

const (
	PickerActionNone PickerAction = iota
	PickerActionClose
	PickerActionSelect
)

// Picker is a scrollable list overlay used for the filter dropdowns and
// the relation selects of a row.
type Picker struct {
	Title string
	Items []PickerItem
	Index int
	// Scroll is the first visible item.
	Scroll int
	// Multi keeps the picker open on select; the caller toggles Checked.
	Multi bool
}

func NewPicker(title string, items []PickerItem) *Picker {
	p := &Picker{Title: title, Items: items}
	for i, it := range items {
		if it.Checked {
			p.Index = i
			break
		}
	}
	return p
}

// Selected returns the item under the cursor.
func (p *Picker) Selected() (PickerItem, bool) {
	if p.Index < 0 || p.Index >= len(p.Items) {
		return PickerItem{}, false
	}
	return p.Items[p.Index], true
}

func (p *Picker) MoveUp() {
	if p.Index > 0 {
		p.Index--
	}
}

func (p *Picker) MoveDown() {
	if p.Index < len(p.Items)-1 {
		p.Index++
	}
}

func (p *Picker) MoveToFirst() { p.Index = 0 }

func (p *Picker) MoveToLast() {
	if len(p.Items) > 0 {
		p.Index = len(p.Items) - 1
	}
}

func (p *Picker) PageUp(height int) {
	p.Index = max(p.Index-height, 0)
}

func (p *Picker) PageDown(height int) {
	p.Index = max(min(p.Index+height, len(p.Items)-1), 0)
}

// EnsureVisible adjusts scroll to make the current item visible.
func (p *Picker) EnsureVisible(height int) {
	if height <= 0 {
		return
	}
	if p.Index < p.Scroll {
		p.Scroll = p.Index
	}
	if p.Index >= p.Scroll+height {
		p.Scroll = p.Index - height + 1
	}
}

// HandleKey processes navigation keys.
func (p *Picker) HandleKey(ev *tcell.EventKey, viewHeight int) PickerAction {
	switch KeyString(ev) {
	case "up", "k":
		p.MoveUp()
	case "down", "j":
		p.MoveDown()
	case "pgup":
		p.PageUp(viewHeight)
	case "pgdn":
		p.PageDown(viewHeight)
	case "home", "g":
		p.MoveToFirst()
	case "end", "G":
		p.MoveToLast()
	case "enter", "space":
		if _, ok := p.Selected(); ok {
			return PickerActionSelect
		}
	case "esc", "q":
		return PickerActionClose
	}
	p.EnsureVisible(viewHeight)
	return PickerActionNone
}

// Size returns the box the picker wants inside a screen of sw x sh cells.
func (p *Picker) Size(sw, sh int) (w, h int) {
	w = runewidth.StringWidth(p.Title) + 4
	for _, it := range p.Items {
		w = max(w, runewidth.StringWidth(it.Label)+6)
	}
	w = min(w, max(sw-4, 1))
	h = min(len(p.Items)+2, max(sh-4, 3))
	return w, h
}

// Render draws the picker centered on the screen.
func (p *Picker) Render(s tcell.Screen, st Styles) {
	sw, sh := s.Size()
	w, h := p.Size(sw, sh)
	x := max((sw-w)/2, 0)
	y := max((sh-h)/2, 0)

	// Frame and title
	for row := y; row < y+h; row++ {
		clearLine(s, x, row, w, st.Picker)
		s.SetContent(x, row, '│', nil, st.PickerBorder)
		s.SetContent(x+w-1, row, '│', nil, st.PickerBorder)
	}
	for col := x; col < x+w; col++ {
		s.SetContent(col, y, '─', nil, st.PickerBorder)
		s.SetContent(col, y+h-1, '─', nil, st.PickerBorder)
	}
	s.SetContent(x, y, '┌', nil, st.PickerBorder)
	s.SetContent(x+w-1, y, '┐', nil, st.PickerBorder)
	s.SetContent(x, y+h-1, '└', nil, st.PickerBorder)
	s.SetContent(x+w-1, y+h-1, '┘', nil, st.PickerBorder)
	drawText(s, x+2, y, w-4, p.Title, st.PickerBorder)

	listHeight := h - 2
	p.EnsureVisible(listHeight)
	for i := 0; i < listHeight; i++ {
		idx := p.Scroll + i
		if idx >= len(p.Items) {
			break
		}
		item := p.Items[idx]
		style := st.Picker
		if idx == p.Index {
			style = st.PickerSelected
		}
		row := y + 1 + i
		mark := "  "
		if item.Checked {
			mark = "* "
		}
		drawCell(s, x+1, row, w-2, mark+item.Label, style)
	}
}

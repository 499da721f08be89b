package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qstock/internal/filter"
)

// FilterBar holds the filter refs of one list: the search box and the
// labels of the discrete selects. The filter state itself is owned by the
// table.
type FilterBar struct {
	search []rune
	cursor int
	active bool

	// Display names of the selected producer and shop.
	ProducerLabel string
	ShopLabel     string
}

func (b *FilterBar) Active() bool   { return b.active }
func (b *FilterBar) Search() string { return string(b.search) }

// Focus activates the search box with the cursor at the end.
func (b *FilterBar) Focus(search string) {
	b.active = true
	b.search = []rune(search)
	b.cursor = len(b.search)
}

func (b *FilterBar) Blur() { b.active = false }

// HandleKey edits the search box. It reports whether the search text
// changed.
func (b *FilterBar) HandleKey(ev *tcell.EventKey) (changed bool) {
	switch KeyString(ev) {
	case "esc", "enter", "tab":
		b.active = false
		return false
	case "backspace":
		if b.cursor == 0 {
			return false
		}
		b.search = append(b.search[:b.cursor-1], b.search[b.cursor:]...)
		b.cursor--
		return true
	case "del":
		if b.cursor >= len(b.search) {
			return false
		}
		b.search = append(b.search[:b.cursor], b.search[b.cursor+1:]...)
		return true
	case "left":
		b.cursor = max(b.cursor-1, 0)
		return false
	case "right":
		b.cursor = min(b.cursor+1, len(b.search))
		return false
	case "home":
		b.cursor = 0
		return false
	case "end":
		b.cursor = len(b.search)
		return false
	case "ctrl+u":
		if len(b.search) == 0 {
			return false
		}
		b.search = b.search[:0]
		b.cursor = 0
		return true
	}
	if ev.Key() == tcell.KeyRune {
		b.search = append(b.search, 0)
		copy(b.search[b.cursor+1:], b.search[b.cursor:])
		b.search[b.cursor] = ev.Rune()
		b.cursor++
		return true
	}
	return false
}

// Render draws the bar on one line: list name, search box and the active
// discrete filters.
func (b *FilterBar) Render(s tcell.Screen, st Styles, x, y, w int, list string, state filter.State) {
	clearLine(s, x, y, w, st.FilterBar)
	col := x
	col += drawText(s, col, y, w, fmt.Sprintf(" %s ", strings.ToUpper(list)), st.Header)
	col += drawText(s, col, y, x+w-col, " / ", st.FilterBar)

	searchStyle := st.FilterBar
	if b.active {
		searchStyle = st.Edit
	}
	text := string(b.search)
	if !b.active {
		text = state.Search
	}
	start := col
	col += drawText(s, col, y, x+w-col, text, searchStyle)
	if b.active {
		s.ShowCursor(start+displayWidth(b.search[:b.cursor]), y)
	}

	var parts []string
	if state.Family != "" {
		parts = append(parts, "family: "+state.Family)
	}
	if state.ProducerID != "" {
		parts = append(parts, "producer: "+b.ProducerLabel)
	}
	if state.ShopID != "" {
		parts = append(parts, "shop: "+b.ShopLabel)
	}
	if state.MissingOnly {
		parts = append(parts, "missing only")
	}
	if len(parts) > 0 {
		col += drawText(s, col, y, x+w-col, "   ", st.FilterBar)
		drawText(s, col, y, x+w-col, strings.Join(parts, " · "), st.FilterBar)
	}
}

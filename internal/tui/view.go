// Package tui is the terminal surface of the inventory tables: a tcell
// implementation of the table viewport, the filter bar, pickers and the
// key handling that turns keystrokes into row actions.
package tui

import (
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/table"
)

var ErrDisposed = errors.New("row disposed")

const placeholderText = "No matching records"

// View implements table.Surface on a rectangle of a tcell screen. The first
// line of the rectangle is the column header; the rest is the scrolling
// body.
type View struct {
	x, y, w, h int
	scrollTop  int

	frame table.Frame
	rows  []*Row
	cols  []Column

	focusID    string
	focusField int
}

var _ table.Surface = (*View)(nil)

func NewView() *View {
	return &View{}
}

// SetRegion places the view. Column widths follow the new width.
func (v *View) SetRegion(x, y, w, h int) {
	v.x, v.y, v.w, v.h = x, y, max(w, 0), max(h, 0)
	v.cols = LayoutColumns(v.w)
}

func (v *View) ViewportHeight() int { return max(v.h-1, 0) }
func (v *View) ScrollTop() int      { return v.scrollTop }
func (v *View) SetScrollTop(y int)  { v.scrollTop = max(y, 0) }

func (v *View) BuildRow(r table.Row) table.RowHandle {
	return newRow(r)
}

func (v *View) RestyleRow(h table.RowHandle, band int) {
	h.(*Row).band = band
}

func (v *View) MeasureRow(h table.RowHandle) (int, error) {
	row := h.(*Row)
	if row.disposed {
		return 0, ErrDisposed
	}
	return row.Lines(), nil
}

func (v *View) DisposeRow(h table.RowHandle) {
	h.(*Row).disposed = true
}

// Focus reports the focused cell. Cursor and draft are only known while
// the focused row is materialized.
func (v *View) Focus() (table.Focus, bool) {
	if v.focusID == "" {
		return table.Focus{}, false
	}
	f := table.Focus{ID: v.focusID, Field: v.FocusField()}
	if row := v.FocusedRow(); row != nil {
		if field, ok := row.Editing(); ok {
			f.Field = field
			f.Editing = true
			f.Draft = row.Draft()
			f.Cursor = row.Cursor()
		}
	}
	return f, true
}

func (v *View) RestoreFocus(h table.RowHandle, f table.Focus) {
	h.(*Row).restore(f)
}

func (v *View) Patch(f table.Frame) {
	v.frame = f
	v.rows = v.rows[:0]
	for _, h := range f.Rows {
		v.rows = append(v.rows, h.(*Row))
	}
}

// Frame returns the last patch.
func (v *View) Frame() table.Frame { return v.frame }

// Rows returns the materialized rows in display order.
func (v *View) Rows() []*Row { return v.rows }

func (v *View) SetFocus(id string, field int) {
	v.focusID = id
	v.focusField = min(max(field, 0), len(record.Fields)-1)
}

func (v *View) FocusID() string { return v.focusID }

func (v *View) FocusField() record.Field { return record.Fields[v.focusField] }

func (v *View) FocusFieldIndex() int { return v.focusField }

// FocusedRow returns the materialized row holding focus, or nil.
func (v *View) FocusedRow() *Row {
	if v.focusID == "" {
		return nil
	}
	for _, r := range v.rows {
		if r.ID() == v.focusID {
			return r
		}
	}
	return nil
}

// rowTop is the body line of the i-th materialized row, before scrolling.
func (v *View) rowTop(i int) int {
	top := v.frame.TopSpacer
	for _, r := range v.rows[:i] {
		top += r.Lines()
	}
	return top
}

// RowAt maps a screen position to a materialized row and column index.
func (v *View) RowAt(sx, sy int) (*Row, int) {
	line := sy - v.y - 1
	if line < 0 || line >= v.ViewportHeight() {
		return nil, -1
	}
	line += v.scrollTop
	for i, r := range v.rows {
		top := v.rowTop(i)
		if line >= top && line < top+r.Lines() {
			return r, ColumnAt(v.cols, sx-v.x)
		}
	}
	return nil, -1
}

func (v *View) Render(s tcell.Screen, st Styles) {
	if v.w <= 0 || v.h <= 0 {
		return
	}
	clearLine(s, v.x, v.y, v.w, st.Header)
	for _, c := range v.cols {
		drawCell(s, v.x+c.X, v.y, c.Width, c.Title, st.Header)
	}

	body := v.ViewportHeight()
	for line := 0; line < body; line++ {
		clearLine(s, v.x, v.y+1+line, v.w, st.Base)
	}
	if v.frame.Placeholder {
		text := runewidth.Truncate(placeholderText, v.w, "…")
		x := v.x + max((v.w-runewidth.StringWidth(text))/2, 0)
		if body > 0 {
			drawText(s, x, v.y+1, v.w, text, st.Placeholder)
		}
		return
	}
	for i, r := range v.rows {
		line := v.rowTop(i) - v.scrollTop
		if line < 0 || line >= body {
			continue
		}
		v.renderRow(s, st, r, v.y+1+line)
	}
}

func (v *View) renderRow(s tcell.Screen, st Styles, r *Row, y int) {
	base := st.Stripe(r.band)
	clearLine(s, v.x, y, v.w, base)
	focused := r.ID() == v.focusID

	marker := " "
	if r.entry.Missing {
		marker = "!"
	}
	if focused {
		marker = ">" + marker
	}
	drawCell(s, v.x, y, v.cols[0].Width, marker, withBackground(st.Missing, base))

	editField, editing := r.Editing()
	for _, c := range v.cols[1:] {
		style := base
		switch {
		case c.Field == record.FieldName && r.entry.Missing:
			style = withBackground(st.Missing, base)
		case (c.Field == record.FieldHave && r.entry.Have) || (c.Field == record.FieldBuy && r.entry.Buy):
			style = withBackground(st.Checked, base)
		}
		if focused && c.Field == v.FocusField() {
			style = st.Focus
		}
		if editing && c.Field == editField {
			v.renderEditor(s, st, r, v.x+c.X, y, c.Width)
			continue
		}
		drawCell(s, v.x+c.X, y, c.Width, r.Cell(c.Field), style)
	}
}

// renderEditor draws the draft of an inline edit and places the terminal
// cursor. Long drafts scroll so the cursor stays inside the cell.
func (v *View) renderEditor(s tcell.Screen, st Styles, r *Row, x, y, width int) {
	if width <= 0 {
		return
	}
	draft := []rune(r.Draft())
	before := runewidth.StringWidth(string(draft[:r.Cursor()]))
	text := string(draft)
	shift := 0
	if before >= width {
		shift = before - width + 1
		text = runewidth.TruncateLeft(text, shift, "")
	}
	drawCell(s, x, y, width, text, st.Edit)
	s.ShowCursor(x+before-shift, y)
}

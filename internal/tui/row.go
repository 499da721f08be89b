package tui

import (
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/table"
)

// Row is the materialized row handle of the tcell surface. Cursor and draft
// of an inline edit live here, so they survive as long as the handle is
// reused.
type Row struct {
	entry record.Entry
	band  int
	cells []string // one per record.Fields entry

	editing bool
	field   record.Field
	draft   []rune
	cursor  int

	disposed bool
}

func newRow(r table.Row) *Row {
	row := &Row{entry: r.Entry, band: r.Band}
	row.cells = make([]string, len(record.Fields))
	for i, f := range record.Fields {
		row.cells[i] = cellText(r.Entry, f)
	}
	return row
}

func cellText(e record.Entry, f record.Field) string {
	switch f {
	case record.FieldProducer:
		return e.ProducerName
	case record.FieldShops:
		return e.ShopSummary
	case record.FieldHave:
		return checkbox(e.Have)
	case record.FieldBuy:
		return checkbox(e.Buy)
	}
	return e.Text(f)
}

func checkbox(v bool) string {
	if v {
		return "[x]"
	}
	return "[ ]"
}

func (r *Row) ID() string          { return r.entry.ID }
func (r *Row) Entry() record.Entry { return r.entry }
func (r *Row) Band() int           { return r.band }
func (r *Row) Disposed() bool      { return r.disposed }

// Cell returns the display text of a field.
func (r *Row) Cell(f record.Field) string {
	if r.editing && r.field == f {
		return string(r.draft)
	}
	for i, rf := range record.Fields {
		if rf == f {
			return r.cells[i]
		}
	}
	return ""
}

// Lines is the height of the row in terminal lines.
func (r *Row) Lines() int { return 1 }

// BeginEdit opens the inline editor on a text field with the cursor at the
// end.
func (r *Row) BeginEdit(f record.Field) {
	r.editing = true
	r.field = f
	r.draft = []rune(r.entry.Text(f))
	r.cursor = len(r.draft)
}

func (r *Row) EndEdit() {
	r.editing = false
	r.draft = nil
	r.cursor = 0
}

func (r *Row) Editing() (record.Field, bool) { return r.field, r.editing }
func (r *Row) Draft() string                 { return string(r.draft) }
func (r *Row) Cursor() int                   { return r.cursor }

func (r *Row) Insert(ch rune) {
	r.draft = append(r.draft, 0)
	copy(r.draft[r.cursor+1:], r.draft[r.cursor:])
	r.draft[r.cursor] = ch
	r.cursor++
}

// Backspace deletes before the cursor. It reports whether the draft changed.
func (r *Row) Backspace() bool {
	if r.cursor == 0 {
		return false
	}
	r.draft = append(r.draft[:r.cursor-1], r.draft[r.cursor:]...)
	r.cursor--
	return true
}

// DeleteChar deletes under the cursor. It reports whether the draft changed.
func (r *Row) DeleteChar() bool {
	if r.cursor >= len(r.draft) {
		return false
	}
	r.draft = append(r.draft[:r.cursor], r.draft[r.cursor+1:]...)
	return true
}

func (r *Row) MoveCursor(delta int) {
	r.cursor = min(max(r.cursor+delta, 0), len(r.draft))
}

func (r *Row) CursorHome() { r.cursor = 0 }
func (r *Row) CursorEnd()  { r.cursor = len(r.draft) }

// restore installs focus state carried over from a replaced handle.
func (r *Row) restore(f table.Focus) {
	if !f.Editing {
		return
	}
	r.editing = true
	r.field = f.Field
	r.draft = []rune(f.Draft)
	r.cursor = min(max(f.Cursor, 0), len(r.draft))
}

package tui

import (
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/kobzarvs/qstock/internal/config"
	"github.com/kobzarvs/qstock/internal/filter"
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/store"
	"github.com/kobzarvs/qstock/internal/table"
)

// Lookup supplies the choices of the pickers.
type Lookup interface {
	Families() []string
	Producers() []store.Named
	Shops() []store.Named
}

// Pane is one list on screen: its table, the surface it renders to and
// its filter bar.
type Pane struct {
	Name  string
	Table *table.Table
	View  *View
	Bar   FilterBar

	cursor      int    // index into Table.Visible()
	pendingEdit string // record to open in the editor once it is materialized
	signature   string // filter signature seen by the last Sync
	synced      bool
}

type pickTarget int

const (
	pickFilterFamily pickTarget = iota
	pickFilterProducer
	pickFilterShop
	pickRowFamily
	pickRowProducer
	pickRowShops
)

type Options struct {
	Panes  []*Pane
	Active int
	Lookup Lookup
	Keymap config.Keymap
	Styles Styles
	Logger *zap.Logger
}

// UI routes terminal input to the active pane and paints the screen.
// All methods run on the UI goroutine.
type UI struct {
	panes  []*Pane
	active int
	lookup Lookup
	keys   config.Keymap
	styles Styles
	log    *zap.Logger

	picker  *Picker
	pick    pickTarget
	pickID  string
	message string
	width   int
	height  int
}

func New(opts Options) *UI {
	u := &UI{
		panes:  opts.Panes,
		active: opts.Active,
		lookup: opts.Lookup,
		keys:   opts.Keymap,
		styles: opts.Styles,
		log:    opts.Logger,
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.active < 0 || u.active >= len(u.panes) {
		u.active = 0
	}
	return u
}

// Pane returns the active pane.
func (u *UI) Pane() *Pane { return u.panes[u.active] }

func (u *UI) Panes() []*Pane { return u.panes }

// SetActive switches to the pane called name. It reports whether one
// matched.
func (u *UI) SetActive(name string) bool {
	for i, p := range u.panes {
		if p.Name == name {
			u.active = i
			p.Table.Schedule()
			return true
		}
	}
	return false
}

func (u *UI) SetMessage(msg string) { u.message = msg }
func (u *UI) Message() string       { return u.message }

// Resize lays every pane out for a w x h screen: filter bar on the first
// line, status line on the last, the table in between.
func (u *UI) Resize(w, h int) {
	u.width, u.height = w, h
	for _, p := range u.panes {
		p.View.SetRegion(0, 1, w, max(h-2, 0))
		p.Table.Schedule()
	}
}

// Sync keeps the focus on a visible record after a pass and scrolls it
// into view. After a filter change the focus moves to the first record,
// leaving the list scrolled to the top. Call it after pending frames have
// run.
func (u *UI) Sync() {
	p := u.Pane()
	sig := p.Table.Signature()
	refiltered := p.synced && sig != p.signature
	p.signature, p.synced = sig, true

	vis := p.Table.Visible()
	if len(vis) == 0 {
		p.cursor = 0
		p.View.SetFocus("", p.View.FocusFieldIndex())
		return
	}
	idx := 0
	if !refiltered {
		idx = p.Table.IndexOf(p.View.FocusID())
		if idx < 0 {
			idx = min(max(p.cursor, 0), len(vis)-1)
		}
	}
	p.cursor = idx
	p.View.SetFocus(vis[idx].ID, p.View.FocusFieldIndex())
	u.ensureVisible(p)

	if p.pendingEdit != "" {
		if row := p.View.FocusedRow(); row != nil && row.ID() == p.pendingEdit {
			row.BeginEdit(record.FieldName)
			p.View.SetFocus(row.ID(), 0)
			p.pendingEdit = ""
		}
	}
}

func (u *UI) ensureVisible(p *Pane) {
	rh := max(p.Table.RowHeight(), 1)
	vh := p.View.ViewportHeight()
	top := p.cursor * rh
	st := p.View.ScrollTop()
	switch {
	case top < st:
		st = top
	case top+rh > st+vh:
		st = max(top+rh-vh, 0)
	default:
		return
	}
	p.View.SetScrollTop(st)
	p.Table.Schedule()
}

// HandleKey processes one key. It reports whether the app should quit.
func (u *UI) HandleKey(ev *tcell.EventKey) bool {
	p := u.Pane()
	switch {
	case u.picker != nil:
		u.handlePicker(ev)
		return false
	case p.Bar.Active():
		if p.Bar.HandleKey(ev) {
			st := p.Table.Filter()
			st.Search = p.Bar.Search()
			p.Table.SetFilter(st)
		}
		return false
	}
	if row := p.View.FocusedRow(); row != nil {
		if _, editing := row.Editing(); editing {
			return u.handleEdit(p, row, ev)
		}
	}
	action := u.keys.Table[KeyString(ev)]
	if action == "" {
		return false
	}
	u.log.Debug("key", zap.String("key", KeyString(ev)), zap.String("action", action))
	return u.do(p, action)
}

func (u *UI) do(p *Pane, action string) bool {
	vh := max(p.View.ViewportHeight()/max(p.Table.RowHeight(), 1), 1)
	switch action {
	case "move_up":
		u.moveCursor(p, -1)
	case "move_down":
		u.moveCursor(p, 1)
	case "page_up":
		u.moveCursor(p, -vh)
	case "page_down":
		u.moveCursor(p, vh)
	case "first":
		u.moveCursor(p, -len(p.Table.Visible()))
	case "last":
		u.moveCursor(p, len(p.Table.Visible()))
	case "field_next":
		u.moveField(p, 1)
	case "field_prev":
		u.moveField(p, -1)
	case "edit":
		u.edit(p)
	case "toggle":
		u.toggle(p)
	case "delete":
		if id := p.View.FocusID(); id != "" {
			u.report(p.Table.Dispatch(table.Action{Kind: table.ActionDelete, ID: id}), "deleted")
		}
	case "create":
		id, err := p.Table.CreateRelated(p.View.FocusID())
		if u.report(err, "created") {
			p.View.SetFocus(id, 0)
			p.pendingEdit = id
		}
	case "move":
		if id := p.View.FocusID(); id != "" {
			u.report(p.Table.Dispatch(table.Action{Kind: table.ActionMove, ID: id}), "moved to the other list")
		}
	case "search":
		p.Bar.Focus(p.Table.Filter().Search)
	case "pick_family":
		u.openFilterPicker(p, pickFilterFamily)
	case "pick_producer":
		u.openFilterPicker(p, pickFilterProducer)
	case "pick_shop":
		u.openFilterPicker(p, pickFilterShop)
	case "toggle_missing":
		st := p.Table.Filter()
		st.MissingOnly = !st.MissingOnly
		p.Table.SetFilter(st)
	case "clear_filters":
		p.Bar = FilterBar{}
		p.Table.SetFilter(filter.State{})
	case "switch_list":
		if len(u.panes) > 1 {
			u.active = (u.active + 1) % len(u.panes)
			u.Pane().Table.Schedule()
		}
	case "quit":
		return true
	default:
		u.log.Warn("unknown action", zap.String("action", action))
	}
	return false
}

// report sets the status message from a dispatch result. It reports
// whether err was nil.
func (u *UI) report(err error, ok string) bool {
	if err != nil {
		u.message = err.Error()
		return false
	}
	u.message = ok
	return true
}

func (u *UI) moveCursor(p *Pane, delta int) {
	vis := p.Table.Visible()
	if len(vis) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(vis)-1)
	p.View.SetFocus(vis[p.cursor].ID, p.View.FocusFieldIndex())
	u.ensureVisible(p)
}

func (u *UI) moveField(p *Pane, delta int) {
	n := len(record.Fields)
	p.View.SetFocus(p.View.FocusID(), ((p.View.FocusFieldIndex()+delta)%n+n)%n)
}

func (u *UI) edit(p *Pane) {
	row := p.View.FocusedRow()
	if row == nil {
		return
	}
	field := p.View.FocusField()
	switch {
	case field.Text():
		row.BeginEdit(field)
	case field == record.FieldFamily:
		u.openRowPicker(row, pickRowFamily)
	case field == record.FieldProducer:
		u.openRowPicker(row, pickRowProducer)
	case field == record.FieldShops:
		u.openRowPicker(row, pickRowShops)
	default:
		u.toggle(p)
	}
}

func (u *UI) toggle(p *Pane) {
	row := p.View.FocusedRow()
	if row == nil {
		return
	}
	e := row.Entry()
	var value bool
	switch p.View.FocusField() {
	case record.FieldHave:
		value = !e.Have
	case record.FieldBuy:
		value = !e.Buy
	default:
		u.message = "space toggles Have and Buy"
		return
	}
	u.report(p.Table.Dispatch(table.Action{
		Kind: table.ActionToggle, ID: e.ID, Field: p.View.FocusField(), Value: value,
	}), "")
}

func (u *UI) handleEdit(p *Pane, row *Row, ev *tcell.EventKey) bool {
	field, _ := row.Editing()
	dispatch := func() {
		u.report(p.Table.Dispatch(table.Action{
			Kind: table.ActionEdit, ID: row.ID(), Field: field, Value: row.Draft(),
		}), "")
	}
	switch u.keys.Edit[KeyString(ev)] {
	case "edit_commit":
		dispatch()
		// A failed commit keeps the editor open on the typed value.
		if u.report(p.Table.Flush(), "saved") {
			row.EndEdit()
		}
	case "edit_cancel":
		original := row.Entry().Text(field)
		if row.Draft() != original && p.Table.Pending(row.ID(), field) {
			u.report(p.Table.Dispatch(table.Action{
				Kind: table.ActionEdit, ID: row.ID(), Field: field, Value: original,
			}), "")
		}
		row.EndEdit()
	case "edit_next", "edit_prev":
		dir := 1
		if u.keys.Edit[KeyString(ev)] == "edit_prev" {
			dir = -1
		}
		row.EndEdit()
		u.moveToTextField(p, dir)
		if next := p.View.FocusField(); next.Text() {
			row.BeginEdit(next)
		}
	case "cursor_left":
		row.MoveCursor(-1)
	case "cursor_right":
		row.MoveCursor(1)
	case "line_start":
		row.CursorHome()
	case "line_end":
		row.CursorEnd()
	case "backspace":
		if row.Backspace() {
			dispatch()
		}
	case "delete_char":
		if row.DeleteChar() {
			dispatch()
		}
	case "quit":
		return true
	default:
		if ev.Key() == tcell.KeyRune {
			row.Insert(ev.Rune())
			dispatch()
		}
	}
	return false
}

func (u *UI) moveToTextField(p *Pane, dir int) {
	n := len(record.Fields)
	idx := p.View.FocusFieldIndex()
	for range n {
		idx = ((idx+dir)%n + n) % n
		if record.Fields[idx].Text() {
			break
		}
	}
	p.View.SetFocus(p.View.FocusID(), idx)
}

func (u *UI) openFilterPicker(p *Pane, target pickTarget) {
	st := p.Table.Filter()
	items := []PickerItem{{Label: "(any)", Value: ""}}
	title := ""
	switch target {
	case pickFilterFamily:
		title = "Family"
		for _, f := range u.lookup.Families() {
			items = append(items, PickerItem{Label: f, Value: f, Checked: f == st.Family})
		}
	case pickFilterProducer:
		title = "Producer"
		for _, n := range u.lookup.Producers() {
			items = append(items, PickerItem{Label: n.Name, Value: n.ID, Checked: n.ID == st.ProducerID})
		}
	case pickFilterShop:
		title = "Shop"
		for _, n := range u.lookup.Shops() {
			items = append(items, PickerItem{Label: n.Name, Value: n.ID, Checked: n.ID == st.ShopID})
		}
	}
	u.picker = NewPicker(title, items)
	u.pick = target
	u.pickID = ""
}

func (u *UI) openRowPicker(row *Row, target pickTarget) {
	e := row.Entry()
	var (
		title string
		items []PickerItem
	)
	switch target {
	case pickRowFamily:
		title = "Family of " + e.Name
		for _, f := range u.lookup.Families() {
			items = append(items, PickerItem{Label: f, Value: f, Checked: f == e.Family})
		}
	case pickRowProducer:
		title = "Producer of " + e.Name
		items = append(items, PickerItem{Label: "(none)", Value: "", Checked: e.ProducerID == ""})
		for _, n := range u.lookup.Producers() {
			items = append(items, PickerItem{Label: n.Name, Value: n.ID, Checked: n.ID == e.ProducerID})
		}
	case pickRowShops:
		title = "Shops of " + e.Name
		for _, n := range u.lookup.Shops() {
			items = append(items, PickerItem{Label: n.Name, Value: n.ID, Checked: slices.Contains(e.ShopIDs, n.ID)})
		}
	}
	u.picker = NewPicker(title, items)
	u.picker.Multi = target == pickRowShops
	u.pick = target
	u.pickID = e.ID
}

func (u *UI) pickerHeight() int {
	_, h := u.picker.Size(u.width, u.height)
	return max(h-2, 1)
}

func (u *UI) handlePicker(ev *tcell.EventKey) {
	switch u.picker.HandleKey(ev, u.pickerHeight()) {
	case PickerActionClose:
		u.picker = nil
	case PickerActionSelect:
		item, _ := u.picker.Selected()
		u.applyPick(item)
		if !u.picker.Multi {
			u.picker = nil
		}
	}
}

func (u *UI) applyPick(item PickerItem) {
	p := u.Pane()
	st := p.Table.Filter()
	switch u.pick {
	case pickFilterFamily:
		st.Family = item.Value
		p.Table.SetFilter(st)
	case pickFilterProducer:
		st.ProducerID = item.Value
		p.Bar.ProducerLabel = item.Label
		p.Table.SetFilter(st)
	case pickFilterShop:
		st.ShopID = item.Value
		p.Bar.ShopLabel = item.Label
		p.Table.SetFilter(st)
	case pickRowFamily:
		u.report(p.Table.Dispatch(table.Action{
			Kind: table.ActionEdit, ID: u.pickID, Field: record.FieldFamily, Value: item.Value,
		}), "")
	case pickRowProducer:
		u.report(p.Table.Dispatch(table.Action{
			Kind: table.ActionEdit, ID: u.pickID, Field: record.FieldProducer, Value: item.Value,
		}), "")
	case pickRowShops:
		u.picker.Items[u.picker.Index].Checked = !item.Checked
		var ids []string
		for _, it := range u.picker.Items {
			if it.Checked {
				ids = append(ids, it.Value)
			}
		}
		u.report(p.Table.Dispatch(table.Action{
			Kind: table.ActionEdit, ID: u.pickID, Field: record.FieldShops, Value: ids,
		}), "")
	}
}

// HandleMouse scrolls on the wheel and focuses the clicked cell.
func (u *UI) HandleMouse(ev *tcell.EventMouse) {
	if u.picker != nil {
		return
	}
	p := u.Pane()
	switch ev.Buttons() {
	case tcell.WheelUp:
		p.View.SetScrollTop(p.View.ScrollTop() - 3)
		p.Table.Schedule()
	case tcell.WheelDown:
		p.View.SetScrollTop(p.View.ScrollTop() + 3)
		p.Table.Schedule()
	case tcell.Button1:
		x, y := ev.Position()
		row, col := p.View.RowAt(x, y)
		if row == nil {
			return
		}
		if cur := p.View.FocusedRow(); cur != nil && cur != row {
			cur.EndEdit()
		}
		field := p.View.FocusFieldIndex()
		if col > 0 {
			field = col - 1
		}
		p.View.SetFocus(row.ID(), field)
		if idx := p.Table.IndexOf(row.ID()); idx >= 0 {
			p.cursor = idx
		}
	}
}

// Render paints the whole screen.
func (u *UI) Render(s tcell.Screen) {
	w, h := s.Size()
	if w != u.width || h != u.height {
		u.Resize(w, h)
	}
	s.HideCursor()
	p := u.Pane()
	p.Bar.Render(s, u.styles, 0, 0, w, p.Name, p.Table.Filter())
	p.View.Render(s, u.styles)
	u.renderStatusline(s, p, w, h-1)
	if u.picker != nil {
		u.picker.Render(s, u.styles)
	}
	s.Show()
}

func (u *UI) renderStatusline(s tcell.Screen, p *Pane, w, y int) {
	if y < 1 {
		return
	}
	left := " " + p.Table.Summary().String()
	if u.message != "" {
		left += " | " + u.message
	}
	if p.Table.Window().Virtual {
		win := p.Table.Window()
		left += fmt.Sprintf(" | rows %d-%d", win.Start+1, win.End)
	}
	stats := p.Table.Stats()
	right := fmt.Sprintf("built %d reused %d ", stats.Builds, stats.Reuses)
	if len(u.panes) > 1 {
		right += "| ctrl+o switch list "
	}
	drawCell(s, 0, y, w, composeStatusLine(left, right, w), u.styles.Status)
}

// Package table renders a long, editable record list incrementally.
//
// Each pass runs normalize, sort, filter, band, window, diff, patch and
// focus/scroll reconciliation in that order. Rows are memoized by content
// fingerprint: an unchanged row keeps its handle (and therefore whatever
// cursor or draft lives in it), a changed row is rebuilt, and a row whose
// only change is its stripe is restyled in place. Only the rows inside the
// scroll window are materialized; two spacers stand in for the rest.
package table

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kobzarvs/qstock/internal/band"
	"github.com/kobzarvs/qstock/internal/commit"
	"github.com/kobzarvs/qstock/internal/filter"
	"github.com/kobzarvs/qstock/internal/fingerprint"
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/rowcache"
	"github.com/kobzarvs/qstock/internal/window"
)

var (
	ErrClosed        = errors.New("table closed")
	ErrUnknownAction = errors.New("unknown row action")
	ErrUnknownRecord = errors.New("record not in table")
)

// DefaultPalette is the number of stripe bands.
const DefaultPalette = 2

type Options struct {
	Kind      record.Kind // which list this table shows
	AllKinds  bool        // show both lists
	Policy    window.Policy
	Palette   int
	Columns   int
	Language  language.Tag
	Resolver  record.Resolver
	Catalog   record.Catalog
	Scheduler Scheduler

	// Commit pipeline settings.
	Clock clockwork.Clock
	Quiet time.Duration
	Post  func(fn func())

	Logger *zap.Logger
	// OnDefect receives malformed records skipped by a pass.
	OnDefect func(err error)
	// OnCommitError receives failed commits.
	OnCommitError func(key commit.Key, value any, err error)
}

// Stats are cumulative renderer counters.
type Stats struct {
	Passes   int
	Builds   int // rows built, first time or rebuilt
	Rebuilds int // builds that replaced a cached row
	Reuses   int
	Restyles int
	Disposed int
	Skipped  int // malformed records
}

type state int

const (
	stateIdle state = iota
	stateScheduled
	stateRendering
)

func (s state) String() string {
	switch s {
	case stateScheduled:
		return "scheduled"
	case stateRendering:
		return "rendering"
	default:
		return "idle"
	}
}

// Table owns the render state of one list: row cache, viewport and
// pending edits. It is not safe for concurrent use; everything runs on
// the UI goroutine.
type Table struct {
	surface   Surface
	source    Source
	scheduler Scheduler
	opts      Options
	log       *zap.Logger

	norm     *record.Normalizer
	cache    *rowcache.Cache[RowHandle]
	viewport *window.Viewport
	pipeline *commit.Pipeline

	filter        filter.State
	lastSignature string
	rendered      bool

	state    state
	trailing bool
	closed   bool
	unsub    func()

	entries map[string]record.Entry
	visible []record.Entry
	summary filter.Summary
	stats   Stats
}

func New(surface Surface, source Source, opts Options) *Table {
	if opts.Policy == (window.Policy{}) {
		opts.Policy = window.DefaultPolicy()
	}
	if opts.Palette < 1 {
		opts.Palette = DefaultPalette
	}
	if opts.Columns < 1 {
		opts.Columns = len(record.Fields) + 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	t := &Table{
		surface:   surface,
		source:    source,
		scheduler: opts.Scheduler,
		opts:      opts,
		log:       opts.Logger.With(zap.String("table", opts.Kind.String())),
		norm:      record.NewNormalizer(opts.Language),
		viewport:  window.NewViewport(opts.Policy.DefaultRowHeight),
		entries:   make(map[string]record.Entry),
	}
	if t.scheduler == nil {
		t.scheduler = immediate{}
	}
	t.cache = rowcache.New(func(h RowHandle) {
		t.stats.Disposed++
		t.surface.DisposeRow(h)
	})
	t.pipeline = commit.New(source, commit.Options{
		Clock:   opts.Clock,
		Quiet:   opts.Quiet,
		Post:    opts.Post,
		OnError: opts.OnCommitError,
		Logger:  t.log,
	})
	return t
}

// Init subscribes to the source and schedules the first pass.
func (t *Table) Init() {
	if t.unsub == nil {
		t.unsub = t.source.Subscribe(t.Schedule)
	}
	t.Schedule()
}

// Schedule requests a pass on the next paint tick. Requests made before
// the tick collapse into one; a request made while a pass is running
// queues exactly one trailing pass.
func (t *Table) Schedule() {
	if t.closed {
		return
	}
	switch t.state {
	case stateRendering:
		t.trailing = true
	case stateScheduled:
	default:
		t.state = stateScheduled
		t.scheduler.RequestFrame(t.frame)
	}
}

func (t *Table) frame() {
	// A manual Render may have consumed this tick already.
	if t.closed || t.state != stateScheduled {
		return
	}
	t.run()
}

// Render runs a pass now.
func (t *Table) Render() {
	if t.closed {
		return
	}
	if t.state == stateRendering {
		t.trailing = true
		return
	}
	t.run()
}

func (t *Table) run() {
	t.state = stateRendering
	t.pass()
	t.state = stateIdle
	if t.trailing {
		t.trailing = false
		t.Schedule()
	}
}

// SetFilter replaces the filter state and schedules a pass.
func (t *Table) SetFilter(s filter.State) {
	t.filter = s
	t.Schedule()
}

func (t *Table) Filter() filter.State { return t.filter }

// Signature returns the filter signature of the last pass.
func (t *Table) Signature() string { return t.lastSignature }

func (t *Table) pass() {
	t.stats.Passes++

	recs := t.source.Records()
	scoped := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		if t.opts.AllKinds || r.Kind == t.opts.Kind {
			scoped = append(scoped, r)
		}
	}

	entries, defects := t.norm.Normalize(scoped, t.opts.Resolver, t.opts.Catalog)
	for _, err := range defects {
		t.stats.Skipped++
		t.log.Warn("skipping malformed record", zap.Error(err))
		if t.opts.OnDefect != nil {
			t.opts.OnDefect(err)
		}
	}
	record.Sort(entries)
	clear(t.entries)
	for _, e := range entries {
		t.entries[e.ID] = e
	}

	visible, summary := filter.Evaluate(entries, t.filter)
	groups := make([]string, len(visible))
	for i, e := range visible {
		groups[i] = string(e.SortKey.Group)
	}
	bands := band.Assign(groups, t.opts.Palette)

	sig := t.filter.Signature()
	scrollTop := t.surface.ScrollTop()
	if t.rendered && sig != t.lastSignature {
		scrollTop = 0
	}
	rowHeight := t.viewport.RowHeight()
	win := t.opts.Policy.Apply(len(visible), scrollTop, t.surface.ViewportHeight(), rowHeight)

	focus, focused := t.surface.Focus()
	ids := make([]string, 0, win.Len())
	handles := make([]RowHandle, 0, win.Len())
	for i := win.Start; i < win.End; i++ {
		e := visible[i]
		row := Row{Entry: e, Band: bands[i], Index: i, Hash: fingerprint.OfEntry(e)}
		h, built := t.materialize(row)
		if built && focused && focus.ID == e.ID {
			t.surface.RestoreFocus(h, focus)
		}
		ids = append(ids, e.ID)
		handles = append(handles, h)
	}
	t.cache.Reconcile(ids)

	t.surface.Patch(Frame{
		Rows:         handles,
		TopSpacer:    win.TopSpacer,
		BottomSpacer: win.BottomSpacer,
		Placeholder:  len(visible) == 0,
		Columns:      t.opts.Columns,
		Window:       win,
		Summary:      summary,
	})
	if t.surface.ScrollTop() != win.ScrollTop {
		t.surface.SetScrollTop(win.ScrollTop)
	}

	t.viewport.ScrollTop = win.ScrollTop
	t.viewport.Range = win
	t.lastSignature = sig
	t.rendered = true
	t.visible = visible
	t.summary = summary

	if !t.viewport.Learned() && len(handles) > 0 {
		t.learnRowHeight(handles[0], rowHeight, win.Virtual)
	}

	t.log.Debug("pass",
		zap.Int("total", summary.Total),
		zap.Int("visible", summary.Visible),
		zap.Int("start", win.Start),
		zap.Int("end", win.End),
		zap.Bool("virtual", win.Virtual),
		zap.Int("builds", t.stats.Builds),
		zap.Int("reuses", t.stats.Reuses))
}

// materialize reuses the cached row when its fingerprint is unchanged and
// builds a new one otherwise. It reports whether a row was built.
func (t *Table) materialize(row Row) (RowHandle, bool) {
	id := row.Entry.ID
	cached, ok := t.cache.Get(id)
	if ok && cached.Hash == row.Hash {
		t.stats.Reuses++
		if cached.Band != row.Band {
			t.surface.RestyleRow(cached.Handle, row.Band)
			t.cache.Put(id, cached.Handle, row.Hash, row.Band)
			t.stats.Restyles++
		}
		return cached.Handle, false
	}
	h := t.surface.BuildRow(row)
	t.stats.Builds++
	if ok {
		t.stats.Rebuilds++
	}
	t.cache.Put(id, h, row.Hash, row.Band)
	return h, true
}

func (t *Table) learnRowHeight(h RowHandle, used int, virtual bool) {
	measured, err := t.surface.MeasureRow(h)
	if err != nil || measured <= 0 {
		t.log.Debug("row height unavailable, using default",
			zap.Int("default", used), zap.Int("measured", measured), zap.Error(err))
		return
	}
	if t.viewport.Learn(measured) && measured != used && virtual {
		// The window was placed with the default height.
		t.Schedule()
	}
}

// Action kinds of the delegated row-action contract.
type ActionKind int

const (
	ActionEdit   ActionKind = iota // field edit; debounced unless discrete
	ActionToggle                   // checkbox flip; Value is the new bool
	ActionDelete
	ActionCreate // add a record related to ID (same family and list)
	ActionMove   // move ID to the other list
)

func (k ActionKind) String() string {
	switch k {
	case ActionEdit:
		return "edit"
	case ActionToggle:
		return "toggle"
	case ActionDelete:
		return "delete"
	case ActionCreate:
		return "create"
	case ActionMove:
		return "move"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is what a row control carries: a kind and a record id, plus the
// field and value for edits.
type Action struct {
	Kind  ActionKind
	ID    string
	Field record.Field
	Value any
}

// Dispatch routes a row action. Store errors are logged and returned;
// they never stop later passes.
func (t *Table) Dispatch(a Action) error {
	if t.closed {
		return ErrClosed
	}
	var err error
	switch a.Kind {
	case ActionEdit:
		err = t.pipeline.OnFieldEvent(a.ID, a.Field, a.Value, a.Field.Discrete())
	case ActionToggle:
		err = t.pipeline.OnFieldEvent(a.ID, a.Field, a.Value, true)
	case ActionDelete:
		t.pipeline.Cancel(a.ID)
		err = t.source.DeleteRecord(a.ID)
	case ActionCreate:
		_, err = t.CreateRelated(a.ID)
	case ActionMove:
		e, ok := t.entries[a.ID]
		if !ok {
			err = fmt.Errorf("move %s: %w", a.ID, ErrUnknownRecord)
			break
		}
		err = t.pipeline.OnFieldEvent(a.ID, record.FieldKind, e.Kind.Other(), true)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownAction, a.Kind)
	}
	if err != nil {
		t.log.Warn("row action failed",
			zap.Stringer("action", a.Kind), zap.String("id", a.ID), zap.Error(err))
	}
	return err
}

// CreateRelated adds a record in the same family and list as id. An empty
// or unknown id creates a blank record in this table's list.
func (t *Table) CreateRelated(id string) (string, error) {
	seed := record.Record{Kind: t.opts.Kind}
	if e, ok := t.entries[id]; ok {
		seed.Kind = e.Kind
		seed.Family = e.Family
		seed.ProducerID = e.ProducerID
	}
	return t.source.CreateRecord(seed)
}

// Flush commits every pending edit immediately.
func (t *Table) Flush() error {
	return t.pipeline.Flush()
}

// Pending reports whether an edit of id/field is waiting for its quiet
// period.
func (t *Table) Pending(id string, field record.Field) bool {
	return t.pipeline.Pending(id, field)
}

// Close tears the table down: unsubscribes, cancels pending edits and
// disposes every row.
func (t *Table) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.unsub != nil {
		t.unsub()
		t.unsub = nil
	}
	t.pipeline.Close()
	t.cache.Clear()
}

// Visible returns the filtered, sorted entries of the last pass.
func (t *Table) Visible() []record.Entry { return t.visible }

// IndexOf returns the position of id in the last filtered set, or -1.
func (t *Table) IndexOf(id string) int {
	for i, e := range t.visible {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Entry looks up a record of the last pass by id.
func (t *Table) Entry(id string) (record.Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

func (t *Table) Summary() filter.Summary { return t.summary }
func (t *Table) Window() window.Window   { return t.viewport.Range }
func (t *Table) RowHeight() int          { return t.viewport.RowHeight() }
func (t *Table) Stats() Stats            { return t.stats }
func (t *Table) Cached() int             { return t.cache.Len() }
func (t *Table) Kind() record.Kind       { return t.opts.Kind }

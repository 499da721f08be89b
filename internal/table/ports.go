package table

import (
	"github.com/kobzarvs/qstock/internal/fingerprint"
	"github.com/kobzarvs/qstock/internal/filter"
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/window"
)

// Source is the external store the table reads from and writes through.
type Source interface {
	// Records returns a full, unordered snapshot.
	Records() []record.Record
	// Subscribe registers a change listener and returns its cancel func.
	Subscribe(fn func()) (unsubscribe func())
	UpdateField(id string, field record.Field, value any) error
	DeleteRecord(id string) error
	CreateRecord(seed record.Record) (string, error)
}

// RowHandle is an opaque materialized row owned by the Surface. Handles
// are compared by identity, so implementations should use pointers.
type RowHandle any

// Row is everything a Surface needs to build one row.
type Row struct {
	Entry record.Entry
	Band  int
	Index int // position in the filtered list
	Hash  fingerprint.Sum
}

// Focus describes the control holding the keyboard inside the table.
type Focus struct {
	ID      string
	Field   record.Field
	Cursor  int
	Draft   string
	Editing bool
}

// Frame is one patch of the table body.
type Frame struct {
	Rows         []RowHandle
	TopSpacer    int
	BottomSpacer int
	Placeholder  bool // no row matched; show a "no results" row
	Columns      int  // span of the placeholder row
	Window       window.Window
	Summary      filter.Summary
}

// Surface is the viewport port. The tcell adapter implements it; tests
// use an in-memory fake.
type Surface interface {
	ViewportHeight() int
	ScrollTop() int
	SetScrollTop(y int)

	BuildRow(row Row) RowHandle
	// RestyleRow changes the stripe band of a row without rebuilding it.
	RestyleRow(h RowHandle, band int)
	// MeasureRow returns the height of a materialized row.
	MeasureRow(h RowHandle) (int, error)
	DisposeRow(h RowHandle)

	Focus() (Focus, bool)
	RestoreFocus(h RowHandle, f Focus)

	Patch(f Frame)
}

// Scheduler is the paint tick. RequestFrame runs fn once, before the
// next paint, on the UI goroutine.
type Scheduler interface {
	RequestFrame(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) RequestFrame(fn func()) { f(fn) }

// immediate runs frames synchronously. It is the default when no
// Scheduler is configured.
type immediate struct{}

func (immediate) RequestFrame(fn func()) { fn() }

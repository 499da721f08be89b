package table

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/kobzarvs/qstock/internal/record"
)

type fakeRow struct {
	id     string
	serial int
	band   int
	focus  *Focus
}

type fakeSurface struct {
	height     int
	scrollTop  int
	rowHeight  int
	measureErr error

	serial   int
	built    []*fakeRow
	disposed []*fakeRow
	restyled []*fakeRow
	frames   []Frame

	focus    *Focus
	restored []*fakeRow

	onPatch func(Frame)
}

func newFakeSurface(height int) *fakeSurface {
	return &fakeSurface{height: height, rowHeight: 1}
}

func (s *fakeSurface) ViewportHeight() int { return s.height }
func (s *fakeSurface) ScrollTop() int      { return s.scrollTop }
func (s *fakeSurface) SetScrollTop(y int)  { s.scrollTop = y }

func (s *fakeSurface) BuildRow(row Row) RowHandle {
	s.serial++
	r := &fakeRow{id: row.Entry.ID, serial: s.serial, band: row.Band}
	s.built = append(s.built, r)
	return r
}

func (s *fakeSurface) RestyleRow(h RowHandle, band int) {
	r := h.(*fakeRow)
	r.band = band
	s.restyled = append(s.restyled, r)
}

func (s *fakeSurface) MeasureRow(RowHandle) (int, error) {
	return s.rowHeight, s.measureErr
}

func (s *fakeSurface) DisposeRow(h RowHandle) {
	s.disposed = append(s.disposed, h.(*fakeRow))
}

func (s *fakeSurface) Focus() (Focus, bool) {
	if s.focus == nil {
		return Focus{}, false
	}
	return *s.focus, true
}

func (s *fakeSurface) RestoreFocus(h RowHandle, f Focus) {
	r := h.(*fakeRow)
	r.focus = &f
	s.restored = append(s.restored, r)
}

func (s *fakeSurface) Patch(f Frame) {
	s.frames = append(s.frames, f)
	if s.onPatch != nil {
		s.onPatch(f)
	}
}

func (s *fakeSurface) last() Frame {
	return s.frames[len(s.frames)-1]
}

func (s *fakeSurface) rowFor(id string) *fakeRow {
	for _, h := range s.last().Rows {
		if r := h.(*fakeRow); r.id == id {
			return r
		}
	}
	return nil
}

type update struct {
	id    string
	field record.Field
	value any
}

type fakeSource struct {
	mu        sync.Mutex
	records   []record.Record
	listeners map[int]func()
	nextID    int
	updates   []update
	updateErr error
}

func newFakeSource(recs ...record.Record) *fakeSource {
	return &fakeSource{records: recs, listeners: make(map[int]func())}
}

func (s *fakeSource) Records() []record.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

func (s *fakeSource) Subscribe(fn func()) func() {
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *fakeSource) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

func (s *fakeSource) mutate(id string, fn func(*record.Record)) {
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID == id {
			fn(&s.records[i])
		}
	}
	s.mu.Unlock()
	s.notify()
}

func (s *fakeSource) UpdateField(id string, field record.Field, value any) error {
	s.mu.Lock()
	s.updates = append(s.updates, update{id, field, value})
	err := s.updateErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.mutate(id, func(r *record.Record) {
		switch field {
		case record.FieldName:
			r.Name = value.(string)
		case record.FieldNotes:
			r.Notes = value.(string)
		case record.FieldHave:
			r.Have = value.(bool)
		case record.FieldKind:
			r.Kind = value.(record.Kind)
		}
	})
	return nil
}

func (s *fakeSource) DeleteRecord(id string) error {
	s.mu.Lock()
	n := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(r record.Record) bool { return r.ID == id })
	deleted := len(s.records) != n
	s.mu.Unlock()
	if !deleted {
		return errors.New("not found")
	}
	s.notify()
	return nil
}

func (s *fakeSource) CreateRecord(seed record.Record) (string, error) {
	s.mu.Lock()
	seed.ID = fmt.Sprintf("new-%d", len(s.records))
	s.records = append(s.records, seed)
	s.mu.Unlock()
	s.notify()
	return seed.ID, nil
}

func (s *fakeSource) updatesFor(id string) []update {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []update
	for _, u := range s.updates {
		if u.id == id {
			out = append(out, u)
		}
	}
	return out
}

// frameQueue is a paint tick the test advances by hand.
type frameQueue struct{ fns []func() }

func (q *frameQueue) RequestFrame(fn func()) { q.fns = append(q.fns, fn) }

func (q *frameQueue) tick() int {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

func inventory(n int, family func(i int) string) []record.Record {
	recs := make([]record.Record, n)
	for i := range recs {
		recs[i] = record.Record{
			ID:     fmt.Sprintf("r%04d", i),
			Name:   fmt.Sprintf("item %04d", i),
			Family: family(i),
		}
	}
	return recs
}

func oneFamily(int) string { return "Pantry" }

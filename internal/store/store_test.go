package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/qstock/internal/record"
)

func TestCreateUpdateDelete(t *testing.T) {
	s := New()
	notified := 0
	unsub := s.Subscribe(func() { notified++ })
	defer unsub()

	id, err := s.CreateRecord(record.Record{Name: "milk", Family: "Dairy"})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, notified)

	require.NoError(t, s.UpdateField(id, record.FieldNotes, "opened"))
	require.NoError(t, s.UpdateField(id, record.FieldHave, true))
	require.NoError(t, s.UpdateField(id, record.FieldKind, "other"))
	r, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "opened", r.Notes)
	assert.True(t, r.Have)
	assert.Equal(t, record.KindOther, r.Kind)
	assert.Equal(t, 4, notified)

	require.NoError(t, s.DeleteRecord(id))
	_, ok = s.Get(id)
	assert.False(t, ok)
	assert.ErrorIs(t, s.DeleteRecord(id), ErrNotFound)
	assert.ErrorIs(t, s.UpdateField(id, record.FieldName, "x"), ErrNotFound)
	assert.Equal(t, 5, notified)
}

func TestUpdateFieldValidatesValues(t *testing.T) {
	s := New()
	id, err := s.CreateRecord(record.Record{Name: "rice"})
	require.NoError(t, err)

	cases := []struct {
		field record.Field
		value any
	}{
		{record.FieldName, 42},
		{record.FieldHave, "yes"},
		{record.FieldShops, "shop"},
		{record.FieldShops, []string{"no-such-shop"}},
		{record.FieldProducer, "no-such-producer"},
		{record.FieldKind, "sideways"},
		{record.Field("color"), "red"},
	}
	for _, tc := range cases {
		err := s.UpdateField(id, tc.field, tc.value)
		assert.ErrorIs(t, err, ErrBadValue, "%s=%v", tc.field, tc.value)
	}
	r, _ := s.Get(id)
	assert.Equal(t, "rice", r.Name)
}

func TestRelationsResolve(t *testing.T) {
	s := New()
	p := s.AddProducer("Acme")
	shop := s.AddShop("Corner")
	id, err := s.CreateRecord(record.Record{Name: "rice"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateField(id, record.FieldProducer, p))
	require.NoError(t, s.UpdateField(id, record.FieldShops, []string{shop}))
	assert.Equal(t, "Acme", s.RelationName(record.RelProducer, p))
	assert.Equal(t, "Corner", s.RelationName(record.RelShop, shop))
	assert.Equal(t, "", s.RelationName(record.RelShop, "nope"))
	assert.Equal(t, []Named{{ID: p, Name: "Acme"}}, s.Producers())

	require.NoError(t, s.UpdateField(id, record.FieldProducer, ""))
}

func TestCatalogIgnoresCase(t *testing.T) {
	s := New()
	cat := s.Catalog()
	assert.Equal(t, 0, cat.Len())

	s.SetCatalog([]string{"Milk", "Straße"})
	assert.Equal(t, 2, cat.Len())
	assert.True(t, cat.Contains("milk"))
	assert.True(t, cat.Contains("STRASSE"))
	assert.False(t, cat.Contains("bread"))
}

func TestRecordsAreCopies(t *testing.T) {
	s := New()
	shop := s.AddShop("Corner")
	id, err := s.CreateRecord(record.Record{Name: "rice", ShopIDs: []string{shop}})
	require.NoError(t, err)

	recs := s.Records()
	recs[0].Name = "changed"
	recs[0].ShopIDs[0] = "changed"

	r, _ := s.Get(id)
	assert.Equal(t, "rice", r.Name)
	assert.Equal(t, []string{shop}, r.ShopIDs)
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	var seen int
	s.Subscribe(func() { seen = len(s.Records()) })

	_, err := s.CreateRecord(record.Record{Name: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	s, err := Open(Options{Path: path, Autosave: -1})
	require.NoError(t, err)
	s.Seed(40)
	want := s.Records()
	require.NoError(t, s.Close())

	reopened, err := Open(Options{Path: path, Autosave: -1})
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, want, reopened.Records())
	assert.Equal(t, 4, len(reopened.Producers()))
	assert.False(t, reopened.Dirty())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Open(Options{Path: path})
	assert.Error(t, err)
}

func TestAutosaveWritesDirtyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	clock := clockwork.NewFakeClock()
	s, err := Open(Options{Path: path, Autosave: time.Minute, Clock: clock})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.CreateRecord(record.Record{Name: "bread"})
	require.NoError(t, err)
	// The ticker is created on the autosave goroutine; keep ticking until
	// it has observed one.
	require.Eventually(t, func() bool {
		clock.Advance(time.Minute)
		return !s.Dirty()
	}, 2*time.Second, 10*time.Millisecond)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	_, err := s.CreateRecord(record.Record{Name: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSeedIsDeterministic(t *testing.T) {
	a, b := New(), New()
	a.Seed(100)
	b.Seed(100)
	assert.Equal(t, a.Records(), b.Records())

	recs := a.Records()
	require.Len(t, recs, 100)
	others := 0
	for _, r := range recs {
		if r.Kind == record.KindOther {
			others++
		}
	}
	assert.Equal(t, 25, others)
	assert.False(t, a.Catalog().Contains(recs[8].Name))
	assert.True(t, a.Catalog().Contains(recs[0].Name))
	assert.Len(t, a.Families(), 10)
}

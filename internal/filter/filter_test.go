package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/qstock/internal/record"
)

func entry(id, family, producer, blob string, shops ...string) record.Entry {
	return record.Entry{
		Record:  record.Record{ID: id, Family: family, ProducerID: producer, ShopIDs: shops},
		Derived: record.Derived{SearchBlob: blob},
	}
}

func TestEmptyStateMatchesEverything(t *testing.T) {
	var s State
	assert.True(t, s.Empty())
	assert.True(t, Matches(entry("1", "", "", ""), s))
}

func TestDiscreteMismatchWinsOverSearch(t *testing.T) {
	e := entry("1", "Dairy", "p1", "milk whole", "s1")
	assert.True(t, Matches(e, State{Search: "MILK", Family: "dairy"}))
	assert.False(t, Matches(e, State{Search: "milk", Family: "Bakery"}))
	assert.False(t, Matches(e, State{Search: "milk", ProducerID: "p2"}))
	assert.False(t, Matches(e, State{Search: "milk", ShopID: "s2"}))
	assert.True(t, Matches(e, State{ShopID: "s1"}))
}

func TestSearchRequiresEveryTerm(t *testing.T) {
	e := entry("1", "", "", "olive oil\nacme foods")
	assert.True(t, Matches(e, State{Search: "oil acme"}))
	assert.False(t, Matches(e, State{Search: "oil corner"}))
}

func TestMissingOnly(t *testing.T) {
	e := entry("1", "", "", "x")
	assert.False(t, Matches(e, State{MissingOnly: true}))
	e.Missing = true
	assert.True(t, Matches(e, State{MissingOnly: true}))
}

func TestMatchesIsPure(t *testing.T) {
	e := entry("1", "Dairy", "", "milk")
	s := State{Search: "milk", Family: "Dairy"}
	for i := 0; i < 3; i++ {
		assert.True(t, Matches(e, s))
	}
	assert.Equal(t, "milk", s.Search)
}

func TestSignatureChangesWithEveryInput(t *testing.T) {
	base := State{}.Signature()
	for _, s := range []State{
		{Search: "a"},
		{Family: "a"},
		{ProducerID: "a"},
		{ShopID: "a"},
		{MissingOnly: true},
	} {
		assert.NotEqual(t, base, s.Signature(), "%+v", s)
	}
	assert.NotEqual(t, State{Search: "a"}.Signature(), State{Family: "a"}.Signature())
}

func TestEvaluateSummary(t *testing.T) {
	var entries []record.Entry
	for i := 0; i < 500; i++ {
		family := "Pantry"
		if i%50 == 0 {
			family = "Dairy"
		}
		e := entry(fmt.Sprint(i), family, "", "item")
		e.Missing = i%100 == 0
		entries = append(entries, e)
	}

	visible, sum := Evaluate(entries, State{Family: "Dairy"})
	require.Len(t, visible, 10)
	assert.Equal(t, Summary{Total: 500, Visible: 10, Missing: 5}, sum)
	assert.Equal(t, "Total: 500 · Visible: 10 · Missing: 5", sum.String())
	assert.Equal(t, "Total: 3 · Visible: 1", Summary{Total: 3, Visible: 1}.String())
}

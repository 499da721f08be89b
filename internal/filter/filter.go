// Package filter decides which entries a table shows.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/kobzarvs/qstock/internal/record"
)

// State is the current search text plus the discrete equality filters.
// An empty value matches everything.
type State struct {
	Search      string
	Family      string
	ProducerID  string
	ShopID      string
	MissingOnly bool
}

// Signature joins every filter input. A change of signature between two
// passes means the selection criteria changed.
func (s State) Signature() string {
	missing := "0"
	if s.MissingOnly {
		missing = "1"
	}
	return strings.Join([]string{
		strings.TrimSpace(s.Search),
		strings.TrimSpace(s.Family),
		s.ProducerID,
		s.ShopID,
		missing,
	}, "\x1f")
}

// Empty reports whether the state matches every entry.
func (s State) Empty() bool {
	return strings.TrimSpace(s.Search) == "" && strings.TrimSpace(s.Family) == "" &&
		s.ProducerID == "" && s.ShopID == "" && !s.MissingOnly
}

// Predicate is a compiled State.
type Predicate struct {
	family      string
	producerID  string
	shopID      string
	missingOnly bool
	terms       []string
}

// Compile folds the search text once so matching stays cheap.
func Compile(s State) Predicate {
	return Predicate{
		family:      strings.TrimSpace(s.Family),
		producerID:  s.ProducerID,
		shopID:      s.ShopID,
		missingOnly: s.MissingOnly,
		terms:       strings.Fields(cases.Fold().String(s.Search)),
	}
}

// Match checks the discrete filters first and only then searches the
// entry's blob. Every search term must occur.
func (p Predicate) Match(e record.Entry) bool {
	if p.family != "" && !strings.EqualFold(strings.TrimSpace(e.Family), p.family) {
		return false
	}
	if p.producerID != "" && e.ProducerID != p.producerID {
		return false
	}
	if p.shopID != "" && !slices.Contains(e.ShopIDs, p.shopID) {
		return false
	}
	if p.missingOnly && !e.Missing {
		return false
	}
	for _, term := range p.terms {
		if !strings.Contains(e.SearchBlob, term) {
			return false
		}
	}
	return true
}

// Matches is the uncompiled form of Predicate.Match.
func Matches(e record.Entry, s State) bool {
	return Compile(s).Match(e)
}

// Summary counts what the table shows.
type Summary struct {
	Total   int
	Visible int
	Missing int
}

func (s Summary) String() string {
	out := fmt.Sprintf("Total: %d · Visible: %d", s.Total, s.Visible)
	if s.Missing > 0 {
		out += fmt.Sprintf(" · Missing: %d", s.Missing)
	}
	return out
}

// Evaluate filters entries, preserving their order. Missing counts the
// visible entries flagged as missing.
func Evaluate(entries []record.Entry, s State) ([]record.Entry, Summary) {
	p := Compile(s)
	sum := Summary{Total: len(entries)}
	visible := make([]record.Entry, 0, len(entries))
	for _, e := range entries {
		if !p.Match(e) {
			continue
		}
		visible = append(visible, e)
		if e.Missing {
			sum.Missing++
		}
	}
	sum.Visible = len(visible)
	return visible, sum
}

package record

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	ErrMissingID   = errors.New("record has no id")
	ErrDuplicateID = errors.New("duplicate record id")
)

// SortKey orders entries by group, then by primary text. Both parts are
// collation keys, so the order ignores case and diacritics.
type SortKey struct {
	Group []byte
	Text  []byte
}

func (k SortKey) Compare(o SortKey) int {
	if c := bytes.Compare(k.Group, o.Group); c != 0 {
		return c
	}
	return bytes.Compare(k.Text, o.Text)
}

// Normalizer derives sort keys and search blobs. It keeps a collation
// buffer, so one Normalizer must not be shared between goroutines.
type Normalizer struct {
	coll *collate.Collator
	fold cases.Caser
	buf  collate.Buffer
}

func NewNormalizer(tag language.Tag) *Normalizer {
	return &Normalizer{
		coll: collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics, collate.Numeric),
		fold: cases.Fold(),
	}
}

// Fold lower-cases s the same way search blobs are folded.
func (n *Normalizer) Fold(s string) string {
	return n.fold.String(s)
}

func (n *Normalizer) key(s string) []byte {
	n.buf.Reset()
	return bytes.Clone(n.coll.KeyFromString(&n.buf, strings.TrimSpace(s)))
}

// Derive computes the derived fields of one record.
func (n *Normalizer) Derive(r Record, res Resolver, cat Catalog) Derived {
	d := Derived{
		SortKey: SortKey{Group: n.key(r.Family), Text: n.key(r.Name)},
	}
	if res != nil {
		if r.ProducerID != "" {
			d.ProducerName = res.RelationName(RelProducer, r.ProducerID)
		}
		if len(r.ShopIDs) > 0 {
			names := make([]string, 0, len(r.ShopIDs))
			for _, id := range r.ShopIDs {
				if name := res.RelationName(RelShop, id); name != "" {
					names = append(names, name)
				}
			}
			d.ShopSummary = strings.Join(names, ", ")
		}
	}
	if cat != nil && cat.Len() > 0 {
		d.Missing = !cat.Contains(r.Name)
	}

	var sb strings.Builder
	for _, part := range []string{r.Name, r.Family, r.Format, r.Notes, d.ProducerName, d.ShopSummary} {
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(part)
	}
	d.SearchBlob = n.fold.String(sb.String())
	return d
}

// Normalize derives every record and drops malformed ones. Each dropped
// record yields one error; the returned entries are in input order.
func (n *Normalizer) Normalize(recs []Record, res Resolver, cat Catalog) ([]Entry, []error) {
	entries := make([]Entry, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	var errs []error
	for i, r := range recs {
		if strings.TrimSpace(r.ID) == "" {
			errs = append(errs, fmt.Errorf("record #%d (%q): %w", i, r.Name, ErrMissingID))
			continue
		}
		if _, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("record %s: %w", r.ID, ErrDuplicateID))
			continue
		}
		seen[r.ID] = struct{}{}
		entries = append(entries, Entry{Record: r, Derived: n.Derive(r, res, cat)})
	}
	return entries, errs
}

// Sort orders entries by sort key; ties fall back to the id so the order
// is total and stable across passes.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := a.SortKey.Compare(b.SortKey); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

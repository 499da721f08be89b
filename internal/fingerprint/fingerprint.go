// Package fingerprint computes content hashes of table rows. Two rows
// with the same Sum render identically; any visible change alters it.
package fingerprint

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/kobzarvs/qstock/internal/record"
)

// Sum is the fingerprint of one row.
type Sum uint64

// Row enumerates exactly what a table row shows. Adding a column to the
// row means adding it here.
type Row struct {
	ID           string
	Kind         record.Kind
	Name         string
	Family       string
	Format       string
	Notes        string
	ProducerName string
	ShopSummary  string
	Have         bool
	Buy          bool
	Missing      bool
}

// FromEntry extracts the rendered fields of an entry.
func FromEntry(e record.Entry) Row {
	return Row{
		ID:           e.ID,
		Kind:         e.Kind,
		Name:         e.Name,
		Family:       e.Family,
		Format:       e.Format,
		Notes:        e.Notes,
		ProducerName: e.ProducerName,
		ShopSummary:  e.ShopSummary,
		Have:         e.Have,
		Buy:          e.Buy,
		Missing:      e.Missing,
	}
}

// field tags keep values from shifting between neighbours.
const (
	tagID byte = iota + 1
	tagKind
	tagName
	tagFamily
	tagFormat
	tagNotes
	tagProducer
	tagShops
	tagFlags
)

const (
	flagHave byte = 1 << iota
	flagBuy
	flagMissing
)

// Of hashes a row.
func Of(r Row) Sum {
	var h hasher
	h.d = xxhash.New()
	h.str(tagID, r.ID)
	h.num(tagKind, uint64(r.Kind))
	h.str(tagName, r.Name)
	h.str(tagFamily, r.Family)
	h.str(tagFormat, r.Format)
	h.str(tagNotes, r.Notes)
	h.str(tagProducer, r.ProducerName)
	h.str(tagShops, r.ShopSummary)
	var flags byte
	if r.Have {
		flags |= flagHave
	}
	if r.Buy {
		flags |= flagBuy
	}
	if r.Missing {
		flags |= flagMissing
	}
	h.num(tagFlags, uint64(flags))
	return Sum(h.d.Sum64())
}

// OfEntry is shorthand for Of(FromEntry(e)).
func OfEntry(e record.Entry) Sum {
	return Of(FromEntry(e))
}

type hasher struct {
	d       *xxhash.Digest
	scratch [binary.MaxVarintLen64 + 1]byte
}

func (h *hasher) str(tag byte, s string) {
	h.scratch[0] = tag
	n := binary.PutUvarint(h.scratch[1:], uint64(len(s)))
	_, _ = h.d.Write(h.scratch[:n+1])
	_, _ = h.d.WriteString(s)
}

func (h *hasher) num(tag byte, v uint64) {
	h.scratch[0] = tag
	n := binary.PutUvarint(h.scratch[1:], v)
	_, _ = h.d.Write(h.scratch[:n+1])
}

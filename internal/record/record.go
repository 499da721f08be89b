package record

import (
	"slices"
	"strings"
)

// Kind selects which list a record belongs to.
type Kind int

const (
	KindInstance Kind = iota // product instances (the main inventory list)
	KindOther                // other products (shopping-only items)
)

func (k Kind) String() string {
	switch k {
	case KindOther:
		return "other"
	default:
		return "instance"
	}
}

// Other returns the list a record moves to.
func (k Kind) Other() Kind {
	if k == KindOther {
		return KindInstance
	}
	return KindOther
}

func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "instance", "instances", "":
		return KindInstance, true
	case "other", "others":
		return KindOther, true
	}
	return KindInstance, false
}

// Field names an editable record field.
type Field string

const (
	FieldName     Field = "name"
	FieldFamily   Field = "family"
	FieldFormat   Field = "format"
	FieldNotes    Field = "notes"
	FieldProducer Field = "producer"
	FieldShops    Field = "shops"
	FieldHave     Field = "have"
	FieldBuy      Field = "buy"
	FieldKind     Field = "kind"
)

// Fields lists the fields in column order.
var Fields = []Field{
	FieldName,
	FieldFamily,
	FieldFormat,
	FieldProducer,
	FieldShops,
	FieldHave,
	FieldBuy,
	FieldNotes,
}

// Discrete reports whether edits to the field commit immediately
// (checkboxes and selects) instead of being debounced.
func (f Field) Discrete() bool {
	switch f {
	case FieldFamily, FieldProducer, FieldShops, FieldHave, FieldBuy, FieldKind:
		return true
	}
	return false
}

// Text reports whether the field is edited as free text.
func (f Field) Text() bool {
	switch f {
	case FieldName, FieldFormat, FieldNotes:
		return true
	}
	return false
}

func ParseField(s string) (Field, bool) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if f == FieldKind || slices.Contains(Fields, f) {
		return f, true
	}
	return "", false
}

// Relation identifies a lookup table owned by the store.
type Relation int

const (
	RelProducer Relation = iota
	RelShop
)

// Resolver turns relation ids into display names.
type Resolver interface {
	RelationName(rel Relation, id string) string
}

// Catalog is the companion set of canonical product names.
type Catalog interface {
	Contains(name string) bool
	Len() int
}

// Record is one inventory row as supplied by the store.
type Record struct {
	ID         string   `json:"id"`
	Kind       Kind     `json:"kind"`
	Name       string   `json:"name"`
	Family     string   `json:"family"`
	Format     string   `json:"format,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	ProducerID string   `json:"producer_id,omitempty"`
	ShopIDs    []string `json:"shop_ids,omitempty"`
	Have       bool     `json:"have"`
	Buy        bool     `json:"buy"`
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	r.ShopIDs = slices.Clone(r.ShopIDs)
	return r
}

// Text returns the value of a text-like field.
func (r Record) Text(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldFamily:
		return r.Family
	case FieldFormat:
		return r.Format
	case FieldNotes:
		return r.Notes
	case FieldProducer:
		return r.ProducerID
	}
	return ""
}

// Derived holds values computed per render pass. None of them are persisted.
type Derived struct {
	SortKey      SortKey
	SearchBlob   string
	Missing      bool
	ProducerName string
	ShopSummary  string
}

// Entry is a record together with its derived fields.
type Entry struct {
	Record
	Derived
}

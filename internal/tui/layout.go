package tui

import (
	"github.com/kobzarvs/qstock/internal/record"
)

// Column is one laid-out table column. The first column carries no field;
// it holds the row markers.
type Column struct {
	Field record.Field
	Title string
	X     int
	Width int
}

const markerWidth = 2

var columnTitles = map[record.Field]string{
	record.FieldName:     "Name",
	record.FieldFamily:   "Family",
	record.FieldFormat:   "Format",
	record.FieldProducer: "Producer",
	record.FieldShops:    "Shops",
	record.FieldHave:     "Have",
	record.FieldBuy:      "Buy",
	record.FieldNotes:    "Notes",
}

// Flexible columns share the width left after the fixed ones, by weight.
var columnWeights = map[record.Field]int{
	record.FieldName:     4,
	record.FieldFamily:   2,
	record.FieldFormat:   1,
	record.FieldProducer: 2,
	record.FieldShops:    2,
	record.FieldNotes:    3,
}

const checkWidth = 5

// LayoutColumns splits width into the marker column plus one column per
// field, separated by one space.
func LayoutColumns(width int) []Column {
	cols := make([]Column, 0, len(record.Fields)+1)
	cols = append(cols, Column{Width: markerWidth})

	fixed := markerWidth
	weights := 0
	for _, f := range record.Fields {
		fixed++ // separator
		if w, ok := columnWeights[f]; ok {
			weights += w
		} else {
			fixed += checkWidth
		}
	}
	flex := max(width-fixed, 0)

	x := markerWidth
	remaining := flex
	lastFlex := record.Field("")
	for _, f := range record.Fields {
		if _, ok := columnWeights[f]; ok {
			lastFlex = f
		}
	}
	for _, f := range record.Fields {
		x++
		w := checkWidth
		if weight, ok := columnWeights[f]; ok {
			w = flex * weight / weights
			if f == lastFlex {
				w = remaining
			}
			remaining -= w
		}
		cols = append(cols, Column{Field: f, Title: columnTitles[f], X: x, Width: w})
		x += w
	}
	return cols
}

// ColumnAt returns the index of the column under screen offset x, or -1.
func ColumnAt(cols []Column, x int) int {
	for i, c := range cols {
		if x >= c.X && x < c.X+c.Width {
			return i
		}
	}
	return -1
}

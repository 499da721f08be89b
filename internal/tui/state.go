package tui

import (
	"slices"

	"github.com/kobzarvs/qstock/internal/filter"
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/session"
)

// SaveState captures the filter, focus and scroll offset of the pane.
func (p *Pane) SaveState() session.ListState {
	st := p.Table.Filter()
	return session.ListState{
		Search:      st.Search,
		Family:      st.Family,
		ProducerID:  st.ProducerID,
		ShopID:      st.ShopID,
		MissingOnly: st.MissingOnly,
		FocusID:     p.View.FocusID(),
		FocusField:  string(p.View.FocusField()),
		ScrollTop:   p.View.ScrollTop(),
	}
}

// RestoreState applies a saved state. Filter labels are resolved by
// names; ids that no longer exist simply match nothing.
func (p *Pane) RestoreState(ls session.ListState, names record.Resolver) {
	if ls.ProducerID != "" {
		p.Bar.ProducerLabel = names.RelationName(record.RelProducer, ls.ProducerID)
	}
	if ls.ShopID != "" {
		p.Bar.ShopLabel = names.RelationName(record.RelShop, ls.ShopID)
	}
	field := max(slices.Index(record.Fields, record.Field(ls.FocusField)), 0)
	p.View.SetFocus(ls.FocusID, field)
	p.View.SetScrollTop(ls.ScrollTop)
	st := filter.State{
		Search:      ls.Search,
		Family:      ls.Family,
		ProducerID:  ls.ProducerID,
		ShopID:      ls.ShopID,
		MissingOnly: ls.MissingOnly,
	}
	// A restored filter keeps the restored focus.
	p.signature = st.Signature()
	p.Table.SetFilter(st)
}

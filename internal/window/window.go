// Package window computes which slice of a long list is materialized.
//
// Heights are in the units of the surface (terminal lines for the tcell
// adapter). Rows are assumed to share one height, learned from the first
// row that could be measured; rows of differing heights are a known
// limitation and desynchronize the spacer math.
package window

// DefaultRowHeight is used until a row has been measured.
const DefaultRowHeight = 1

// Window is the materialized index range [Start, End) plus the heights of
// the spacers standing in for the rows outside it.
type Window struct {
	Start        int
	End          int
	TopSpacer    int
	BottomSpacer int
	ScrollTop    int // scroll offset after clamping
	Virtual      bool
}

// Len is the number of materialized rows.
func (w Window) Len() int {
	return w.End - w.Start
}

// Compute places the window for a scroll offset. It never divides by zero
// and never yields a negative range.
func Compute(total, scrollTop, viewportHeight, rowHeight, buffer, hardCap int) Window {
	if total < 0 {
		total = 0
	}
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	if buffer < 0 {
		buffer = 0
	}
	if hardCap < 1 {
		hardCap = 1
	}

	maxScroll := max(0, total*rowHeight-viewportHeight)
	scrollTop = min(max(scrollTop, 0), maxScroll)

	start := max(0, scrollTop/rowHeight-buffer)
	visible := min(hardCap, ceilDiv(viewportHeight, rowHeight)+2*buffer)
	end := min(total, start+visible)
	if start > end {
		start = end
	}
	return Window{
		Start:        start,
		End:          end,
		TopSpacer:    start * rowHeight,
		BottomSpacer: (total - end) * rowHeight,
		ScrollTop:    scrollTop,
		Virtual:      true,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Policy decides when virtualization kicks in and how wide the window is.
type Policy struct {
	Threshold        int // lists up to this size are materialized whole
	Buffer           int // extra rows above and below the viewport
	HardCap          int // upper bound on materialized rows
	DefaultRowHeight int
}

func DefaultPolicy() Policy {
	return Policy{
		Threshold:        320,
		Buffer:           8,
		HardCap:          200,
		DefaultRowHeight: DefaultRowHeight,
	}
}

// Apply returns the full range below the threshold and a virtual window
// above it. A non-positive rowHeight falls back to the policy default.
func (p Policy) Apply(total, scrollTop, viewportHeight, rowHeight int) Window {
	if rowHeight <= 0 {
		rowHeight = p.DefaultRowHeight
	}
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if total <= p.Threshold {
		total = max(total, 0)
		maxScroll := max(0, total*rowHeight-max(viewportHeight, 0))
		return Window{
			Start:     0,
			End:       total,
			ScrollTop: min(max(scrollTop, 0), maxScroll),
		}
	}
	return Compute(total, scrollTop, viewportHeight, rowHeight, p.Buffer, p.HardCap)
}

// Viewport is the mutable per-table scroll state.
type Viewport struct {
	ScrollTop int
	Range     Window

	fallback  int
	rowHeight int
}

func NewViewport(defaultRowHeight int) *Viewport {
	if defaultRowHeight <= 0 {
		defaultRowHeight = DefaultRowHeight
	}
	return &Viewport{fallback: defaultRowHeight}
}

// RowHeight is the learned height, or the default before learning.
func (v *Viewport) RowHeight() int {
	if v.rowHeight > 0 {
		return v.rowHeight
	}
	return v.fallback
}

func (v *Viewport) Learned() bool {
	return v.rowHeight > 0
}

// Learn records the first positive measurement and ignores the rest.
// It reports whether h was accepted.
func (v *Viewport) Learn(h int) bool {
	if v.rowHeight > 0 || h <= 0 {
		return false
	}
	v.rowHeight = h
	return true
}

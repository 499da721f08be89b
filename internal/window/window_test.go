package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBelowThresholdMaterializesEverything(t *testing.T) {
	p := DefaultPolicy()
	for _, total := range []int{0, 1, 10, 320} {
		w := p.Apply(total, 50, 20, 1)
		assert.False(t, w.Virtual)
		assert.Equal(t, 0, w.Start)
		assert.Equal(t, total, w.End)
		assert.Equal(t, 0, w.TopSpacer)
		assert.Equal(t, 0, w.BottomSpacer)
	}
}

func TestWindowInvariants(t *testing.T) {
	p := Policy{Threshold: 320, Buffer: 8, HardCap: 60, DefaultRowHeight: 1}
	for _, total := range []int{321, 500, 5000} {
		for _, rh := range []int{1, 2, 3} {
			for _, vh := range []int{0, 10, 40, 1000} {
				for _, scroll := range []int{-20, 0, 7, 333, 1 << 20} {
					w := p.Apply(total, scroll, vh, rh)
					require.True(t, w.Virtual)
					require.LessOrEqual(t, 0, w.Start)
					require.LessOrEqual(t, w.Start, w.End)
					require.LessOrEqual(t, w.End, total)
					require.LessOrEqual(t, w.Len(), p.HardCap)
					covered := w.TopSpacer + w.BottomSpacer + w.Len()*rh
					require.InDelta(t, total*rh, covered, float64(rh))
				}
			}
		}
	}
}

func TestScrollToBottomOf500(t *testing.T) {
	p := DefaultPolicy()
	const total, vh, rh = 500, 40, 1
	w := p.Apply(total, total*rh, vh, rh)
	assert.True(t, w.Virtual)
	assert.Equal(t, 500, w.End)
	assert.Equal(t, 0, w.BottomSpacer)
	assert.Equal(t, total*rh-vh, w.ScrollTop)
	assert.Equal(t, 500-40-8, w.Start)
	assert.Equal(t, w.Start*rh, w.TopSpacer)
}

func TestComputeGuardsDegenerateInputs(t *testing.T) {
	w := Compute(100, 10, 20, 0, 2, 50)
	assert.Equal(t, 8, w.Start)
	assert.Equal(t, 32, w.End)

	w = Compute(-5, 10, -20, -1, -1, 0)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 0, w.End)
	assert.Equal(t, 0, w.TopSpacer)
	assert.Equal(t, 0, w.BottomSpacer)
}

func TestHardCapBoundsTallViewport(t *testing.T) {
	w := Compute(10000, 0, 100000, 1, 8, 200)
	assert.Equal(t, 200, w.Len())
	assert.Equal(t, 10000-200, w.BottomSpacer)
}

func TestViewportLearnsOnce(t *testing.T) {
	v := NewViewport(0)
	assert.Equal(t, DefaultRowHeight, v.RowHeight())
	assert.False(t, v.Learn(0))
	assert.False(t, v.Learn(-3))
	assert.False(t, v.Learned())
	assert.True(t, v.Learn(2))
	assert.False(t, v.Learn(5))
	assert.Equal(t, 2, v.RowHeight())
	assert.True(t, v.Learned())
}

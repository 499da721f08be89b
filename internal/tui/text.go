package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// drawText writes s at (x, y) clipped to width cells and returns the
// number of cells used.
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	if width <= 0 {
		return 0
	}
	col := 0
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			break
		}
		s.SetContent(x+col, y, r, nil, style)
		col += rw
	}
	return col
}

// drawCell fills width cells with text, truncated with an ellipsis and
// padded with spaces.
func drawCell(s tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	text = runewidth.Truncate(text, width, "…")
	used := drawText(s, x, y, width, text, style)
	for c := used; c < width; c++ {
		s.SetContent(x+c, y, ' ', nil, style)
	}
}

func clearLine(s tcell.Screen, x, y, w int, style tcell.Style) {
	for c := 0; c < w; c++ {
		s.SetContent(x+c, y, ' ', nil, style)
	}
}

// composeStatusLine places left and right text on one line of width cells.
// When both do not fit, left is truncated first.
func composeStatusLine(left, right string, width int) string {
	if width <= 0 {
		return ""
	}
	lw := runewidth.StringWidth(left)
	rw := runewidth.StringWidth(right)
	if lw+rw > width {
		if rw >= width {
			return runewidth.TruncateLeft(right, rw-width, "")
		}
		left = runewidth.Truncate(left, width-rw, "")
		lw = runewidth.StringWidth(left)
	}
	return left + runewidth.FillRight("", width-lw-rw) + right
}

func displayWidth(rs []rune) int {
	return runewidth.StringWidth(string(rs))
}

package tui

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qstock/internal/config"
)

// Styles are the resolved theme colors.
type Styles struct {
	Base        tcell.Style
	Stripes     []tcell.Style
	Header      tcell.Style
	Status      tcell.Style
	FilterBar   tcell.Style
	Focus       tcell.Style
	Edit        tcell.Style
	Missing     tcell.Style
	Checked     tcell.Style
	Placeholder tcell.Style

	Picker         tcell.Style
	PickerSelected tcell.Style
	PickerBorder   tcell.Style
}

// NewStyles resolves a theme. The palette always has at least stripes
// entries; missing stripe colors repeat the configured ones.
func NewStyles(theme config.Theme, stripes int) Styles {
	fg := parseColor(theme.Foreground, tcell.ColorDefault)
	bg := parseColor(theme.Background, tcell.ColorDefault)
	base := tcell.StyleDefault.Foreground(fg).Background(bg)
	pair := func(fgName, bgName string, bgFallback tcell.Color) tcell.Style {
		return tcell.StyleDefault.
			Foreground(parseColor(fgName, fg)).
			Background(parseColor(bgName, bgFallback))
	}

	if stripes < 1 {
		stripes = 1
	}
	st := Styles{
		Base:        base,
		Header:      pair(theme.HeaderForeground, theme.HeaderBackground, bg).Bold(true),
		Status:      pair(theme.StatuslineForeground, theme.StatuslineBackground, bg),
		FilterBar:   pair(theme.FilterbarForeground, theme.FilterbarBackground, bg),
		Focus:       pair(theme.FocusForeground, theme.FocusBackground, bg),
		Edit:        pair(theme.EditForeground, theme.EditBackground, bg).Underline(true),
		Missing:     base.Foreground(parseColor(theme.MissingForeground, fg)),
		Checked:     base.Foreground(parseColor(theme.CheckedForeground, fg)),
		Placeholder: base.Foreground(parseColor(theme.PlaceholderForeground, fg)).Italic(true),

		Picker:         pair(theme.PickerForeground, theme.PickerBackground, bg),
		PickerSelected: pair(theme.PickerSelectedForeground, theme.PickerSelectedBackground, bg),
		PickerBorder:   pair(theme.PickerBorderForeground, theme.PickerBackground, bg),
	}
	for i := range stripes {
		c := bg
		if n := len(theme.StripeBackgrounds); n > 0 {
			c = parseColor(theme.StripeBackgrounds[i%n], bg)
		}
		st.Stripes = append(st.Stripes, base.Background(c))
	}
	return st
}

// Stripe returns the row style of a band.
func (st Styles) Stripe(band int) tcell.Style {
	if len(st.Stripes) == 0 {
		return st.Base
	}
	if band < 0 {
		band = -band
	}
	return st.Stripes[band%len(st.Stripes)]
}

// withBackground keeps fg and attributes of s and takes the background of bgFrom.
func withBackground(s, bgFrom tcell.Style) tcell.Style {
	_, bg, _ := bgFrom.Decompose()
	return s.Background(bg)
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}

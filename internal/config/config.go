package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
)

// Keymap binds key names (as produced by the tui key parser) to actions.
type Keymap struct {
	Table map[string]string `toml:"table"`
	Edit  map[string]string `toml:"edit"`
}

type TableOptions struct {
	VirtualizeThreshold int    `toml:"virtualize-threshold"`
	BufferRows          int    `toml:"buffer-rows"`
	HardCap             int    `toml:"hard-cap"`
	RowHeight           int    `toml:"row-height"`
	DebounceMs          int    `toml:"debounce-ms"`
	Stripes             int    `toml:"stripes"`
	PaintMs             int    `toml:"paint-ms"`
	Language            string `toml:"language"`
	StartList           string `toml:"start-list"`
}

// Debounce is the quiet period for text edits.
func (o TableOptions) Debounce() time.Duration {
	return time.Duration(o.DebounceMs) * time.Millisecond
}

// PaintInterval is the paint tick.
func (o TableOptions) PaintInterval() time.Duration {
	return time.Duration(o.PaintMs) * time.Millisecond
}

type Theme struct {
	Theme                    string   `toml:"theme"`
	Foreground               string   `toml:"foreground"`
	Background               string   `toml:"background"`
	StripeBackgrounds        []string `toml:"stripe-backgrounds"`
	HeaderForeground         string   `toml:"header-foreground"`
	HeaderBackground         string   `toml:"header-background"`
	StatuslineForeground     string   `toml:"statusline-foreground"`
	StatuslineBackground     string   `toml:"statusline-background"`
	FilterbarForeground      string   `toml:"filterbar-foreground"`
	FilterbarBackground      string   `toml:"filterbar-background"`
	FocusForeground          string   `toml:"focus-foreground"`
	FocusBackground          string   `toml:"focus-background"`
	EditForeground           string   `toml:"edit-foreground"`
	EditBackground           string   `toml:"edit-background"`
	MissingForeground        string   `toml:"missing-foreground"`
	CheckedForeground        string   `toml:"checked-foreground"`
	PlaceholderForeground    string   `toml:"placeholder-foreground"`
	PickerForeground         string   `toml:"picker-foreground"`
	PickerBackground         string   `toml:"picker-background"`
	PickerSelectedForeground string   `toml:"picker-selected-foreground"`
	PickerSelectedBackground string   `toml:"picker-selected-background"`
	PickerBorderForeground   string   `toml:"picker-border-foreground"`
}

type Config struct {
	Table  TableOptions `toml:"table"`
	Theme  Theme        `toml:"theme"`
	Keymap Keymap       `toml:"keymap"`
}

func Default() Config {
	return Config{
		Table: TableOptions{
			VirtualizeThreshold: 320,
			BufferRows:          8,
			HardCap:             200,
			RowHeight:           1,
			DebounceMs:          150,
			Stripes:             2,
			PaintMs:             16,
			Language:            "und",
			StartList:           "instance",
		},
		Theme: Theme{
			Theme:                    "",
			Foreground:               "#B3B1AD",
			Background:               "#0A0E14",
			StripeBackgrounds:        []string{"#0A0E14", "#0F1419"},
			HeaderForeground:         "#E6B450",
			HeaderBackground:         "#0F1419",
			StatuslineForeground:     "#B3B1AD",
			StatuslineBackground:     "#0F1419",
			FilterbarForeground:      "#B3B1AD",
			FilterbarBackground:      "#11151C",
			FocusForeground:          "#0A0E14",
			FocusBackground:          "#59C2FF",
			EditForeground:           "#B3B1AD",
			EditBackground:           "#27425A",
			MissingForeground:        "#F07178",
			CheckedForeground:        "#BAE67E",
			PlaceholderForeground:    "#5C6773",
			PickerForeground:         "#B3B1AD",
			PickerBackground:         "#0A0E14",
			PickerSelectedForeground: "#0A0E14",
			PickerSelectedBackground: "#E6B450",
			PickerBorderForeground:   "#3E4B59",
		},
		Keymap: Keymap{
			Table: map[string]string{
				"up":        "move_up",
				"k":         "move_up",
				"down":      "move_down",
				"j":         "move_down",
				"left":      "field_prev",
				"h":         "field_prev",
				"right":     "field_next",
				"l":         "field_next",
				"tab":       "field_next",
				"shift+tab": "field_prev",
				"pgup":      "page_up",
				"pgdn":      "page_down",
				"home":      "first",
				"end":       "last",
				"enter":     "edit",
				"e":         "edit",
				"space":     "toggle",
				"d":         "delete",
				"n":         "create",
				"m":         "move",
				"/":         "search",
				"f":         "pick_family",
				"p":         "pick_producer",
				"s":         "pick_shop",
				"x":         "toggle_missing",
				"c":         "clear_filters",
				"ctrl+o":    "switch_list",
				"q":         "quit",
				"ctrl+c":    "quit",
			},
			Edit: map[string]string{
				"esc":       "edit_cancel",
				"enter":     "edit_commit",
				"tab":       "edit_next",
				"shift+tab": "edit_prev",
				"left":      "cursor_left",
				"right":     "cursor_right",
				"home":      "line_start",
				"end":       "line_end",
				"backspace": "backspace",
				"del":       "delete_char",
				"ctrl+c":    "quit",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	if _, err := toml.Decode(string(data), &userCfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if userCfg.Table.VirtualizeThreshold > 0 {
		cfg.Table.VirtualizeThreshold = userCfg.Table.VirtualizeThreshold
	}
	if userCfg.Table.BufferRows > 0 {
		cfg.Table.BufferRows = userCfg.Table.BufferRows
	}
	if userCfg.Table.HardCap > 0 {
		cfg.Table.HardCap = userCfg.Table.HardCap
	}
	if userCfg.Table.RowHeight > 0 {
		cfg.Table.RowHeight = userCfg.Table.RowHeight
	}
	if userCfg.Table.DebounceMs > 0 {
		cfg.Table.DebounceMs = userCfg.Table.DebounceMs
	}
	if userCfg.Table.Stripes > 0 {
		cfg.Table.Stripes = userCfg.Table.Stripes
	}
	if userCfg.Table.PaintMs > 0 {
		cfg.Table.PaintMs = userCfg.Table.PaintMs
	}
	if userCfg.Table.Language != "" {
		cfg.Table.Language = userCfg.Table.Language
	}
	if userCfg.Table.StartList != "" {
		cfg.Table.StartList = userCfg.Table.StartList
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	for k, v := range userCfg.Keymap.Table {
		cfg.Keymap.Table[k] = v
	}
	for k, v := range userCfg.Keymap.Edit {
		cfg.Keymap.Edit[k] = v
	}

	return cfg, cfg.Validate()
}

// Validate reports every table option that is out of range.
func (c Config) Validate() error {
	var err error
	t := c.Table
	if t.HardCap < 1 {
		err = multierr.Append(err, fmt.Errorf("table.hard-cap = %d, want >= 1", t.HardCap))
	}
	if t.BufferRows < 0 {
		err = multierr.Append(err, fmt.Errorf("table.buffer-rows = %d, want >= 0", t.BufferRows))
	}
	if t.RowHeight < 1 {
		err = multierr.Append(err, fmt.Errorf("table.row-height = %d, want >= 1", t.RowHeight))
	}
	if t.Stripes < 1 {
		err = multierr.Append(err, fmt.Errorf("table.stripes = %d, want >= 1", t.Stripes))
	}
	if t.StartList != "instance" && t.StartList != "other" {
		err = multierr.Append(err, fmt.Errorf("table.start-list = %q, want instance or other", t.StartList))
	}
	return err
}

func mergeTheme(dst *Theme, src Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	if len(src.StripeBackgrounds) > 0 {
		dst.StripeBackgrounds = append([]string(nil), src.StripeBackgrounds...)
	}
	set(&dst.HeaderForeground, src.HeaderForeground)
	set(&dst.HeaderBackground, src.HeaderBackground)
	set(&dst.StatuslineForeground, src.StatuslineForeground)
	set(&dst.StatuslineBackground, src.StatuslineBackground)
	set(&dst.FilterbarForeground, src.FilterbarForeground)
	set(&dst.FilterbarBackground, src.FilterbarBackground)
	set(&dst.FocusForeground, src.FocusForeground)
	set(&dst.FocusBackground, src.FocusBackground)
	set(&dst.EditForeground, src.EditForeground)
	set(&dst.EditBackground, src.EditBackground)
	set(&dst.MissingForeground, src.MissingForeground)
	set(&dst.CheckedForeground, src.CheckedForeground)
	set(&dst.PlaceholderForeground, src.PlaceholderForeground)
	set(&dst.PickerForeground, src.PickerForeground)
	set(&dst.PickerBackground, src.PickerBackground)
	set(&dst.PickerSelectedForeground, src.PickerSelectedForeground)
	set(&dst.PickerSelectedBackground, src.PickerSelectedBackground)
	set(&dst.PickerBorderForeground, src.PickerBorderForeground)
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", name, err)
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QSTOCK_CONFIG_HOME"); v != "" {
		return filepath.Clean(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qstock"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qstock"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

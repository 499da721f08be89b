package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QSTOCK_CONFIG_HOME", "/tmp/qstock-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qstock-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qstock-config")
	}

	t.Setenv("QSTOCK_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qstock" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qstock")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("QSTOCK_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Table.VirtualizeThreshold != 320 {
		t.Fatalf("VirtualizeThreshold = %d, want 320", cfg.Table.VirtualizeThreshold)
	}
	if got := cfg.Table.Debounce(); got != 150*time.Millisecond {
		t.Fatalf("Debounce = %v, want 150ms", got)
	}
	if cfg.Keymap.Table["q"] != "quit" {
		t.Fatalf("keymap q = %q, want %q", cfg.Keymap.Table["q"], "quit")
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QSTOCK_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
stripe-backgrounds = ["#010101", "#020202", "#030303"]
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[table]
virtualize-threshold = 100
buffer-rows = 4
debounce-ms = 300
stripes = 3
start-list = "other"

[theme]
theme = "test"
missing-foreground = "#123456"

[keymap.table]
x = "quit"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Table.VirtualizeThreshold != 100 {
		t.Fatalf("VirtualizeThreshold = %d, want 100", cfg.Table.VirtualizeThreshold)
	}
	if cfg.Table.BufferRows != 4 {
		t.Fatalf("BufferRows = %d, want 4", cfg.Table.BufferRows)
	}
	if cfg.Table.HardCap != 200 {
		t.Fatalf("HardCap = %d, want default 200", cfg.Table.HardCap)
	}
	if cfg.Table.Debounce() != 300*time.Millisecond {
		t.Fatalf("Debounce = %v, want 300ms", cfg.Table.Debounce())
	}
	if cfg.Table.StartList != "other" {
		t.Fatalf("StartList = %q, want %q", cfg.Table.StartList, "other")
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if len(cfg.Theme.StripeBackgrounds) != 3 {
		t.Fatalf("StripeBackgrounds = %v, want 3 colors", cfg.Theme.StripeBackgrounds)
	}
	if cfg.Theme.MissingForeground != "#123456" {
		t.Fatalf("MissingForeground = %q, want %q", cfg.Theme.MissingForeground, "#123456")
	}
	if cfg.Keymap.Table["x"] != "quit" {
		t.Fatalf("keymap x = %q, want %q", cfg.Keymap.Table["x"], "quit")
	}
	if cfg.Keymap.Table["d"] != "delete" {
		t.Fatalf("keymap d = %q, want %q", cfg.Keymap.Table["d"], "delete")
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QSTOCK_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QSTOCK_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[table]
start-list = "sideways"
`)
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "start-list") {
		t.Fatalf("Load error = %v, want start-list complaint", err)
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Table.HardCap = 0
	cfg.Table.Stripes = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("Validate = nil, want error")
	}
	for _, want := range []string{"hard-cap", "stripes"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Validate = %v, missing %q", err, want)
		}
	}
}

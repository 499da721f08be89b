package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogPathEnv(t *testing.T) {
	t.Setenv("QSTOCK_LOG_FILE", "/tmp/custom.log")
	got, err := getLogPath()
	if err != nil {
		t.Fatalf("getLogPath error: %v", err)
	}
	if got != "/tmp/custom.log" {
		t.Fatalf("getLogPath = %q, want %q", got, "/tmp/custom.log")
	}

	t.Setenv("QSTOCK_LOG_FILE", "")
	t.Setenv("QSTOCK_CONFIG_HOME", "/tmp/qstock-config")
	got, err = getLogPath()
	if err != nil {
		t.Fatalf("getLogPath error: %v", err)
	}
	if want := filepath.Join("/tmp/qstock-config", "qstock.log"); got != want {
		t.Fatalf("getLogPath = %q, want %q", got, want)
	}
}

func TestInitWritesLevelFilteredLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "qstock.log")
	t.Setenv("QSTOCK_LOG_FILE", path)

	if err := Init(false); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	Debug("hidden detail", "k", 1)
	Warn("skipping malformed record", "id", "r1")
	Named("table").Info("pass")
	if err := Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug line written at info level:\n%s", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "skipping malformed record") {
		t.Fatalf("warn line missing:\n%s", out)
	}
	if !strings.Contains(out, "table") {
		t.Fatalf("named logger missing:\n%s", out)
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	Debug("x")
	Info("x")
	Warn("x")
	Error("x")
	if Named("x") == nil {
		t.Fatalf("Named returned nil before Init")
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWritesStartupLines(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(dir, true, false, []string{"subtitlecast", "export"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer l.Close()

	l.Info("hello %s", "world")
	l.Debug("debug detail %d", 42)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "subtitlecast export starting") {
		t.Errorf("missing startup line in log: %q", text)
	}
	if !strings.Contains(text, "hello world") {
		t.Errorf("missing Info() line in log: %q", text)
	}
	if !strings.Contains(text, "debug detail 42") {
		t.Errorf("missing Debug() line in log: %q", text)
	}
}

func TestSetupReturnsNilLoggerWhenNoLog(t *testing.T) {
	l, err := Setup(t.TempDir(), false, true, nil)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if l != nil {
		t.Fatal("expected a nil *Logger when noLog is true")
	}
	// Methods on a nil *Logger must be safe no-ops.
	l.Info("should not panic")
	l.Debug("should not panic")
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil logger error = %v", err)
	}
}

func TestDebugSuppressedWithoutVerbose(t *testing.T) {
	dir := t.TempDir()
	l, err := Setup(dir, false, false, []string{"subtitlecast"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	defer l.Close()

	l.Debug("should not appear")

	entries, _ := os.ReadDir(dir)
	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(content), "should not appear") {
		t.Error("expected Debug() to be suppressed when verbose is false")
	}
}

func TestDefaultLogDirHonorsXDGStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	if got, want := DefaultLogDir(), filepath.Join("/tmp/xdg-state", "subtitlecast", "logs"); got != want {
		t.Errorf("DefaultLogDir() = %q, want %q", got, want)
	}
}

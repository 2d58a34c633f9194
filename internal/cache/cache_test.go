package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	if err := Ensure(dir, nil); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %s to be a directory", dir)
	}
}

func TestAvailableMBOnMissingPath(t *testing.T) {
	if got := AvailableMB("/this/path/does/not/exist/hopefully"); got != 0 {
		t.Errorf("AvailableMB on a missing path = %d, want 0", got)
	}
}

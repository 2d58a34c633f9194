package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateTempDirAndCleanup(t *testing.T) {
	base := t.TempDir()
	td, err := CreateTempDir(base, "job")
	if err != nil {
		t.Fatalf("CreateTempDir() error = %v", err)
	}
	if _, err := os.Stat(td.Path()); err != nil {
		t.Fatalf("expected directory to exist: %v", err)
	}
	if err := td.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(td.Path()); !os.IsNotExist(err) {
		t.Error("expected directory to be removed after Cleanup()")
	}
}

func TestCreateTempFileAndCleanup(t *testing.T) {
	dir := t.TempDir()
	tf, err := CreateTempFile(dir, "frame", "png")
	if err != nil {
		t.Fatalf("CreateTempFile() error = %v", err)
	}
	path := tf.File.Name()
	if filepath.Ext(path) != ".png" {
		t.Errorf("expected a .png extension, got %q", path)
	}
	if err := tf.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed after Cleanup()")
	}
}

func TestCreateTempFilePathDoesNotCreateFile(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateTempFilePath(dir, "seg", "mp4")
	if err != nil {
		t.Fatalf("CreateTempFilePath() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected CreateTempFilePath to not create the file")
	}
	if filepath.Dir(path) != dir {
		t.Errorf("path dir = %q, want %q", filepath.Dir(path), dir)
	}
}

func TestEnsureDirectoryWritableRejectsMissingAndNonDir(t *testing.T) {
	if err := EnsureDirectoryWritable(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing directory")
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectoryWritable(file); err == nil {
		t.Error("expected an error when path is a file, not a directory")
	}
}

func TestCleanupStaleTempFilesRemovesOnlyOldMatchingFiles(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "subtitlecast_aaaa.tmp")
	recent := filepath.Join(dir, "subtitlecast_bbbb.tmp")
	other := filepath.Join(dir, "unrelated_cccc.tmp")

	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	oldTime := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(old, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	n, err := CleanupStaleTempFiles(dir, "subtitlecast", 24)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles() error = %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned count = %d, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected the old matching file to be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("expected the recent matching file to survive")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("expected the non-matching file to survive")
	}
}

func TestCleanupStaleTempFilesOnMissingDirIsNoop(t *testing.T) {
	n, err := CleanupStaleTempFiles(filepath.Join(t.TempDir(), "missing"), "subtitlecast", 1)
	if err != nil {
		t.Fatalf("CleanupStaleTempFiles() error = %v", err)
	}
	if n != 0 {
		t.Errorf("cleaned count = %d, want 0", n)
	}
}

package subtitle

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestScanSortsByOnsetAndIgnoresNonFrameFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "2000.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "500.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "1000.png"), 4, 4)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "not-a-number.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	frames, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("len(frames) = %d, want 3", len(frames))
	}
	want := []int64{500, 1000, 2000}
	for i, f := range frames {
		if f.OnsetMs != want[i] {
			t.Errorf("frames[%d].OnsetMs = %d, want %d", i, f.OnsetMs, want[i])
		}
	}
}

func TestScanRejectsDuplicateOnsets(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "1000.png"), 4, 4)
	// image/png doesn't care about extension case; write a second file
	// with the same onset via a differently-cased extension.
	writePNG(t, filepath.Join(dir, "1000.PNG"), 4, 4)

	if _, err := Scan(dir); err == nil {
		t.Fatal("expected an error for duplicate onsets")
	}
}

func TestScanRejectsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Scan(dir); err == nil {
		t.Fatal("expected an error for a directory with no frames")
	}
}

func TestScanRejectsMissingDirectory(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestOnsets(t *testing.T) {
	frames := []Frame{{OnsetMs: 10}, {OnsetMs: 20}, {OnsetMs: 30}}
	got := Onsets(frames)
	want := []int64{10, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Onsets()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTargetSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.png")
	writePNG(t, path, 64, 36)

	w, h, err := TargetSize(Frame{Path: path})
	if err != nil {
		t.Fatalf("TargetSize() error = %v", err)
	}
	if w != 64 || h != 36 {
		t.Errorf("TargetSize() = %dx%d, want 64x36", w, h)
	}
}

func TestDecodeReturnsNRGBA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0.png")
	writePNG(t, path, 8, 8)

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Errorf("Decode() bounds = %v, want 8x8", img.Bounds())
	}
}

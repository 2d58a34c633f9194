// Package subtitle discovers and parses pre-rendered subtitle frames.
//
// Grounded on internal/discovery/discovery.go's directory-scan style
// (stat, read entries, filter, sort) generalized from "sort filenames"
// to "parse and sort by integer onset".
package subtitle

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/five82/subtitlecast/internal/xerr"
)

// Frame is one pre-rendered subtitle image, identified by its onset.
type Frame struct {
	OnsetMs int64
	Path    string
}

// Scan reads dir, keeps files named "<integer>.png", and returns them
// sorted by onset ascending. Non-PNG extensions are ignored. Duplicate
// onsets are rejected with an InputError, so a successful Scan returns
// strictly increasing onsets.
func Scan(dir string) ([]Frame, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, xerr.Input("subtitle directory does not exist: %s", dir)
	}
	if !info.IsDir() {
		return nil, xerr.Input("subtitle path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerr.IO(err, "failed to read subtitle directory %s", dir)
	}

	var frames []Frame
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		onset, err := strconv.ParseInt(stem, 10, 64)
		if err != nil {
			continue // not an onset-named frame; ignore per §6
		}
		frames = append(frames, Frame{OnsetMs: onset, Path: filepath.Join(dir, name)})
	}

	if len(frames) == 0 {
		return nil, xerr.Input("no subtitle frames (<integer>.png) found in %s", dir)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].OnsetMs < frames[j].OnsetMs })

	seen := make(map[int64]bool, len(frames))
	for _, f := range frames {
		if seen[f.OnsetMs] {
			return nil, xerr.Input("duplicate subtitle onset %d ms in %s", f.OnsetMs, dir)
		}
		seen[f.OnsetMs] = true
	}

	return frames, nil
}

// Onsets extracts the onset list in order, for timeline.Build.
func Onsets(frames []Frame) []int64 {
	onsets := make([]int64, len(frames))
	for i, f := range frames {
		onsets[i] = f.OnsetMs
	}
	return onsets
}

// TargetSize opens the first subtitle frame and returns its pixel
// dimensions, used to derive the output resolution when the caller
// does not specify one explicitly.
func TargetSize(first Frame) (w, h int, err error) {
	f, oerr := os.Open(first.Path)
	if oerr != nil {
		return 0, 0, xerr.IO(oerr, "failed to open subtitle frame %s", first.Path)
	}
	defer func() { _ = f.Close() }()

	cfg, derr := png.DecodeConfig(f)
	if derr != nil {
		return 0, 0, xerr.Input("failed to decode subtitle frame %s: %v", first.Path, derr)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode decodes a subtitle frame to an RGBA image for GPU upload.
func Decode(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerr.IO(err, "failed to open subtitle frame %s", path)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, xerr.Input("failed to decode subtitle frame %s: %v", path, err)
	}

	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba, nil
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out, nil
}

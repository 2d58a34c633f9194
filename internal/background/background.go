// Package background prepares segments of a multi-clip background
// playlist to exactly cover a requested time window, with
// content-addressed caching.
//
// Grounded on internal/chunk/merge.go's incremental ffmpeg-argv
// construction and internal/util/tempfile.go's temp-file conventions,
// generalized from a random-suffix cache key to a content hash of the
// segment-identity tuple in spec.md §3.
package background

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/five82/subtitlecast/internal/cache"
	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/probe"
)

// Clip is one entry of a BackgroundPlaylist.
type Clip struct {
	Path            string
	ProbeDurationMs int64 // 0 for still images (indefinite duration)
	IsImage         bool
}

// Key identifies a PreparedSegment. Two Keys with the same fields hash
// identically, so the cache is collision-free by construction within a
// single configuration space.
type Key struct {
	SourcePath    string
	Width, Height int
	FPS           float64
	StartWithinMs int64
	TakeMs        int64
	BlurSigma     float64
	HWPreferred   bool
	// ImagePath is the still image behind an ImageFastPath encode;
	// SourcePath stays empty for those so CachePath picks img-bg.
	ImagePath string
}

// Hash returns the 10-hex-char content hash used in the cache filename.
func (k Key) Hash() string {
	sum := md5.Sum([]byte(fmt.Sprintf("%+v", k)))
	return hex.EncodeToString(sum[:])[:10]
}

// Prepared is one cached, already-scaled-and-trimmed background clip.
type Prepared struct {
	Path string
	Key  Key
}

// CachePath returns the deterministic path for Key within cacheDir,
// matching spec.md §6: cache/bg-<10-hex>-WxH-FPS.mp4 (image
// backgrounds use the img-bg- prefix).
func CachePath(cacheDir string, k Key) string {
	prefix := "bg"
	if k.SourcePath == "" {
		prefix = "img-bg"
	}
	name := fmt.Sprintf("%s-%s-%dx%d-%g.mp4", prefix, k.Hash(), k.Width, k.Height, k.FPS)
	return filepath.Join(cacheDir, name)
}

// Preparer prepares PreparedSegments from a playlist to cover a window.
type Preparer struct {
	CacheDir string
	Plan     probe.Plan

	// Logf receives a message whenever a per-segment encode fails and
	// the preparer falls back to the original source path. Nil is safe.
	Logf func(format string, args ...any)
}

func (p *Preparer) logf(format string, args ...any) {
	if p.Logf != nil {
		p.Logf(format, args...)
	}
}

// New returns a Preparer rooted at cacheDir, creating it if needed.
func New(cacheDir string, plan probe.Plan) (*Preparer, error) {
	p := &Preparer{CacheDir: cacheDir, Plan: plan}
	if err := cache.Ensure(cacheDir, p.logf); err != nil {
		return nil, err
	}
	return p, nil
}

// ImageFastPath synthesizes a looping-source encode of durationMs,
// centre-cropped with aspect-preserving upscale to (w,h), with an
// optional Gaussian blur. Used when the playlist is a single still
// image; default duration is 30s when the caller does not specify one.
func (p *Preparer) ImageFastPath(ctx context.Context, imagePath string, w, h int, fps float64, durationMs int64, blurSigma float64) (Prepared, error) {
	if durationMs <= 0 {
		durationMs = 30_000
	}
	key := Key{Width: w, Height: h, FPS: fps, TakeMs: durationMs, BlurSigma: blurSigma, ImagePath: imagePath}
	out := CachePath(p.CacheDir, key)
	if fileExists(out) {
		return Prepared{Path: out, Key: key}, nil
	}

	vf := scaleCropFilter(w, h, blurSigma)
	durationS := mediatool.FormatSeconds(float64(durationMs) / 1000)

	argv := []string{
		"ffmpeg", "-hide_banner", "-y",
		"-loop", "1", "-i", imagePath,
		"-t", durationS,
		"-vf", vf,
		"-r", mediatool.FormatSeconds(fps),
		"-g", fmt.Sprintf("%d", int(2*fps)),
		"-an",
		"-c:v", p.Plan.Codec,
	}
	argv = append(argv, p.Plan.ExtraParams...)
	argv = append(argv, out)

	if err := mediatool.Run(ctx, argv); err != nil {
		p.logf("background: image encode failed, falling back to source: %v", err)
		return Prepared{Path: imagePath, Key: key}, nil
	}
	return Prepared{Path: out, Key: key}, nil
}

// PreparePlaylist walks clips maintaining a cumulative offset, skips
// clips entirely before startMs, and emits one PreparedSegment per
// clip intersecting [startMs, startMs+durationMs). Stops when the
// budget is exhausted.
func (p *Preparer) PreparePlaylist(ctx context.Context, clips []Clip, w, h int, fps float64, startMs, durationMs int64, blurSigma float64) ([]Prepared, error) {
	if len(clips) == 1 && clips[0].IsImage {
		prep, err := p.ImageFastPath(ctx, clips[0].Path, w, h, fps, durationMs, blurSigma)
		return []Prepared{prep}, err
	}

	var out []Prepared
	cumStart := int64(0)
	remaining := durationMs

	for _, clip := range clips {
		if remaining <= 0 {
			break
		}
		cumEnd := cumStart + clip.ProbeDurationMs
		if cumEnd <= startMs {
			cumStart = cumEnd
			continue // entirely before the window
		}

		startWithin := max64(0, startMs-cumStart)
		available := clip.ProbeDurationMs - startWithin
		take := min64(available, remaining)
		if take <= 0 {
			cumStart = cumEnd
			continue
		}

		prep, err := p.prepareSegment(ctx, clip, w, h, fps, startWithin, take, blurSigma)
		if err != nil {
			return nil, err
		}
		out = append(out, prep)

		remaining -= take
		cumStart = cumEnd
	}

	return out, nil
}

// prepareSegment produces one PreparedSegment: seek-before-input to
// startWithin, post-input -t take, aspect-preserving downscale with
// letterbox padding to (w,h), optional blur, constant frame rate, GOP
// 2*fps, no audio. On encode failure it falls back to the original
// source path.
func (p *Preparer) prepareSegment(ctx context.Context, clip Clip, w, h int, fps float64, startWithinMs, takeMs int64, blurSigma float64) (Prepared, error) {
	key := Key{
		SourcePath:    clip.Path,
		Width:         w,
		Height:        h,
		FPS:           fps,
		StartWithinMs: startWithinMs,
		TakeMs:        takeMs,
		BlurSigma:     blurSigma,
	}
	out := CachePath(p.CacheDir, key)
	if fileExists(out) {
		return Prepared{Path: out, Key: key}, nil
	}

	vf := scalePadFilter(w, h, blurSigma)

	argv := []string{
		"ffmpeg", "-hide_banner", "-y",
		"-ss", mediatool.FormatSeconds(float64(startWithinMs) / 1000),
		"-i", clip.Path,
		"-t", mediatool.FormatSeconds(float64(takeMs) / 1000),
		"-vf", vf,
		"-r", mediatool.FormatSeconds(fps),
		"-g", fmt.Sprintf("%d", int(2*fps)),
		"-an",
		"-c:v", p.Plan.Codec,
	}
	argv = append(argv, p.Plan.ExtraParams...)
	argv = append(argv, out)

	if err := mediatool.Run(ctx, argv); err != nil {
		p.logf("background: segment encode failed for %s, falling back to source: %v", clip.Path, err)
		return Prepared{Path: clip.Path, Key: key}, nil
	}
	return Prepared{Path: out, Key: key}, nil
}

// scaleCropFilter centre-crops to (w,h) after an aspect-preserving
// upscale: used only for the single-still-image fast path, where there
// is no second clip to letterbox against.
func scaleCropFilter(w, h int, blurSigma float64) string {
	f := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		w, h, w, h,
	)
	if blurSigma > 0 {
		f += fmt.Sprintf(",gblur=sigma=%g", blurSigma)
	}
	return f
}

// scalePadFilter letterboxes to (w,h) after an aspect-preserving
// downscale: used for multi-clip video backgrounds, so a clip narrower
// or wider than the output frame is padded rather than cropped.
func scalePadFilter(w, h int, blurSigma float64) string {
	f := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black,setsar=1",
		w, h, w, h,
	)
	if blurSigma > 0 {
		f += fmt.Sprintf(",gblur=sigma=%g", blurSigma)
	}
	return f
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Package probe detects available hardware H.264 encoders and
// validates them with a synthetic encode.
//
// Grounded on internal/processing/chunked.go's CheckChunkedDependencies
// (exec.LookPath-based binary presence check) generalized into a
// registry query, plus the synthetic-encode validation loop from the
// original implementation's test_nvenc_availability /
// test_nvenc_with_larger_resolution.
package probe

import (
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/xerr"
)

// Codec names understood by the toolchain's encoder registry.
const (
	CodecNVENC     = "h264_nvenc"
	CodecQSV       = "h264_qsv"
	CodecVAAPI     = "h264_vaapi"
	CodecSoftware  = "libx264"
	ToolchainBinary = "ffmpeg"
)

// Plan is the chosen EncoderPlan: codec plus the extra params required
// to use it, and an optional preset.
type Plan struct {
	Codec       string
	ExtraParams []string
	Preset      string
}

// SoftwarePlan is the unconditional fallback: CRF 22, zerolatency
// tune, no B-frames, ultrafast preset. Pixel format is always yuv420p
// and bf=0 forbids B-frames to keep streaming-mode latency low.
func SoftwarePlan() Plan {
	return Plan{
		Codec:       CodecSoftware,
		ExtraParams: []string{"-crf", "22", "-tune", "zerolatency", "-bf", "0"},
		Preset:      "ultrafast",
	}
}

// Option configures a Prober.
type Option func(*Prober)

// WithSoftwareOnly forces software-only selection, bypassing hardware
// detection entirely. Intended for development environments without a
// usable GPU adapter.
func WithSoftwareOnly() Option {
	return func(p *Prober) { p.softwareOnly = true }
}

// Prober probes the toolchain's encoder registry and validates
// candidates with synthetic encodes.
type Prober struct {
	softwareOnly bool
}

func New(opts ...Option) *Prober {
	p := &Prober{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Choose runs the codec selection hierarchy: hardware encoder first
// (validated with a synthetic encode), else software H.264.
func (p *Prober) Choose(ctx context.Context) (Plan, error) {
	if p.softwareOnly {
		return SoftwarePlan(), nil
	}

	if _, err := exec.LookPath(ToolchainBinary); err != nil {
		return Plan{}, xerr.Probe("%s not found in PATH", ToolchainBinary)
	}

	registry, err := p.listEncoders(ctx)
	if err != nil {
		return Plan{}, err
	}

	if registry[CodecNVENC] && p.validateNVENC(ctx) {
		return Plan{Codec: CodecNVENC, ExtraParams: []string{"-preset", "p1", "-tune", "ull", "-bf", "0"}}, nil
	}
	if registry[CodecQSV] {
		return Plan{Codec: CodecQSV, ExtraParams: []string{"-preset", "veryfast", "-bf", "0"}}, nil
	}
	if registry[CodecVAAPI] {
		return Plan{Codec: CodecVAAPI, ExtraParams: []string{"-bf", "0"}}, nil
	}

	return SoftwarePlan(), nil
}

// listEncoders queries `ffmpeg -hide_banner -encoders` and returns the
// set of recognized H.264 encoder names present in the registry.
func (p *Prober) listEncoders(ctx context.Context) (map[string]bool, error) {
	h, err := mediatool.Spawn(ctx, []string{ToolchainBinary, "-hide_banner", "-encoders"}, mediatool.StdDiscard, mediatool.StdPipe)
	if err != nil {
		return nil, xerr.Probe("failed to query encoder registry: %v", err)
	}
	out := make(map[string]bool)
	listingBytes, _ := io.ReadAll(h.Stdout)
	listing := string(listingBytes)
	for _, name := range []string{CodecNVENC, CodecQSV, CodecVAAPI, CodecSoftware} {
		if strings.Contains(listing, name) {
			out[name] = true
		}
	}
	_ = h.Wait()
	return out, nil
}

// validateNVENC runs a silent synthetic encode of one black frame at
// 128x128 and, if that fails for any reason, once more at 256x256.
// trySynthetic looks for frame-dimension and driver/device stderr
// messages, but every failed encode counts as unavailable at that
// size, so a driver or device failure at 128x128 is also retried at
// 256x256.
func (p *Prober) validateNVENC(ctx context.Context) bool {
	if p.trySynthetic(ctx, 128) {
		return true
	}
	return p.trySynthetic(ctx, 256)
}

func (p *Prober) trySynthetic(ctx context.Context, size int) bool {
	dim := strconv.Itoa(size)
	argv := []string{
		ToolchainBinary, "-hide_banner", "-y",
		"-f", "lavfi", "-i", "color=c=black:s=" + dim + "x" + dim + ":d=1",
		"-frames:v", "1",
		"-c:v", CodecNVENC,
		"-f", "null", "-",
	}
	err := mediatool.Run(ctx, argv)
	if err == nil {
		return true
	}

	var xe *xerr.Error
	if !xerr.As(err, &xe) {
		return false
	}
	stderr := strings.ToLower(xe.Stderr)

	if size < 256 && strings.Contains(stderr, "frame dimension") {
		return false // caller retries at the larger size
	}

	unavailable := []string{
		"no nvidia devices",
		"driver",
		"cuda",
		"cannot load",
	}
	for _, substr := range unavailable {
		if strings.Contains(stderr, substr) {
			return false
		}
	}
	return false
}

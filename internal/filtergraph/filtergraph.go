// Package filtergraph assembles the declarative compositing graph for
// Mode A (Fast): a subtitle overlay track crossfaded per segment,
// concatenated onto a prepared background, with a resampled and
// trimmed audio mix.
//
// Grounded on internal/chunk/audio.go's incremental argv/stream-mapping
// style (building up -map and per-stream filter flags in a loop).
package filtergraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/five82/subtitlecast/internal/background"
	"github.com/five82/subtitlecast/internal/probe"
	"github.com/five82/subtitlecast/internal/subtitle"
	"github.com/five82/subtitlecast/internal/timeline"
)

// group mirrors the original implementation's GroupedClip abstraction.
// Grouping is reserved for a future optimization; today each group
// contains exactly one subtitle index, per spec.md §9's documented
// open question. Do not rely on this layout changing durations_s.
type group struct {
	inputIndices []int
}

func singleGroups(n int) []group {
	groups := make([]group, n)
	for i := range groups {
		groups[i] = group{inputIndices: []int{i}}
	}
	return groups
}

// AudioInput is one audio source to be resampled into the mix.
type AudioInput struct {
	Path       string
	DurationMs int64
}

// Plan holds everything needed to build the Mode A filter_complex
// script and ffconcat file for one export job.
type Plan struct {
	Frames     []subtitle.Frame
	TL         *timeline.Timeline
	FadeMs     float64
	Background []background.Prepared
	Audio      []AudioInput
	Width      int
	Height     int
	FPS        float64
	EncPlan    probe.Plan
	ChunkIndex *int // non-nil selects ALAC chunk audio instead of AAC final
}

// SubtitleConcatFile returns the ffconcat file-list content for the
// subtitle track source: one entry per frame, duration segment_dur[i]
// + fade_s (overlap for crossfade), terminated by a repeat of the last
// frame (ffconcat requires a trailing duration-less repeat to flush
// the final frame's "duration" directive).
func (p *Plan) SubtitleConcatFile() string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	fadeS := p.FadeMs / 1000
	for i, f := range p.Frames {
		dur := p.TL.SegmentDur[i] + fadeS
		fmt.Fprintf(&b, "file '%s'\nduration %s\n", escapeConcatPath(f.Path), formatSeconds(dur))
	}
	if len(p.Frames) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(p.Frames[len(p.Frames)-1].Path))
	}
	return b.String()
}

// BuildFilterComplex assembles the full filter_complex script: subtitle
// overlay branch, background branch, final overlay, audio branch.
func (p *Plan) BuildFilterComplex(subtitleInputIdx int) string {
	groups := singleGroups(len(p.Frames))
	var b strings.Builder

	// Split the subtitle track into n labelled streams.
	fmt.Fprintf(&b, "[%d:v]split=%d", subtitleInputIdx, len(groups))
	for i := range groups {
		fmt.Fprintf(&b, "[sub%d]", i)
	}
	b.WriteString(";\n")

	// Per-clip: trim, reset pts, crossfade.
	var overlayLabels []string
	cum := 0.0
	for i, g := range groups {
		// g.input_indices is always a single element today; see the
		// no-op grouping note on the group type.
		_ = g
		d := p.TL.SegmentDur[i]
		fadeS := timeline.ClampFade(p.FadeMs/1000, d)
		start := cum
		fmt.Fprintf(&b,
			"[sub%d]trim=%s:%s,setpts=PTS-STARTPTS,fade=t=in:st=0:d=%s:alpha=1,fade=t=out:st=%s:d=%s:alpha=1[ov%d];\n",
			i, formatSeconds(start), formatSeconds(start+d),
			formatSeconds(fadeS), formatSeconds(d-fadeS), formatSeconds(fadeS), i,
		)
		overlayLabels = append(overlayLabels, fmt.Sprintf("[ov%d]", i))
		cum += d
	}

	// Concatenate the per-clip overlay streams into one overlay composite.
	fmt.Fprintf(&b, "%sconcat=n=%d:v=1:a=0[subcomp];\n", strings.Join(overlayLabels, ""), len(overlayLabels))

	// Background branch: concatenate prepared segments, pad a black
	// filler if short of duration_s by more than 1us.
	var bgLabels []string
	bgTotal := 0.0
	for i, seg := range p.Background {
		fmt.Fprintf(&b, "[%d:v]setpts=PTS-STARTPTS[bg%d];\n", i+1, i)
		bgLabels = append(bgLabels, fmt.Sprintf("[bg%d]", i))
		bgTotal += float64(seg.Key.TakeMs) / 1000
	}
	deficit := p.TL.DurationS - bgTotal
	if deficit > 1e-6 {
		fmt.Fprintf(&b, "color=c=black:s=%dx%d:d=%s:r=%s[bgfill];\n",
			p.Width, p.Height, formatSeconds(deficit), formatSeconds(p.FPS))
		bgLabels = append(bgLabels, "[bgfill]")
	}
	fmt.Fprintf(&b, "%sconcat=n=%d:v=1:a=0[bgcomp];\n", strings.Join(bgLabels, ""), len(bgLabels))

	// Final overlay: subtitle composite atop background.
	fmt.Fprintf(&b, "[bgcomp][subcomp]overlay=shortest=1,format=yuv420p[vout];\n")

	// Audio branch.
	if len(p.Audio) > 0 {
		var aLabels []string
		for i, a := range p.Audio {
			_ = a
			fmt.Fprintf(&b, "[%d:a]aresample=48000[a%d];\n", subtitleInputIdx+1+len(p.Background)+i, i)
			aLabels = append(aLabels, fmt.Sprintf("[a%d]", i))
		}
		fmt.Fprintf(&b, "%sconcat=n=%d:v=0:a=1[amix];\n", strings.Join(aLabels, ""), len(aLabels))
		fmt.Fprintf(&b, "[amix]atrim=%s:%s,asetpts=PTS-STARTPTS[aout];\n",
			formatSeconds(p.TL.StartS), formatSeconds(p.TL.StartS+p.TL.DurationS))
	}

	return strings.TrimSuffix(b.String(), ";\n")
}

// HasAudio reports whether an audio track is present: any input audio
// exists AND start_s lies before the total available audio duration.
func (p *Plan) HasAudio() bool {
	if len(p.Audio) == 0 {
		return false
	}
	var total int64
	for _, a := range p.Audio {
		total += a.DurationMs
	}
	return float64(total) > p.TL.StartS*1000
}

// AudioCodec returns the codec used for the audio track: ALAC for
// chunk outputs (preserving quality through concatenation), AAC
// 320kb/s stereo for final outputs.
func (p *Plan) AudioCodec() []string {
	if p.ChunkIndex != nil {
		return []string{"-c:a", "alac"}
	}
	return []string{"-c:a", "aac", "-b:a", "320k", "-ac", "2"}
}

func escapeConcatPath(path string) string {
	return strings.ReplaceAll(path, "'", "'\\''")
}

func formatSeconds(s float64) string {
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%.6f", math.Round(s*1e6)/1e6)
}

// Package timeline converts a subtitle onset list and a clipping window
// into per-segment durations and absolute endpoints snapped to the
// frame grid.
package timeline

import (
	"math"

	"github.com/five82/subtitlecast/internal/xerr"
)

// MinTailMs is the minimum trailing time appended after the last
// subtitle onset, even when no fade is requested. Coupling the tail to
// one second is intentional; see DESIGN.md.
const MinTailMs = 1000.0

// Params are the caller-supplied window and frame-rate parameters.
type Params struct {
	FPS       float64
	FadeMs    float64
	StartMs   *int64 // nil means "from the first onset"
	DurationMs *int64 // nil means "through the synthetic tail"
}

// Timeline is the derived per-job schedule.
type Timeline struct {
	FPS        float64
	FrameDur   float64
	StartS     float64
	EndS       float64
	DurationS  float64
	SegmentDur []float64 // one per onset, in onset order
}

// Snap rounds a millisecond value to the nearest frame boundary at fps.
func Snap(ms float64, fps float64) float64 {
	return math.Round(ms/1000.0*fps) / fps
}

// Build computes the Timeline for a strictly increasing onset list.
func Build(onsetsMs []int64, p Params) (*Timeline, error) {
	if p.FPS <= 0 {
		return nil, xerr.Input("fps must be positive, got %v", p.FPS)
	}
	if len(onsetsMs) == 0 {
		return nil, xerr.Input("subtitle onset list is empty")
	}
	for i := 1; i < len(onsetsMs); i++ {
		if onsetsMs[i] <= onsetsMs[i-1] {
			return nil, xerr.Input("onsets must be strictly increasing: %d then %d", onsetsMs[i-1], onsetsMs[i])
		}
	}

	frameDur := 1.0 / p.FPS
	tailMs := math.Max(p.FadeMs, MinTailMs)

	last := onsetsMs[len(onsetsMs)-1]
	defaultEndS := Snap(float64(last)+tailMs, p.FPS)

	startS := Snap(float64(onsetsMs[0]), p.FPS)
	if p.StartMs != nil {
		startS = Snap(float64(*p.StartMs), p.FPS)
	}

	endS := defaultEndS
	if p.DurationMs != nil {
		windowStartMs := onsetsMs[0]
		if p.StartMs != nil {
			windowStartMs = *p.StartMs
		}
		endS = Snap(float64(windowStartMs+*p.DurationMs), p.FPS)
	}

	durationS := math.Max(endS-startS, frameDur)

	segDur := make([]float64, len(onsetsMs))
	for i := range onsetsMs {
		var next float64
		if i+1 < len(onsetsMs) {
			next = Snap(float64(onsetsMs[i+1]), p.FPS)
		} else {
			next = Snap(float64(onsetsMs[i])+tailMs, p.FPS)
		}
		d := next - Snap(float64(onsetsMs[i]), p.FPS)
		if d < 0.001 {
			d = 0.001
		}
		segDur[i] = d
	}

	return &Timeline{
		FPS:        p.FPS,
		FrameDur:   frameDur,
		StartS:     startS,
		EndS:       endS,
		DurationS:  durationS,
		SegmentDur: segDur,
	}, nil
}

// ClampFade returns the fade duration clamped to half of segDur, per
// the boundary rule that a fade exceeding half a segment's duration is
// clamped to half.
func ClampFade(fadeS, segDurS float64) float64 {
	half := segDurS / 2
	if fadeS > half {
		return half
	}
	return fadeS
}

// ActiveSubtitle returns the index i such that onsets[i] <= tMs < onsets[i+1]
// (or < +Inf for the last), plus ok=false if tMs precedes the first onset.
func ActiveSubtitle(onsetsMs []int64, tMs float64) (int, bool) {
	if len(onsetsMs) == 0 || tMs < float64(onsetsMs[0]) {
		return 0, false
	}
	// Linear scan: subtitle counts are small (seconds-to-minutes of
	// dialogue), and the original implementation does the same.
	i := 0
	for i+1 < len(onsetsMs) && float64(onsetsMs[i+1]) <= tMs {
		i++
	}
	return i, true
}

// FadeAlpha computes the blend alpha for the subtitle active at index i
// at time tMs, given the onset list and fade duration.
func FadeAlpha(onsetsMs []int64, i int, tMs, fadeMs float64) float64 {
	if fadeMs <= 0 {
		return 1
	}
	relIn := tMs - float64(onsetsMs[i])
	alpha := 1.0
	if relIn < fadeMs {
		alpha = math.Min(1, relIn/fadeMs)
	}
	if i+1 < len(onsetsMs) {
		relOut := float64(onsetsMs[i+1]) - tMs
		if relOut < fadeMs {
			alpha = math.Min(alpha, relOut/fadeMs)
		}
	}
	if alpha < 0 {
		alpha = 0
	}
	return alpha
}

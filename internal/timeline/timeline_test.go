package timeline

import "testing"

func TestSnap(t *testing.T) {
	// 30fps -> frame duration 1/30s ~= 33.333ms; 1000ms should land on
	// an exact frame boundary.
	got := Snap(1000, 30)
	want := 30.0 / 30.0
	if got != want {
		t.Errorf("Snap(1000, 30) = %v, want %v", got, want)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		onsets  []int64
		params  Params
	}{
		{"zero fps", []int64{0}, Params{FPS: 0}},
		{"empty onsets", nil, Params{FPS: 30}},
		{"non-increasing onsets", []int64{1000, 1000}, Params{FPS: 30}},
		{"decreasing onsets", []int64{2000, 1000}, Params{FPS: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.onsets, tc.params); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBuildAppliesMinTailWhenFadeIsShort(t *testing.T) {
	tl, err := Build([]int64{0, 2000}, Params{FPS: 30, FadeMs: 100})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Tail is max(fade_ms, MinTailMs) = 1000ms past the last onset.
	wantEnd := Snap(2000+MinTailMs, 30)
	if tl.EndS != wantEnd {
		t.Errorf("EndS = %v, want %v", tl.EndS, wantEnd)
	}
}

func TestBuildHonorsExplicitWindow(t *testing.T) {
	start := int64(500)
	duration := int64(3000)
	tl, err := Build([]int64{0, 1000, 2000}, Params{
		FPS: 30, FadeMs: 200, StartMs: &start, DurationMs: &duration,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantStart := Snap(500, 30)
	wantEnd := Snap(500+3000, 30)
	if tl.StartS != wantStart || tl.EndS != wantEnd {
		t.Errorf("window = [%v, %v], want [%v, %v]", tl.StartS, tl.EndS, wantStart, wantEnd)
	}
}

func TestClampFade(t *testing.T) {
	if got := ClampFade(1.0, 1.0); got != 0.5 {
		t.Errorf("ClampFade(1.0, 1.0) = %v, want 0.5", got)
	}
	if got := ClampFade(0.1, 1.0); got != 0.1 {
		t.Errorf("ClampFade(0.1, 1.0) = %v, want 0.1", got)
	}
}

func TestActiveSubtitle(t *testing.T) {
	onsets := []int64{0, 1000, 2000}

	if _, ok := ActiveSubtitle(onsets, -1); ok {
		t.Error("expected not-ok before the first onset")
	}
	if i, ok := ActiveSubtitle(onsets, 0); !ok || i != 0 {
		t.Errorf("ActiveSubtitle(0) = %d,%v, want 0,true", i, ok)
	}
	if i, ok := ActiveSubtitle(onsets, 1500); !ok || i != 1 {
		t.Errorf("ActiveSubtitle(1500) = %d,%v, want 1,true", i, ok)
	}
	if i, ok := ActiveSubtitle(onsets, 9999); !ok || i != 2 {
		t.Errorf("ActiveSubtitle(9999) = %d,%v, want 2,true", i, ok)
	}
}

func TestFadeAlpha(t *testing.T) {
	onsets := []int64{0, 1000}

	if got := FadeAlpha(onsets, 0, 500, 0); got != 1 {
		t.Errorf("FadeAlpha with fadeMs=0 = %v, want 1 (no fade)", got)
	}
	if got := FadeAlpha(onsets, 0, 0, 200); got != 0 {
		t.Errorf("FadeAlpha at onset start = %v, want 0", got)
	}
	if got := FadeAlpha(onsets, 0, 900, 200); got != 0.5 {
		t.Errorf("FadeAlpha fading out = %v, want 0.5", got)
	}
	if got := FadeAlpha(onsets, 0, 500, 200); got != 1 {
		t.Errorf("FadeAlpha mid-segment = %v, want 1", got)
	}
}

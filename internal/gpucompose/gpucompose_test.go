package gpucompose

import "testing"

// Renderer's constructor and RenderFrame require a real Vulkan device,
// so these tests only exercise the pure bookkeeping that does not touch
// the GPU: the NRGBA view helper and active-subtitle change tracking.

func TestBytesToNRGBA(t *testing.T) {
	rgba := make([]byte, 4*4*4)
	img := bytesToNRGBA(rgba, 4, 4)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("bounds = %v, want 4x4", img.Bounds())
	}
	if img.Stride != 16 {
		t.Errorf("Stride = %d, want 16", img.Stride)
	}
}

func TestActiveSubtitleChanged(t *testing.T) {
	r := &Renderer{activeSubtitle: -1}
	onsets := []int64{0, 1000, 2000}

	idx, active, changed := r.ActiveSubtitleChanged(onsets, 500)
	if !active || !changed || idx != 0 {
		t.Errorf("first call = idx %d, active %v, changed %v; want 0,true,true", idx, active, changed)
	}

	idx, active, changed = r.ActiveSubtitleChanged(onsets, 600)
	if !active || changed || idx != 0 {
		t.Errorf("same subtitle = idx %d, active %v, changed %v; want 0,true,false", idx, active, changed)
	}

	idx, active, changed = r.ActiveSubtitleChanged(onsets, 1500)
	if !active || !changed || idx != 1 {
		t.Errorf("advance to next subtitle = idx %d, active %v, changed %v; want 1,true,true", idx, active, changed)
	}

	_, active, changed = r.ActiveSubtitleChanged(onsets, -1)
	if active || !changed {
		t.Errorf("before first onset = active %v, changed %v; want false,true", active, changed)
	}
}

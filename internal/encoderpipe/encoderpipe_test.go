package encoderpipe

import (
	"strings"
	"testing"

	"github.com/five82/subtitlecast/internal/probe"
)

func TestBuildArgvWithoutAudio(t *testing.T) {
	cfg := Config{
		Width: 1280, Height: 720, FPS: 30,
		Output:  "out.mp4",
		EncPlan: probe.Plan{Codec: "libx264", ExtraParams: []string{"-crf", "22"}},
	}
	argv := buildArgv(cfg)
	joined := strings.Join(argv, " ")

	if !strings.Contains(joined, "-s 1280x720") {
		t.Errorf("missing frame size in argv: %q", joined)
	}
	if !strings.Contains(joined, "-map 0:v -an") {
		t.Errorf("expected -an with no audio inputs: %q", joined)
	}
	if !strings.Contains(joined, "-movflags +faststart") {
		t.Errorf("expected faststart for .mp4 output: %q", joined)
	}
	if argv[len(argv)-1] != "out.mp4" {
		t.Errorf("expected output path as last argument, got %q", argv[len(argv)-1])
	}
}

func TestBuildArgvWithAudioUsesFinalCodecByDefault(t *testing.T) {
	cfg := Config{
		Width: 640, Height: 480, FPS: 24,
		StartS: 1, DurationS: 5,
		AudioPaths: []string{"a.wav", "b.wav"},
		Output:     "out.mkv",
		EncPlan:    probe.Plan{Codec: "h264_nvenc"},
	}
	argv := buildArgv(cfg)
	joined := strings.Join(argv, " ")

	if !strings.Contains(joined, "-map [aout]") {
		t.Errorf("expected audio mix mapped to [aout]: %q", joined)
	}
	if !strings.Contains(joined, "-c:a aac") {
		t.Errorf("expected AAC final codec by default: %q", joined)
	}
	if strings.Contains(joined, "-movflags") {
		t.Errorf("did not expect faststart for a non-mp4-family output: %q", joined)
	}
}

func TestBuildArgvWithChunkIndexUsesALAC(t *testing.T) {
	idx := 3
	cfg := Config{
		Width: 640, Height: 480, FPS: 24,
		AudioPaths: []string{"a.wav"},
		Output:     "chunk.mov",
		ChunkIndex: &idx,
		EncPlan:    probe.Plan{Codec: "libx264"},
	}
	argv := buildArgv(cfg)
	joined := strings.Join(argv, " ")
	if !strings.Contains(joined, "-c:a alac") {
		t.Errorf("expected ALAC codec when ChunkIndex is set: %q", joined)
	}
	if !strings.Contains(joined, "-movflags +faststart") {
		t.Errorf("expected faststart for .mov output: %q", joined)
	}
}

func TestIsMP4Family(t *testing.T) {
	cases := map[string]bool{
		"out.mp4":  true,
		"out.mov":  true,
		"out.m4v":  true,
		"out.mkv":  false,
		"out.webm": false,
		"out":      false,
	}
	for path, want := range cases {
		if got := isMP4Family(path); got != want {
			t.Errorf("isMP4Family(%q) = %v, want %v", path, got, want)
		}
	}
}

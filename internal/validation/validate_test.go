package validation

import "testing"

func TestCheckDimensions(t *testing.T) {
	cases := []struct {
		name                           string
		actualW, actualH, expW, expH   int
		wantOK                         bool
	}{
		{"match", 1920, 1080, 1920, 1080, true},
		{"width mismatch", 1280, 1080, 1920, 1080, false},
		{"height mismatch", 1920, 720, 1920, 1080, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, msg := checkDimensions(tc.actualW, tc.actualH, tc.expW, tc.expH)
			if ok != tc.wantOK {
				t.Fatalf("checkDimensions() ok = %v, want %v (msg: %s)", ok, tc.wantOK, msg)
			}
		})
	}
}

func TestCheckDuration(t *testing.T) {
	cases := []struct {
		name           string
		actual, expect float64
		wantOK         bool
	}{
		{"exact", 10.0, 10.0, true},
		{"within tolerance", 10.5, 10.0, true},
		{"outside tolerance", 12.5, 10.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, _ := checkDuration(tc.actual, tc.expect)
			if ok != tc.wantOK {
				t.Fatalf("checkDuration(%v, %v) = %v, want %v", tc.actual, tc.expect, ok, tc.wantOK)
			}
		})
	}
}

func TestCheckAudioTrackCount(t *testing.T) {
	if ok, _ := checkAudioTrackCount(2, 2); !ok {
		t.Fatal("expected matching track counts to pass")
	}
	if ok, _ := checkAudioTrackCount(1, 2); ok {
		t.Fatal("expected mismatched track counts to fail")
	}
}

func TestFfprobeBinary(t *testing.T) {
	cases := map[string]string{
		"":              "ffprobe",
		"ffmpeg":        "ffprobe",
		"/opt/ffmpeg":   "/opt/ffprobe",
		"/usr/bin/ffmpeg": "/usr/bin/ffprobe",
	}
	for input, want := range cases {
		if got := ffprobeBinary(input); got != want {
			t.Errorf("ffprobeBinary(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestVideoDimensionsAndAudioStreams(t *testing.T) {
	info := ffprobeInfo{
		Streams: []ffprobeStream{
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio", CodecName: "aac"},
			{CodecType: "audio", CodecName: "aac"},
		},
	}
	w, h := info.videoDimensions()
	if w != 1920 || h != 1080 {
		t.Fatalf("videoDimensions() = %d,%d, want 1920,1080", w, h)
	}
	if len(info.audioStreams()) != 2 {
		t.Fatalf("audioStreams() = %d, want 2", len(info.audioStreams()))
	}
}

package mediatool

import (
	"context"
	"testing"
	"time"

	"github.com/five82/subtitlecast/internal/xerr"
)

func TestParseProgressLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		want time.Duration
		ok   bool
	}{
		{"out_time_ms", "out_time_ms=1500000", 1500 * time.Millisecond, true},
		{"time form", "frame=10 time=00:00:01.50 bitrate=N/A", time.Second + 500*time.Millisecond, true},
		{"time form with hours", "time=01:00:00.00", time.Hour, true},
		{"no match", "frame=10 fps=25", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseProgressLine(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("duration = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	if got, want := FormatSeconds(1.5), "1.500000"; got != want {
		t.Errorf("FormatSeconds(1.5) = %q, want %q", got, want)
	}
}

func TestSpawnRejectsEmptyArgv(t *testing.T) {
	if _, err := Spawn(context.Background(), nil, StdDiscard, StdDiscard); err == nil {
		t.Fatal("expected an error for an empty argument vector")
	}
}

func TestRunWrapsNonzeroExitAsEncodeError(t *testing.T) {
	err := Run(context.Background(), []string{"false"})
	if err == nil {
		t.Fatal("expected an error from a failing command")
	}
	var xe *xerr.Error
	if !xerr.As(err, &xe) {
		t.Fatalf("expected a *xerr.Error, got %T", err)
	}
	if xe.Kind != xerr.KindEncode {
		t.Errorf("Kind = %v, want KindEncode", xe.Kind)
	}
}

func TestRunSucceedsOnZeroExit(t *testing.T) {
	if err := Run(context.Background(), []string{"true"}); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

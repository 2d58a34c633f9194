package xerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	withWrapped := IO(errors.New("disk full"), "failed to write %s", "out.mp4")
	if got, want := withWrapped.Error(), "IOError: failed to write out.mp4: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	bare := Input("bad path: %s", "/nope")
	if got, want := bare.Error(), "InputError: bad path: /nope"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsCancelled(t *testing.T) {
	if !IsCancelled(Cancelled("job-1")) {
		t.Error("expected Cancelled() to report IsCancelled")
	}
	if IsCancelled(Input("not cancelled")) {
		t.Error("expected a non-Cancelled Error to report false")
	}
	if IsCancelled(errors.New("plain error")) {
		t.Error("expected a non-*Error to report false")
	}
}

func TestAsUnwrapsThroughStandardWrapping(t *testing.T) {
	base := Encode(errors.New("exit 1"), []string{"ffmpeg"}, "stderr output")
	wrapped := fmt.Errorf("context: %w", base)

	var e *Error
	if !As(wrapped, &e) {
		t.Fatal("expected As to find the wrapped *Error")
	}
	if e.Kind != KindEncode {
		t.Errorf("Kind = %v, want KindEncode", e.Kind)
	}
	if e.Stderr != "stderr output" {
		t.Errorf("Stderr = %q, want %q", e.Stderr, "stderr output")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindInput:     "InputError",
		KindProbe:     "ProbeError",
		KindEncode:    "EncodeError",
		KindIO:        "IOError",
		KindGPU:       "GpuError",
		KindCancelled: "Cancelled",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

// Package xerr defines the error taxonomy surfaced by export jobs.
package xerr

import (
	"fmt"
	"time"
)

// Kind classifies a failure for the host UI and for supervisor propagation.
type Kind int

const (
	// KindInput covers empty subtitle directories, missing backgrounds,
	// bad paths, or a zero fps.
	KindInput Kind = iota
	// KindProbe covers an unavailable toolchain or an unparseable version banner.
	KindProbe
	// KindEncode covers a nonzero exit from the external media process.
	KindEncode
	// KindIO covers cache-directory creation, input reads, or output writes.
	KindIO
	// KindGPU covers adapter/device acquisition or buffer-mapping failures.
	KindGPU
	// KindCancelled marks a cooperative cancellation, never a failure.
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputError"
	case KindProbe:
		return "ProbeError"
	case KindEncode:
		return "EncodeError"
	case KindIO:
		return "IOError"
	case KindGPU:
		return "GpuError"
	case KindCancelled:
		return "Cancelled"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned by every component.
// Components return it upward unwrapped; the supervisor is the only
// layer that decides whether it becomes an ErrorEvent.
type Error struct {
	Kind Kind
	Msg  string
	Err  error

	// Argv and Stderr are populated for KindEncode so the supervisor
	// can write a diagnostic dump alongside the ErrorEvent.
	Argv   []string
	Stderr string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCancelled reports whether err is (or wraps) a Cancelled error.
func IsCancelled(err error) bool {
	var e *Error
	if As(err, &e) {
		return e.Kind == KindCancelled
	}
	return false
}

// As is a thin re-export point so callers don't need a second import
// for errors.As when working purely with this package's Error type.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func Input(format string, args ...any) *Error {
	return &Error{Kind: KindInput, Msg: fmt.Sprintf(format, args...)}
}

func Probe(format string, args ...any) *Error {
	return &Error{Kind: KindProbe, Msg: fmt.Sprintf(format, args...)}
}

func IO(err error, format string, args ...any) *Error {
	return &Error{Kind: KindIO, Msg: fmt.Sprintf(format, args...), Err: err}
}

func GPU(err error, format string, args ...any) *Error {
	return &Error{Kind: KindGPU, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Cancelled(jobID string) *Error {
	return &Error{Kind: KindCancelled, Msg: fmt.Sprintf("job %s cancelled", jobID)}
}

// Encode wraps a nonzero exit from the external media process, keeping
// the argv and captured stderr so the supervisor can write the
// diagnostic dump named by DiagnosticPath.
func Encode(err error, argv []string, stderr string) *Error {
	return &Error{
		Kind:   KindEncode,
		Msg:    "external media process failed",
		Err:    err,
		Argv:   argv,
		Stderr: stderr,
	}
}

// DiagnosticPath returns the path a KindEncode diagnostic dump is
// written to: ./ffmpeg_failed_<epoch>.txt, matching the original
// implementation's failure-log naming.
func DiagnosticPath(now time.Time) string {
	return fmt.Sprintf("ffmpeg_failed_%d.txt", now.Unix())
}

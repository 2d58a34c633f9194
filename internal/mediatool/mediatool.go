// Package mediatool builds and executes argument vectors for the
// external decoder/encoder toolchain and parses its progress output.
//
// Grounded on internal/encoder/encoder.go's argv-building style
// (buildSvtArgs / MakeSvtCmd) and internal/chunk/merge.go's
// exec.Command + CombinedOutput idiom, generalized from a single
// SvtAv1EncApp invocation to an arbitrary external toolchain (ffmpeg
// in practice) whose binary path is resolved by an out-of-scope
// collaborator (see spec.md §1 Non-goals).
package mediatool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/five82/subtitlecast/internal/xerr"
)

// StdMode selects how a spawned process's stdout/stderr are handled.
type StdMode int

const (
	// StdDiscard throws the stream away.
	StdDiscard StdMode = iota
	// StdCapture buffers the stream for later inspection (used for stderr,
	// which carries both progress lines and failure diagnostics).
	StdCapture
	// StdPipe exposes the stream as an io.ReadCloser/io.WriteCloser for
	// streaming consumption (used for stdout when piping raw frames).
	StdPipe
)

// Handle wraps a running external process plus whichever pipes were
// requested. Spawn never blocks; callers drive the pipes and call Wait.
type Handle struct {
	Cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	stderr *capturingWriter
}

// Stderr returns everything captured from the process's stderr so far.
func (h *Handle) Stderr() string {
	if h.stderr == nil {
		return ""
	}
	return h.stderr.String()
}

// Wait waits for the process to exit. It does not interpret the exit
// code semantically — that is the caller's job, per spec.md §4.1.
func (h *Handle) Wait() error {
	return h.Cmd.Wait()
}

type capturingWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func newCapturingWriter() *capturingWriter {
	return &capturingWriter{}
}

func (c *capturingWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *capturingWriter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Spawn builds and starts argv[0](argv[1:]...) with the given stdin/stdout
// handling; stderr is always captured so progress lines and diagnostic
// dumps can both be extracted from it.
func Spawn(ctx context.Context, argv []string, stdinPipe, stdoutMode StdMode) (*Handle, error) {
	if len(argv) == 0 {
		return nil, xerr.Input("empty argument vector")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	configurePriority(cmd)

	h := &Handle{Cmd: cmd}

	if stdinPipe == StdPipe {
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, xerr.IO(err, "failed to open stdin pipe for %s", argv[0])
		}
		h.Stdin = w
	}

	if stdoutMode == StdPipe {
		r, err := cmd.StdoutPipe()
		if err != nil {
			return nil, xerr.IO(err, "failed to open stdout pipe for %s", argv[0])
		}
		h.Stdout = r
	}

	h.stderr = newCapturingWriter()
	cmd.Stderr = h.stderr

	if err := cmd.Start(); err != nil {
		return nil, xerr.Probe("failed to start %s: %v", argv[0], err)
	}

	return h, nil
}

// Run is a convenience for fire-and-forget invocations (no piped
// stdin/stdout): start, wait, and surface a KindEncode error carrying
// argv + stderr on nonzero exit.
func Run(ctx context.Context, argv []string) error {
	h, err := Spawn(ctx, argv, StdDiscard, StdDiscard)
	if err != nil {
		return err
	}
	if err := h.Wait(); err != nil {
		return xerr.Encode(err, argv, h.Stderr())
	}
	return nil
}

var timeRe = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2})\.(\d+)`)
var outTimeMsRe = regexp.MustCompile(`out_time_ms=(\d+)`)

// ParseProgressLine extracts an elapsed-time position from one line of
// toolchain progress output. It accepts both the "time=HH:MM:SS.mmm"
// form and the "out_time_ms=<microseconds>" form emitted by -progress
// pipe:N, and reports ok=false when neither matches.
func ParseProgressLine(line string) (time.Duration, bool) {
	if m := outTimeMsRe.FindStringSubmatch(line); m != nil {
		us, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(us) * time.Microsecond, true
	}
	if m := timeRe.FindStringSubmatch(line); m != nil {
		h, _ := strconv.Atoi(m[1])
		mn, _ := strconv.Atoi(m[2])
		s, _ := strconv.Atoi(m[3])
		frac := m[4]
		for len(frac) < 3 {
			frac += "0"
		}
		ms, _ := strconv.Atoi(frac[:3])
		d := time.Duration(h)*time.Hour +
			time.Duration(mn)*time.Minute +
			time.Duration(s)*time.Second +
			time.Duration(ms)*time.Millisecond
		return d, true
	}
	return 0, false
}

// ScanProgress reads lines from r, invoking onProgress for each parsed
// position. Used to drive ProgressEvent emission from a toolchain's
// "-progress pipe:2" stream.
func ScanProgress(r io.Reader, onProgress func(time.Duration)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if d, ok := ParseProgressLine(sc.Text()); ok {
			onProgress(d)
		}
	}
}

// Must is a small argv-building helper mirroring buildSvtArgs's style
// of appending flag/value pairs in bulk.
func Must(args ...string) []string { return args }

// FormatSeconds renders a float64 seconds value the way ffmpeg-style
// CLI flags expect (-r, -t, etc.): fixed 6-decimal precision, same as
// internal/chunk/merge.go's fps formatting.
func FormatSeconds(s float64) string {
	return fmt.Sprintf("%.6f", s)
}

// Package concat stitches a list of finished export outputs into a
// single container.
//
// Grounded on internal/chunk/merge.go's writeConcatFile/MergeOutput and
// MergeBatched, generalized from same-codec IVF chunks to arbitrary
// video files: video is stream-copied, audio is re-encoded to heal
// concatenation-induced timestamp drift, and the batching scheme for
// large input counts is preserved verbatim.
package concat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alessio/shellescape"

	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/util"
	"github.com/five82/subtitlecast/internal/xerr"
)

// batchSize mirrors internal/chunk/merge.go's MergeBatched threshold:
// ffmpeg's concat demuxer grows unreliable past a few hundred inputs.
const batchSize = 500

// pollInterval is how often Run checks for context cancellation while
// waiting on the child process, grounded on the original's try_wait()
// loop.
const pollInterval = 500 * time.Millisecond

// Options configures a single concatenation.
type Options struct {
	// JobID identifies this concat job for cancellation reporting.
	JobID string
	// Inputs is the ordered list of video files to concatenate.
	Inputs []string
	// Output is the destination path. Its extension selects the muxer.
	Output string
	// ToolchainPath is the external encoder/muxer binary, e.g. "ffmpeg".
	ToolchainPath string
	// HasAudio reports whether any input carries an audio stream. The
	// caller determines this (via its own media-info step) since this
	// package does no probing of its own.
	HasAudio bool
	// OnHandle, if set, is called with the running process handle
	// before Run blocks on it, so a caller (the export supervisor) can
	// register it in a job registry and cancel it out-of-band.
	OnHandle func(*mediatool.Handle)
	// Logf receives human-readable progress notes; may be nil.
	Logf func(format string, args ...any)
}

func (o *Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Run concatenates Inputs into Output. A single-element Inputs list is
// equivalent to copying the file, per spec.
func Run(ctx context.Context, opts Options) error {
	if len(opts.Inputs) == 0 {
		return xerr.Input("concat requires at least one input")
	}
	if opts.ToolchainPath == "" {
		return xerr.Input("concat requires a toolchain path")
	}

	if len(opts.Inputs) > batchSize {
		return runBatched(ctx, opts)
	}
	return runOnce(ctx, opts, opts.Inputs, opts.Output)
}

// runOnce concatenates a single batch (<= batchSize inputs) directly to
// dest.
func runOnce(ctx context.Context, opts Options, inputs []string, dest string) error {
	listPath, err := writeFileList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	argv := buildArgv(opts.ToolchainPath, listPath, dest, opts.HasAudio)
	return runAndWait(ctx, argv, opts)
}

// runBatched mirrors MergeBatched: merge in groups of batchSize, then
// merge the batch outputs into the final destination.
func runBatched(ctx context.Context, opts Options) error {
	tempDir, err := util.CreateTempDir(os.TempDir(), "subtitlecast-concat")
	if err != nil {
		return xerr.IO(err, "failed to create concat batch directory")
	}
	defer tempDir.Cleanup()

	var batchOutputs []string
	for start := 0; start < len(opts.Inputs); start += batchSize {
		end := start + batchSize
		if end > len(opts.Inputs) {
			end = len(opts.Inputs)
		}
		batchNum := start / batchSize
		batchOut := filepath.Join(tempDir.Path(), fmt.Sprintf("batch_%04d.mp4", batchNum))
		opts.logf("concat: merging batch %d (%d files)", batchNum, end-start)
		if err := runOnce(ctx, opts, opts.Inputs[start:end], batchOut); err != nil {
			return err
		}
		batchOutputs = append(batchOutputs, batchOut)
	}

	opts.logf("concat: merging %d batch outputs into final output", len(batchOutputs))
	return runOnce(ctx, opts, batchOutputs, opts.Output)
}

// writeFileList writes a concat-demuxer file list, one `file <path>`
// line per entry, with each absolute path passed through
// shellescape.Quote rather than hand-rolled quote doubling; a path made
// only of shellescape's safe characters is written unquoted.
func writeFileList(paths []string) (string, error) {
	f, err := util.CreateTempFile(os.TempDir(), "subtitlecast-concat-list", "txt")
	if err != nil {
		return "", xerr.IO(err, "failed to create concat file list")
	}
	defer f.Close()

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", xerr.Input("failed to resolve absolute path for %s: %v", p, err)
		}
		if _, err := fmt.Fprintf(f, "file %s\n", shellescape.Quote(abs)); err != nil {
			return "", xerr.IO(err, "failed to write concat file list")
		}
	}
	return f.Name(), nil
}

// buildArgv builds the stream-copy-video, re-encode-audio concat
// invocation. Audio is omitted entirely when no input carries one.
func buildArgv(toolchain, listPath, dest string, hasAudio bool) []string {
	argv := []string{
		toolchain,
		"-hide_banner",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "copy",
	}
	if hasAudio {
		argv = append(argv, "-c:a", "aac", "-b:a", "320k")
	} else {
		argv = append(argv, "-an")
	}
	argv = append(argv,
		"-fflags", "+genpts+igndts+discardcorrupt",
		"-avoid_negative_ts", "make_zero",
	)
	if isMP4Family(dest) {
		argv = append(argv, "-movflags", "+faststart")
	}
	argv = append(argv, dest)
	return argv
}

func isMP4Family(path string) bool {
	switch filepath.Ext(path) {
	case ".mp4", ".m4v", ".mov":
		return true
	default:
		return false
	}
}

// runAndWait spawns argv and polls for completion every pollInterval,
// so a caller watching ctx can observe cancellation responsively
// instead of blocking indefinitely on Wait. Verifies dest exists
// before declaring success.
func runAndWait(ctx context.Context, argv []string, opts Options) error {
	h, err := mediatool.Spawn(ctx, argv, mediatool.StdDiscard, mediatool.StdDiscard)
	if err != nil {
		return err
	}
	if opts.OnHandle != nil {
		opts.OnHandle(h)
	}

	done := make(chan error, 1)
	go func() { done <- h.Wait() }()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if err != nil {
				if xerr.IsCancelled(err) || ctx.Err() != nil {
					return xerr.Cancelled(opts.JobID)
				}
				return xerr.Encode(err, argv, h.Stderr())
			}
			dest := argv[len(argv)-1]
			if _, statErr := os.Stat(dest); statErr != nil {
				return xerr.IO(statErr, "concat output missing after success: %s", dest)
			}
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				_ = h.Cmd.Process.Kill()
			}
		}
	}
}

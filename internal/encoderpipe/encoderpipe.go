// Package encoderpipe spawns the external encoder, feeds raw RGBA
// frames via a pipe, mixes in audio track(s), and finalizes the
// output container.
//
// Grounded on internal/encoder/encoder.go's argv-building/MakeSvtCmd
// style and internal/chunk/audio.go's multi-input audio mapping.
package encoderpipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/probe"
	"github.com/five82/subtitlecast/internal/xerr"
)

// Config describes one Mode B encode: raw RGBA frames on stdin at
// (Width, Height, FPS), plus audio sources to mix and trim to the
// export window.
type Config struct {
	Width, Height int
	FPS           float64
	StartS        float64
	DurationS     float64
	AudioPaths    []string
	Output        string
	EncPlan       probe.Plan
	ChunkIndex    *int // non-nil selects ALAC chunk audio instead of AAC final
}

// Pipe wraps the running encoder process and exposes WriteFrame/Finish.
type Pipe struct {
	handle *mediatool.Handle
	argv   []string
}

// Start spawns the encoder configured for rawvideo/rgba stdin input,
// maps the single video pipe to 0:v and the mixed audio to [aout].
func Start(ctx context.Context, cfg Config) (*Pipe, error) {
	argv := buildArgv(cfg)
	h, err := mediatool.Spawn(ctx, argv, mediatool.StdPipe, mediatool.StdDiscard)
	if err != nil {
		return nil, xerr.Probe("failed to start encoder: %v", err)
	}
	return &Pipe{handle: h, argv: argv}, nil
}

func buildArgv(cfg Config) []string {
	argv := []string{
		"ffmpeg", "-hide_banner", "-y",
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", mediatool.FormatSeconds(cfg.FPS),
		"-i", "pipe:0",
	}

	for _, a := range cfg.AudioPaths {
		argv = append(argv, "-i", a)
	}

	if len(cfg.AudioPaths) > 0 {
		var labels []string
		var filter string
		for i := range cfg.AudioPaths {
			filter += fmt.Sprintf("[%d:a]aresample=48000[a%d];", i+1, i)
			labels = append(labels, fmt.Sprintf("[a%d]", i))
		}
		filter += fmt.Sprintf("%sconcat=n=%d:v=0:a=1,atrim=%s:%s,asetpts=PTS-STARTPTS[aout]",
			strings.Join(labels, ""), len(labels),
			mediatool.FormatSeconds(cfg.StartS), mediatool.FormatSeconds(cfg.StartS+cfg.DurationS))
		argv = append(argv, "-filter_complex", filter, "-map", "0:v", "-map", "[aout]")
	} else {
		argv = append(argv, "-map", "0:v", "-an")
	}

	argv = append(argv, "-c:v", cfg.EncPlan.Codec)
	argv = append(argv, cfg.EncPlan.ExtraParams...)
	argv = append(argv, "-g", fmt.Sprintf("%d", int(2*cfg.FPS)))
	argv = append(argv, "-pix_fmt", "yuv420p")

	if len(cfg.AudioPaths) > 0 {
		if cfg.ChunkIndex != nil {
			argv = append(argv, "-c:a", "alac")
		} else {
			argv = append(argv, "-c:a", "aac", "-b:a", "320k", "-ac", "2")
		}
	}

	if isMP4Family(cfg.Output) {
		argv = append(argv, "-movflags", "+faststart")
	}

	argv = append(argv, cfg.Output)
	return argv
}

func isMP4Family(path string) bool {
	for _, ext := range []string{".mp4", ".mov", ".m4v"} {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// WriteFrame writes one raw RGBA frame (len == Width*Height*4) to the
// encoder's stdin. Writes are buffered by the OS pipe; an in-flight
// write that races with cancellation may fail with a broken-pipe
// error, which callers should surface as Cancelled rather than Failed.
func (p *Pipe) WriteFrame(frame []byte) error {
	_, err := p.handle.Stdin.Write(frame)
	if err != nil {
		return xerr.IO(err, "failed to write frame to encoder pipe")
	}
	return nil
}

// CloseStdin closes the encoder's stdin pipe without waiting for exit.
// Used by cancellation to unblock a pending WriteFrame with a
// broken-pipe error rather than hanging.
func (p *Pipe) CloseStdin() error {
	return p.handle.Stdin.Close()
}

// Finish drops the stdin writer, waits for the process, and returns
// the exit status. On nonzero exit it returns a KindEncode error
// carrying the argv and captured stderr.
func (p *Pipe) Finish() error {
	if err := p.handle.Stdin.Close(); err != nil {
		return xerr.IO(err, "failed to close encoder stdin")
	}
	if err := p.handle.Wait(); err != nil {
		return xerr.Encode(err, p.argv, p.handle.Stderr())
	}
	return nil
}

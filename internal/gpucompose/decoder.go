package gpucompose

import (
	"context"
	"io"
	"strconv"

	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/xerr"
)

// FrameDecoder pulls one raw RGBA frame at a time from the external
// toolchain's stdout, decoding the background source at (w,h,fps).
// Grounded on internal/encode/encode.go's streaming-worker pattern: a
// single reusable frame buffer, blocking io.Reader pulls.
type FrameDecoder struct {
	handle    *mediatool.Handle
	frameSize int
	buf       []byte
}

// StartDecoder spawns the toolchain to decode sourcePath into raw RGBA
// frames at (w,h,fps), upscaled with its aspect ratio preserved and
// centre-cropped to (w,h).
func StartDecoder(ctx context.Context, sourcePath string, w, h int, fps float64) (*FrameDecoder, error) {
	argv := []string{
		"ffmpeg", "-hide_banner",
		"-i", sourcePath,
		"-vf", "scale=" + strconv.Itoa(w) + ":" + strconv.Itoa(h) + ":force_original_aspect_ratio=increase,crop=" + strconv.Itoa(w) + ":" + strconv.Itoa(h),
		"-r", mediatool.FormatSeconds(fps),
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"pipe:1",
	}
	h2, err := mediatool.Spawn(ctx, argv, mediatool.StdDiscard, mediatool.StdPipe)
	if err != nil {
		return nil, xerr.Probe("failed to start background decoder: %v", err)
	}
	size := w * h * 4
	return &FrameDecoder{handle: h2, frameSize: size, buf: make([]byte, size)}, nil
}

// ReadFrame reads exactly one raw RGBA frame. It returns io.EOF when
// the decoder's output is exhausted, which callers treat as normal
// termination of the per-frame loop.
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	_, err := io.ReadFull(d.handle.Stdout, d.buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, xerr.IO(err, "failed to read decoded background frame")
	}
	return d.buf, nil
}

// Close waits for the decoder process to exit.
func (d *FrameDecoder) Close() error {
	return d.handle.Wait()
}

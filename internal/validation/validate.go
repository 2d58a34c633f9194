// Package validation checks a finished export against the parameters
// that produced it: dimensions, duration, and audio track count.
//
// The teacher's validation package targeted an AV1 encoder (codec,
// bit-depth, HDR preservation) and referenced an ffprobe/mediainfo
// pair that is absent from the teacher repo entirely — dead,
// non-compiling reference code. Grounded instead on the ffprobe JSON
// wrapper in
// starsinc1708-TorrX/services/torrent-engine/internal/services/torrent/engine/ffprobe/ffprobe.go
// (stdlib exec.CommandContext + encoding/json over "-print_format
// json -show_streams -show_format"), with the Result shape and
// message-per-check style carried over from the teacher's
// ValidateOutputVideo/validateDuration/validateAudio.
package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/five82/subtitlecast/internal/xerr"
)

// durationToleranceSecs is the maximum allowed difference between the
// exported output's duration and the expected duration.
const durationToleranceSecs = 1.0

// Options describes what a caller expects the export to look like;
// nil fields skip that check.
type Options struct {
	ExpectedDimensions  *[2]int
	ExpectedDuration    *float64
	ExpectedAudioTracks *int
}

// Result reports the outcome of each check that ran.
type Result struct {
	ActualDimensions    [2]int
	IsDimensionsCorrect bool
	DimensionsMessage   string

	ActualDuration    float64
	IsDurationCorrect bool
	DurationMessage   string

	AudioTrackCount          int
	AudioCodecs              []string
	IsAudioTrackCountCorrect bool
	AudioMessage             string
}

// Validate probes outputPath with ffprobe and checks it against opts.
// A missing expectation is reported as satisfied.
func Validate(ctx context.Context, toolchainPath, outputPath string, opts Options) (*Result, error) {
	info, err := probe(ctx, toolchainPath, outputPath)
	if err != nil {
		return nil, err
	}

	result := &Result{
		IsDimensionsCorrect:      true,
		IsDurationCorrect:        true,
		IsAudioTrackCountCorrect: true,
	}

	width, height := info.videoDimensions()
	result.ActualDimensions = [2]int{width, height}
	if opts.ExpectedDimensions != nil {
		result.IsDimensionsCorrect, result.DimensionsMessage = checkDimensions(
			width, height, opts.ExpectedDimensions[0], opts.ExpectedDimensions[1])
	} else {
		result.DimensionsMessage = "no dimension check requested"
	}

	duration, _ := strconv.ParseFloat(info.Format.Duration, 64)
	result.ActualDuration = duration
	if opts.ExpectedDuration != nil {
		result.IsDurationCorrect, result.DurationMessage = checkDuration(duration, *opts.ExpectedDuration)
	} else {
		result.DurationMessage = "no duration check requested"
	}

	audioStreams := info.audioStreams()
	result.AudioTrackCount = len(audioStreams)
	for _, s := range audioStreams {
		result.AudioCodecs = append(result.AudioCodecs, s.CodecName)
	}
	if opts.ExpectedAudioTracks != nil {
		result.IsAudioTrackCountCorrect, result.AudioMessage = checkAudioTrackCount(
			len(audioStreams), *opts.ExpectedAudioTracks)
	} else {
		result.AudioMessage = "no audio track count check requested"
	}

	return result, nil
}

func checkDimensions(actualW, actualH, expectedW, expectedH int) (bool, string) {
	if actualW == expectedW && actualH == expectedH {
		return true, "dimensions match"
	}
	return false, "dimension mismatch: got " + dimString(actualW, actualH) + ", expected " + dimString(expectedW, expectedH)
}

func dimString(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}

func checkDuration(actual, expected float64) (bool, string) {
	diff := math.Abs(actual - expected)
	if diff <= durationToleranceSecs {
		return true, "duration matches input"
	}
	return false, "duration mismatch: drift exceeds tolerance"
}

func checkAudioTrackCount(actual, expected int) (bool, string) {
	if actual == expected {
		return true, "audio track count matches"
	}
	return false, "audio track count mismatch"
}

// ffprobeInfo is the subset of ffprobe's JSON output this package reads.
type ffprobeInfo struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

func (info ffprobeInfo) videoDimensions() (int, int) {
	for _, s := range info.Streams {
		if s.CodecType == "video" {
			return s.Width, s.Height
		}
	}
	return 0, 0
}

func (info ffprobeInfo) audioStreams() []ffprobeStream {
	var audio []ffprobeStream
	for _, s := range info.Streams {
		if s.CodecType == "audio" {
			audio = append(audio, s)
		}
	}
	return audio
}

// probe runs ffprobe (derived from toolchainPath, so a ffmpeg-next-to-
// ffprobe install resolves correctly) over outputPath and parses its
// JSON stream/format report.
func probe(ctx context.Context, toolchainPath, outputPath string) (ffprobeInfo, error) {
	bin := ffprobeBinary(toolchainPath)
	cmd := exec.CommandContext(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		outputPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ffprobeInfo{}, xerr.Probe("ffprobe failed on %s: %v: %s", outputPath, err, strings.TrimSpace(stderr.String()))
	}

	var info ffprobeInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return ffprobeInfo{}, xerr.Probe("failed to parse ffprobe output for %s: %v", outputPath, err)
	}
	return info, nil
}

// ffprobeBinary derives the ffprobe binary path from the configured
// ffmpeg path: "ffmpeg" -> "ffprobe", "/opt/ffmpeg" -> "/opt/ffprobe".
func ffprobeBinary(toolchainPath string) string {
	if toolchainPath == "" {
		return "ffprobe"
	}
	dir := strings.TrimSuffix(toolchainPath, "ffmpeg")
	if dir != toolchainPath {
		return dir + "ffprobe"
	}
	return "ffprobe"
}

// Package supervisor exposes the public export/concat operations and
// tracks in-flight jobs.
//
// Grounded on internal/processing/orchestrator.go's ProcessVideos (the
// per-job loop: reporter event emission, ctx.Err() cancellation check)
// and root reel.go's functional-options + event-handler dual public
// API, generalized from "encode one file" to "export one subtitle
// composite, optionally as one chunk of a larger concatenated job".
package supervisor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/five82/subtitlecast/internal/background"
	"github.com/five82/subtitlecast/internal/concat"
	"github.com/five82/subtitlecast/internal/encoderpipe"
	"github.com/five82/subtitlecast/internal/filtergraph"
	"github.com/five82/subtitlecast/internal/gpucompose"
	"github.com/five82/subtitlecast/internal/mediatool"
	"github.com/five82/subtitlecast/internal/probe"
	"github.com/five82/subtitlecast/internal/reporter"
	"github.com/five82/subtitlecast/internal/subtitle"
	"github.com/five82/subtitlecast/internal/timeline"
	"github.com/five82/subtitlecast/internal/util"
	"github.com/five82/subtitlecast/internal/validation"
	"github.com/five82/subtitlecast/internal/xerr"
)

// Mode selects the rendering strategy for one export.
type Mode int

const (
	// ModeB is the High-Fidelity GPU compositor and is the default.
	ModeB Mode = iota
	// ModeA is the Fast, filter-graph path delegated to the toolchain.
	ModeA
)

// progressEveryNFrames mirrors §4.6 step 8: emit a ProgressEvent every
// 30 frames in Mode B.
const progressEveryNFrames = 30

// Params describes one export job.
type Params struct {
	JobID       string
	SubtitleDir string
	Background  []background.Clip
	Audio       []filtergraph.AudioInput
	// Width/Height of 0 derive the output size from the first subtitle
	// frame, per spec.md §4.8.
	Width, Height int
	FPS           float64
	FadeMs        float64
	StartMs       *int64
	DurationMs    *int64
	BlurSigma     float64
	Output        string
	ChunkIndex    *int
	Mode          Mode
	CacheDir      string
	HWPreferred   bool
}

// job is the registry entry for one in-flight export or concat. cancel
// tears down the job's context, which mediatool's exec.CommandContext
// translates into a forced kill of whatever child process is running;
// pipe, when non-nil, is closed first so a blocked WriteFrame unblocks
// with a broken-pipe error rather than hanging.
type job struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	pipe   *encoderpipe.Pipe
}

// registry is a Supervisor's job map (one per Supervisor, not shared
// across instances), guarded by a coarse mutex per spec.md §5:
// operations are O(1) and brief.
type registry struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func newRegistry() *registry { return &registry{jobs: make(map[string]*job)} }

func (r *registry) put(id string, j *job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = j
}

func (r *registry) take(id string) (*job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	return j, ok
}

func (r *registry) drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// Supervisor owns the job registry and drives export and concat
// operations.
type Supervisor struct {
	registry *registry
	reporter reporter.Reporter
	prober   *probe.Prober
}

// New returns a Supervisor. A nil rep installs reporter.NullReporter;
// a nil prober installs a default hardware-detecting probe.Prober.
func New(rep reporter.Reporter, prober *probe.Prober) *Supervisor {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if prober == nil {
		prober = probe.New()
	}
	return &Supervisor{registry: newRegistry(), reporter: rep, prober: prober}
}

// ExportVideo lists and sorts subtitle frames (input paths are used as
// given, without canonicalization), derives the target size, and dispatches to Mode B by default (Mode A
// when Params.Mode requests it). On success it emits CompleteEvent; on
// any non-Cancelled failure it writes a diagnostic dump (for
// KindEncode) and emits ErrorEvent.
func (s *Supervisor) ExportVideo(ctx context.Context, p Params) (string, error) {
	start := time.Now()

	// Subtitle discovery and capability probing are independent, so run
	// them concurrently, grounded on internal/processing/chunked.go's
	// errgroup-based parallel phase-1 (indexing + crop detection).
	var frames []subtitle.Frame
	var plan probe.Plan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var scanErr error
		frames, scanErr = subtitle.Scan(p.SubtitleDir)
		return scanErr
	})
	g.Go(func() error {
		var probeErr error
		plan, probeErr = s.prober.Choose(gctx)
		return probeErr
	})
	if err := g.Wait(); err != nil {
		s.fail(p.JobID, p.ChunkIndex, err)
		return "", err
	}

	w, h := p.Width, p.Height
	var err error
	if w == 0 || h == 0 {
		w, h, err = subtitle.TargetSize(frames[0])
		if err != nil {
			s.fail(p.JobID, p.ChunkIndex, err)
			return "", err
		}
	}

	onsets := subtitle.Onsets(frames)
	tl, err := timeline.Build(onsets, timeline.Params{
		FPS:        p.FPS,
		FadeMs:     p.FadeMs,
		StartMs:    p.StartMs,
		DurationMs: p.DurationMs,
	})
	if err != nil {
		s.fail(p.JobID, p.ChunkIndex, err)
		return "", err
	}

	jobCtx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel}
	s.registry.put(p.JobID, j)
	defer s.registry.drop(p.JobID)

	s.reporter.Stage(reporter.StageProgress{Stage: "preparing", Message: fmt.Sprintf("job %s: %d subtitle frames, %dx%d @ %.3ffps", p.JobID, len(frames), w, h, p.FPS)})

	var out string
	switch p.Mode {
	case ModeA:
		out, err = s.runModeA(jobCtx, p, frames, onsets, tl, plan, w, h)
	default:
		out, err = s.runModeB(jobCtx, p, j, frames, onsets, tl, plan, w, h)
	}

	if err != nil {
		if xerr.IsCancelled(err) {
			s.reporter.Cancelled(p.JobID)
			return "", err
		}
		s.fail(p.JobID, p.ChunkIndex, err)
		return "", err
	}

	s.validateOutput(ctx, p.JobID, out, w, h, tl.DurationS, len(p.Audio))

	s.reporter.Complete(reporter.CompleteSummary{
		JobID:      p.JobID,
		Filename:   filepath.Base(out),
		FullPath:   out,
		ChunkIndex: p.ChunkIndex,
		Elapsed:    time.Since(start),
	})
	return out, nil
}

// validateOutput probes the finished file and logs a warning for any
// mismatch against what the job was supposed to produce. Validation
// failures never fail the job itself — by the time this runs the
// encoder has already exited successfully, so a probe discrepancy is
// diagnostic, not a reason to discard a usable file.
func (s *Supervisor) validateOutput(ctx context.Context, jobID, out string, w, h int, expectedDurationS float64, audioInputs int) {
	expectedAudioTracks := 0
	if audioInputs > 0 {
		expectedAudioTracks = 1
	}
	result, err := validation.Validate(ctx, probe.ToolchainBinary, out, validation.Options{
		ExpectedDimensions:  &[2]int{w, h},
		ExpectedDuration:    &expectedDurationS,
		ExpectedAudioTracks: &expectedAudioTracks,
	})
	if err != nil {
		s.reporter.Warning(fmt.Sprintf("job %s: post-export validation skipped: %v", jobID, err))
		return
	}
	if !result.IsDimensionsCorrect {
		s.reporter.Warning(fmt.Sprintf("job %s: %s", jobID, result.DimensionsMessage))
	}
	if !result.IsDurationCorrect {
		s.reporter.Warning(fmt.Sprintf("job %s: %s", jobID, result.DurationMessage))
	}
	if !result.IsAudioTrackCountCorrect {
		s.reporter.Warning(fmt.Sprintf("job %s: %s", jobID, result.AudioMessage))
	}
}

// StartStreamingExport is the Mode B entry point, per spec.md §4.8.
// ExportVideo reaches the same path when Params.Mode is left at its
// zero value (ModeB), so this is a thin, explicitly named alias for
// callers that want to force the high-fidelity path without setting
// Mode themselves.
func (s *Supervisor) StartStreamingExport(ctx context.Context, p Params) (string, error) {
	p.Mode = ModeB
	return s.ExportVideo(ctx, p)
}

// CancelExport removes any open stdin session (unblocking a pending
// WriteFrame with a broken-pipe error), then cancels the job's
// context, which kills its child process(es). Returns false if jobID
// has no registry entry (already completed), matching the "safe to
// call twice" contract in spec.md §4.8.
func (s *Supervisor) CancelExport(jobID string) bool {
	j, ok := s.registry.take(jobID)
	if !ok {
		return false
	}
	j.mu.Lock()
	pipe := j.pipe
	j.mu.Unlock()
	if pipe != nil {
		_ = pipe.CloseStdin()
	}
	j.cancel()
	return true
}

// ConcatVideos stream-copies inputs into a single output, delegating
// to internal/concat; see spec.md §4.9. The concat job participates in
// the same registry/cancellation machinery as an export job.
func (s *Supervisor) ConcatVideos(ctx context.Context, jobID string, inputs []string, output string, hasAudio bool) (string, error) {
	jobCtx, cancel := context.WithCancel(ctx)
	j := &job{cancel: cancel}
	s.registry.put(jobID, j)
	defer s.registry.drop(jobID)

	s.reporter.Stage(reporter.StageProgress{Stage: "concatenating", Message: fmt.Sprintf("job %s: %d inputs", jobID, len(inputs))})

	err := concat.Run(jobCtx, concat.Options{
		JobID:         jobID,
		Inputs:        inputs,
		Output:        output,
		ToolchainPath: probe.ToolchainBinary,
		HasAudio:      hasAudio,
		OnHandle: func(h *mediatool.Handle) {
			j.mu.Lock()
			j.pipe = nil // concat has no stdin session to close early
			j.mu.Unlock()
		},
		Logf: func(format string, args ...any) {
			s.reporter.Verbose(fmt.Sprintf(format, args...))
		},
	})
	if err != nil {
		if xerr.IsCancelled(err) {
			s.reporter.Cancelled(jobID)
		} else {
			s.fail(jobID, nil, err)
		}
		return "", err
	}

	s.reporter.Complete(reporter.CompleteSummary{JobID: jobID, Filename: filepath.Base(output), FullPath: output})
	return output, nil
}

// SendFrame is a no-op stub reserved for a future push-mode API, per
// spec.md §6.
func (s *Supervisor) SendFrame(jobID string, frame []byte) error { return nil }

// FinishStreamingExport is a no-op stub reserved for a future
// push-mode API, per spec.md §6.
func (s *Supervisor) FinishStreamingExport(jobID string) error { return nil }

func (s *Supervisor) fail(jobID string, chunkIndex *int, err error) {
	var xe *xerr.Error
	if xerr.As(err, &xe) && xe.Kind == xerr.KindEncode {
		s.dumpDiagnostic(xe)
	}
	s.reporter.Error(reporter.ReporterError{JobID: jobID, Message: err.Error(), ChunkIndex: chunkIndex})
}

func (s *Supervisor) dumpDiagnostic(xe *xerr.Error) {
	path := xerr.DiagnosticPath(time.Now())
	var b []byte
	b = append(b, []byte(fmt.Sprintf("argv: %v\n\nstderr:\n%s\n", xe.Argv, xe.Stderr))...)
	if werr := os.WriteFile(path, b, 0o644); werr != nil {
		s.reporter.Warning(fmt.Sprintf("failed to write diagnostic dump %s: %v", path, werr))
	}
}

// runModeB drives the GPU compositor loop of spec.md §4.6: decode one
// background frame, composite the active subtitle with its fade alpha,
// read back raw RGBA, and feed it to the encoder pipe.
func (s *Supervisor) runModeB(ctx context.Context, p Params, j *job, frames []subtitle.Frame, onsets []int64, tl *timeline.Timeline, plan probe.Plan, w, h int) (string, error) {
	sessionID := uuid.New().String()
	s.reporter.Verbose(fmt.Sprintf("job %s: streaming session %s", p.JobID, sessionID))

	prep, err := background.New(p.CacheDir, plan)
	if err != nil {
		return "", err
	}
	prep.Logf = func(format string, args ...any) { s.reporter.Verbose(fmt.Sprintf(format, args...)) }

	startMs := int64(tl.StartS * 1000)
	durationMs := int64(math.Round(tl.DurationS * 1000))

	prepared, err := prep.PreparePlaylist(ctx, p.Background, w, h, p.FPS, startMs, durationMs, p.BlurSigma)
	if err != nil {
		return "", err
	}

	bgSource := prepared[0].Path
	if len(prepared) > 1 {
		bgSource = filepath.Join(p.CacheDir, fmt.Sprintf("modeb-bg-%s.mp4", p.JobID))
		paths := make([]string, len(prepared))
		for i, seg := range prepared {
			paths[i] = seg.Path
		}
		if err := concat.Run(ctx, concat.Options{JobID: p.JobID, Inputs: paths, Output: bgSource, ToolchainPath: probe.ToolchainBinary, HasAudio: false}); err != nil {
			return "", err
		}
	}

	decoder, err := gpucompose.StartDecoder(ctx, bgSource, w, h, p.FPS)
	if err != nil {
		return "", err
	}
	defer decoder.Close()

	renderer, err := gpucompose.NewRenderer(w, h)
	if err != nil {
		return "", err
	}
	defer renderer.Close()

	audioPaths := make([]string, len(p.Audio))
	for i, a := range p.Audio {
		audioPaths[i] = a.Path
	}
	pipe, err := encoderpipe.Start(ctx, encoderpipe.Config{
		Width: w, Height: h, FPS: p.FPS,
		StartS: tl.StartS, DurationS: tl.DurationS,
		AudioPaths: audioPaths, Output: p.Output,
		EncPlan: plan, ChunkIndex: p.ChunkIndex,
	})
	if err != nil {
		return "", err
	}
	j.mu.Lock()
	j.pipe = pipe
	j.mu.Unlock()

	totalFrames := int(math.Round(tl.DurationS * p.FPS))
	for frameIdx := 0; frameIdx < totalFrames; frameIdx++ {
		if err := ctx.Err(); err != nil {
			_ = pipe.Finish()
			return "", xerr.Cancelled(p.JobID)
		}

		raw, err := decoder.ReadFrame()
		if err == io.EOF {
			break // source exhausted before the nominal frame count
		}
		if err != nil {
			return "", err
		}

		frameTimeMs := math.Round(float64(frameIdx)*1000/p.FPS) + float64(startMs)
		idx, active, changed := renderer.ActiveSubtitleChanged(onsets, frameTimeMs)
		if active && changed {
			if err := renderer.UploadSubtitle(frames[idx].Path); err != nil {
				return "", err
			}
		}
		if err := renderer.UploadBackground(raw); err != nil {
			return "", err
		}

		alpha := 0.0
		if active {
			alpha = timeline.FadeAlpha(onsets, idx, frameTimeMs, p.FadeMs)
		}

		composited, err := renderer.RenderFrame(ctx, alpha, active)
		if err != nil {
			return "", err
		}
		if err := pipe.WriteFrame(composited); err != nil {
			s.registry.mu.Lock()
			_, live := s.registry.jobs[p.JobID]
			s.registry.mu.Unlock()
			if !live || ctx.Err() != nil {
				return "", xerr.Cancelled(p.JobID)
			}
			return "", err
		}

		if frameIdx%progressEveryNFrames == 0 {
			s.reporter.Progress(reporter.ProgressSnapshot{
				JobID:       p.JobID,
				Percent:     float32(100 * float64(frameIdx) / float64(totalFrames)),
				CurrentTime: time.Duration(frameTimeMs) * time.Millisecond,
				TotalTime:   time.Duration(tl.DurationS * float64(time.Second)),
				ChunkIndex:  p.ChunkIndex,
			})
		}
	}

	if err := pipe.Finish(); err != nil {
		if ctx.Err() != nil {
			return "", xerr.Cancelled(p.JobID)
		}
		return "", err
	}
	return p.Output, nil
}

// runModeA drives the filter-graph path of spec.md §4.5: C4 prepares
// background segments, C5 builds the graph, C1 executes it. The
// toolchain's -progress lines land in the captured stderr only; Mode A
// emits no Progress events.
func (s *Supervisor) runModeA(ctx context.Context, p Params, frames []subtitle.Frame, onsets []int64, tl *timeline.Timeline, plan probe.Plan, w, h int) (string, error) {
	prep, err := background.New(p.CacheDir, plan)
	if err != nil {
		return "", err
	}
	prep.Logf = func(format string, args ...any) { s.reporter.Verbose(fmt.Sprintf(format, args...)) }

	startMs := int64(tl.StartS * 1000)
	durationMs := int64(math.Round(tl.DurationS * 1000))

	prepared, err := prep.PreparePlaylist(ctx, p.Background, w, h, p.FPS, startMs, durationMs, p.BlurSigma)
	if err != nil {
		return "", err
	}

	fg := &filtergraph.Plan{
		Frames: frames, TL: tl, FadeMs: p.FadeMs,
		Background: prepared, Audio: p.Audio,
		Width: w, Height: h, FPS: p.FPS,
		EncPlan: plan, ChunkIndex: p.ChunkIndex,
	}

	listPath, err := writeTempFile(fg.SubtitleConcatFile(), "subtitlecast-subtitle-concat")
	if err != nil {
		return "", err
	}
	defer os.Remove(listPath)

	subtitleInputIdx := 0
	argv := []string{
		probe.ToolchainBinary, "-hide_banner", "-y",
		"-f", "concat", "-safe", "0", "-i", listPath,
	}
	for _, seg := range prepared {
		argv = append(argv, "-i", seg.Path)
	}
	for _, a := range p.Audio {
		argv = append(argv, "-i", a.Path)
	}

	argv = append(argv, "-filter_complex", fg.BuildFilterComplex(subtitleInputIdx))
	argv = append(argv, "-map", "[vout]")
	hasAudio := fg.HasAudio()
	if hasAudio {
		argv = append(argv, "-map", "[aout]")
	}
	argv = append(argv, "-r", mediatool.FormatSeconds(p.FPS))
	argv = append(argv, "-g", fmt.Sprintf("%d", int(2*p.FPS)))
	argv = append(argv, "-c:v", plan.Codec)
	argv = append(argv, plan.ExtraParams...)
	if hasAudio {
		argv = append(argv, fg.AudioCodec()...)
	}
	if isMP4Family(p.Output) {
		argv = append(argv, "-movflags", "+faststart")
	}
	argv = append(argv, "-progress", "pipe:2", p.Output)

	h2, err := mediatool.Spawn(ctx, argv, mediatool.StdDiscard, mediatool.StdDiscard)
	if err != nil {
		return "", err
	}
	if err := h2.Wait(); err != nil {
		if xerr.IsCancelled(err) || ctx.Err() != nil {
			return "", xerr.Cancelled(p.JobID)
		}
		return "", xerr.Encode(err, argv, h2.Stderr())
	}
	return p.Output, nil
}

func isMP4Family(path string) bool {
	switch filepath.Ext(path) {
	case ".mp4", ".m4v", ".mov":
		return true
	default:
		return false
	}
}

func writeTempFile(content, prefix string) (string, error) {
	f, err := util.CreateTempFile(os.TempDir(), prefix, "txt")
	if err != nil {
		return "", xerr.IO(err, "failed to create temp file")
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return "", xerr.IO(err, "failed to write temp file")
	}
	return f.Name(), nil
}

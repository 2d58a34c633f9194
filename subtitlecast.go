// Package subtitlecast composites timed subtitle overlays atop
// background video/image sources and exports a single synchronized
// output file, either through a fast filter-graph pass delegated to
// the toolchain (Mode A) or a frame-accurate GPU compositor pass
// (Mode B, the default).
//
// Grounded on the teacher's root reel.go: a functional-options
// constructor wrapping a config.Config, with events delivered through
// either a direct Reporter or an EventHandler adapter, generalized
// from "encode one file with SVT-AV1" to "export one subtitle
// composite, optionally as one chunk of a larger concatenated job".
// Unlike the teacher, the Reporter/EventHandler is fixed at
// construction (WithReporter/WithEventHandler) rather than accepted
// per call: Cancel needs to reach the same job registry that Export
// populated, which means Export and Cancel must share one underlying
// supervisor.Supervisor instance for the lifetime of the Exporter.
//
// Basic usage:
//
//	exporter, err := subtitlecast.New(
//	    subtitlecast.WithFPS(30),
//	    subtitlecast.WithFadeMs(250),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := exporter.Export(ctx, subtitlecast.ExportRequest{
//	    JobID:       "job-1",
//	    SubtitleDir: "frames/",
//	    Background:  []subtitlecast.BackgroundClip{{Path: "bg.mp4"}},
//	    Output:      "out.mp4",
//	})
package subtitlecast

import (
	"context"

	"github.com/five82/subtitlecast/internal/background"
	"github.com/five82/subtitlecast/internal/config"
	"github.com/five82/subtitlecast/internal/filtergraph"
	"github.com/five82/subtitlecast/internal/probe"
	"github.com/five82/subtitlecast/internal/reporter"
	"github.com/five82/subtitlecast/internal/supervisor"
)

// BackgroundClip names one background source and its duration, passed
// straight through to internal/background.Clip.
type BackgroundClip = background.Clip

// AudioInput names one audio source to mix into the export, passed
// straight through to internal/filtergraph.AudioInput.
type AudioInput = filtergraph.AudioInput

// Mode selects the rendering strategy for one export.
type Mode = supervisor.Mode

const (
	// ModeB is the high-fidelity GPU compositor path and is the default.
	ModeB = supervisor.ModeB
	// ModeA is the fast, filter-graph path delegated to the toolchain.
	ModeA = supervisor.ModeA
)

// ExportRequest describes one export job.
type ExportRequest struct {
	JobID       string
	SubtitleDir string
	Background  []BackgroundClip
	Audio       []AudioInput
	// Width/Height of 0 derive the output size from the first subtitle frame.
	Width, Height int
	Output        string
	ChunkIndex    *int
	Mode          Mode
	StartMs       *int64
	DurationMs    *int64
}

// settings accumulates constructor options before New resolves them
// into a Config and a Reporter.
type settings struct {
	config   *config.Config
	reporter reporter.Reporter
}

// Option configures the Exporter.
type Option func(*settings)

// Exporter is the main entry point for subtitle-composite export. One
// Exporter owns one job registry: Export and Cancel calls against the
// same Exporter instance see each other's in-flight jobs.
type Exporter struct {
	config *config.Config
	sup    *supervisor.Supervisor
}

// New creates a new Exporter with the given options.
func New(opts ...Option) (*Exporter, error) {
	s := &settings{
		config:   config.NewConfig(config.DefaultCacheDirName, ""),
		reporter: reporter.NullReporter{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	var prober *probe.Prober
	if s.config.HWPreferred {
		prober = probe.New()
	} else {
		prober = probe.New(probe.WithSoftwareOnly())
	}

	return &Exporter{
		config: s.config,
		sup:    supervisor.New(s.reporter, prober),
	}, nil
}

// WithFPS sets the output frame rate.
func WithFPS(fps float64) Option {
	return func(s *settings) { s.config.FPS = fps }
}

// WithFadeMs sets the crossfade duration at subtitle boundaries.
func WithFadeMs(fadeMs float64) Option {
	return func(s *settings) { s.config.FadeMs = fadeMs }
}

// WithBlurSigma sets the Gaussian blur applied to the background (0 disables it).
func WithBlurSigma(sigma float64) Option {
	return func(s *settings) { s.config.BlurSigma = sigma }
}

// WithOutputSize fixes the output geometry instead of deriving it from
// the first subtitle frame.
func WithOutputSize(width, height int) Option {
	return func(s *settings) { s.config.Width, s.config.Height = width, height }
}

// WithSoftwareOnly disables hardware-encoder detection, forcing the
// libx264 fallback plan regardless of what the host GPU supports.
func WithSoftwareOnly() Option {
	return func(s *settings) { s.config.HWPreferred = false }
}

// WithCacheDir sets the content-addressed prepared-segment cache directory.
func WithCacheDir(dir string) Option {
	return func(s *settings) { s.config.CacheDir = dir }
}

// WithVerbose sets Config.Verbose. Verbose reporter events are
// delivered whether or not it is set; the flag does not filter them.
func WithVerbose() Option {
	return func(s *settings) { s.config.Verbose = true }
}

// WithReporter delivers every export/concat event directly through
// rep. Mutually exclusive in effect with WithEventHandler — whichever
// option runs last wins.
func WithReporter(rep Reporter) Option {
	return func(s *settings) {
		if rep == nil {
			rep = reporter.NullReporter{}
		}
		s.reporter = rep
	}
}

// WithEventHandler translates export/concat events into Event values
// delivered to handler.
func WithEventHandler(handler EventHandler) Option {
	return func(s *settings) {
		if handler == nil {
			s.reporter = reporter.NullReporter{}
			return
		}
		s.reporter = newEventReporter(handler)
	}
}

func (e *Exporter) params(req ExportRequest) supervisor.Params {
	return supervisor.Params{
		JobID:       req.JobID,
		SubtitleDir: req.SubtitleDir,
		Background:  req.Background,
		Audio:       req.Audio,
		Width:       orDefault(req.Width, e.config.Width),
		Height:      orDefault(req.Height, e.config.Height),
		FPS:         e.config.FPS,
		FadeMs:      e.config.FadeMs,
		StartMs:     req.StartMs,
		DurationMs:  req.DurationMs,
		BlurSigma:   e.config.BlurSigma,
		Output:      req.Output,
		ChunkIndex:  req.ChunkIndex,
		Mode:        req.Mode,
		CacheDir:    e.config.CacheDir,
		HWPreferred: e.config.HWPreferred,
	}
}

func orDefault(requested, fallback int) int {
	if requested != 0 {
		return requested
	}
	return fallback
}

// Export runs req and returns the output path on success.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (string, error) {
	return e.sup.ExportVideo(ctx, e.params(req))
}

// Cancel requests cancellation of a previously started export or
// concat job. Safe to call even if the job already finished; returns
// false in that case.
func (e *Exporter) Cancel(jobID string) bool {
	return e.sup.CancelExport(jobID)
}

// ConcatVideos stream-copies inputs into a single output file.
func (e *Exporter) ConcatVideos(ctx context.Context, jobID string, inputs []string, output string, hasAudio bool) (string, error) {
	return e.sup.ConcatVideos(ctx, jobID, inputs, output, hasAudio)
}

// eventReporter adapts EventHandler to the internal Reporter interface.
type eventReporter struct {
	handler EventHandler
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler}
}

func (r *eventReporter) Stage(s reporter.StageProgress) {
	_ = r.handler(StageEvent{
		BaseEvent: BaseEvent{EventType: EventTypeExportStage, Time: NewTimestamp()},
		Stage:     s.Stage,
		Message:   s.Message,
	})
}

func (r *eventReporter) Progress(p reporter.ProgressSnapshot) {
	var cur, total *float64
	if p.TotalTime > 0 {
		c := p.CurrentTime.Seconds()
		t := p.TotalTime.Seconds()
		cur, total = &c, &t
	}
	_ = r.handler(ProgressEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeExportProgress, Time: NewTimestamp()},
		JobID:       p.JobID,
		Progress:    p.Percent,
		CurrentTime: cur,
		TotalTime:   total,
		ChunkIndex:  p.ChunkIndex,
	})
}

func (r *eventReporter) Complete(s reporter.CompleteSummary) {
	_ = r.handler(CompleteEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeExportComplete, Time: NewTimestamp()},
		Filename:   s.Filename,
		ExportID:   s.JobID,
		FullPath:   s.FullPath,
		ChunkIndex: s.ChunkIndex,
	})
}

func (r *eventReporter) Cancelled(jobID string) {
	_ = r.handler(ErrorEvent{
		BaseEvent: BaseEvent{EventType: EventTypeExportError, Time: NewTimestamp()},
		ExportID:  jobID,
		Error:     "cancelled",
	})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeExportError, Time: NewTimestamp()},
		ExportID:   e.JobID,
		Error:      e.Message,
		ChunkIndex: e.ChunkIndex,
	})
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{
		BaseEvent: BaseEvent{EventType: EventTypeExportWarning, Time: NewTimestamp()},
		Message:   message,
	})
}

func (r *eventReporter) Verbose(message string) {
	_ = r.handler(VerboseEvent{
		BaseEvent: BaseEvent{EventType: EventTypeExportVerbose, Time: NewTimestamp()},
		Message:   message,
	})
}

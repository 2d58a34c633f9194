// Package main provides the CLI entry point for subtitlecast.
//
// Grounded on cmd/reel/main.go's subcommand dispatch (flag.FlagSet per
// subcommand, signal-driven context cancellation, terminal+log
// composite reporter), generalized from a single "encode" subcommand
// to "export" and "concat".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/five82/subtitlecast"
	"github.com/five82/subtitlecast/internal/background"
	"github.com/five82/subtitlecast/internal/discovery"
	"github.com/five82/subtitlecast/internal/filtergraph"
	"github.com/five82/subtitlecast/internal/logging"
	"github.com/five82/subtitlecast/internal/reporter"
)

const (
	appName    = "subtitlecast"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "concat":
		err = runConcat(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, appVersion)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - subtitle-composite video export tool

Usage:
  %s <command> [options]

Commands:
  export    Composite timed subtitle frames over a background and export a video
  concat    Stream-copy a list of finished export outputs into one file
  version   Print version information
  help      Show this help message

Run '%s export --help' or '%s concat --help' for subcommand options.
`, appName, appName, appName, appName)
}

func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func setupReporter(verbose bool, logDir string, noLog bool) (reporter.Reporter, *logging.Logger, error) {
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	logger, err := logging.Setup(logDir, verbose, noLog, os.Args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	termRep := reporter.NewTerminalReporterVerbose(verbose)
	var rep reporter.Reporter = termRep
	if logger != nil {
		logRep := reporter.NewLogReporter(logger.Writer())
		rep = reporter.NewCompositeReporter(termRep, logRep)
	}
	return rep, logger, nil
}

// exportArgs holds the parsed arguments for the export command.
type exportArgs struct {
	jobID         string
	subtitleDir   string
	backgroundDir string
	background    string // comma-separated explicit file list, alternative to backgroundDir
	audio         string // comma-separated explicit audio file list
	output        string
	logDir        string
	cacheDir      string
	verbose       bool
	noLog         bool
	softwareOnly  bool
	fast          bool // Mode A instead of the Mode B default
	fps           float64
	fadeMs        float64
	blurSigma     float64
	width, height int
	startMs       int64
	durationMs    int64
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Composite timed subtitle frames over a background and export a video.

Usage:
  %s export [options]

Required:
  --job-id <ID>            Job identifier (used for diagnostics and cancellation)
  --subtitles <PATH>        Directory of subtitle frame images named <onset-ms>.png
  --output <PATH>           Output video file path

Background (exactly one of):
  --background-dir <PATH>   Directory of background video/image files
  --background <LIST>       Comma-separated explicit background file paths

Options:
  --audio <LIST>            Comma-separated audio file paths to mix in
  --fps <N>                 Output frame rate (default 30)
  --fade-ms <N>             Crossfade duration at subtitle boundaries in ms (default 200)
  --blur-sigma <N>          Gaussian blur applied to the background (default 0, disabled)
  --width <N> --height <N>  Fix output geometry (default: derived from first subtitle frame)
  --start-ms <N>            Export window start offset in ms
  --duration-ms <N>         Export window duration in ms
  --fast                    Use the fast filter-graph path (Mode A) instead of the GPU compositor
  --software-only           Disable hardware-encoder detection
  --cache-dir <PATH>        Prepared-background cache directory
  -l, --log-dir <PATH>      Log directory (defaults to ~/.local/state/subtitlecast/logs)
  -v, --verbose             Enable verbose output
  --no-log                  Disable log file creation
`, appName)
	}

	var ea exportArgs
	fs.StringVar(&ea.jobID, "job-id", "", "Job identifier")
	fs.StringVar(&ea.subtitleDir, "subtitles", "", "Subtitle frame directory")
	fs.StringVar(&ea.backgroundDir, "background-dir", "", "Background file directory")
	fs.StringVar(&ea.background, "background", "", "Comma-separated background file paths")
	fs.StringVar(&ea.audio, "audio", "", "Comma-separated audio file paths")
	fs.StringVar(&ea.output, "output", "", "Output video file path")
	fs.StringVar(&ea.logDir, "l", "", "Log directory")
	fs.StringVar(&ea.logDir, "log-dir", "", "Log directory")
	fs.StringVar(&ea.cacheDir, "cache-dir", "", "Prepared-background cache directory")
	fs.BoolVar(&ea.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ea.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ea.noLog, "no-log", false, "Disable log file creation")
	fs.BoolVar(&ea.softwareOnly, "software-only", false, "Disable hardware-encoder detection")
	fs.BoolVar(&ea.fast, "fast", false, "Use the fast filter-graph path (Mode A)")
	fs.Float64Var(&ea.fps, "fps", 0, "Output frame rate")
	fs.Float64Var(&ea.fadeMs, "fade-ms", 0, "Crossfade duration in ms")
	fs.Float64Var(&ea.blurSigma, "blur-sigma", 0, "Background blur sigma")
	fs.IntVar(&ea.width, "width", 0, "Output width")
	fs.IntVar(&ea.height, "height", 0, "Output height")
	fs.Int64Var(&ea.startMs, "start-ms", 0, "Export window start offset in ms")
	fs.Int64Var(&ea.durationMs, "duration-ms", 0, "Export window duration in ms")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if ea.jobID == "" {
		return fmt.Errorf("job id is required (--job-id)")
	}
	if ea.subtitleDir == "" {
		return fmt.Errorf("subtitle directory is required (--subtitles)")
	}
	if ea.output == "" {
		return fmt.Errorf("output path is required (--output)")
	}
	if ea.backgroundDir == "" && ea.background == "" {
		return fmt.Errorf("a background source is required (--background-dir or --background)")
	}

	return executeExport(ea)
}

func executeExport(ea exportArgs) error {
	backgroundClips, err := resolveBackground(ea.backgroundDir, ea.background)
	if err != nil {
		return err
	}

	var audioInputs []subtitlecast.AudioInput
	for _, path := range splitNonEmpty(ea.audio) {
		audioInputs = append(audioInputs, filtergraph.AudioInput{Path: path})
	}

	if err := os.MkdirAll(filepath.Dir(ea.output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rep, logger, err := setupReporter(ea.verbose, ea.logDir, ea.noLog)
	if err != nil {
		return err
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
		logger.Info("Exporting job %s: %d background clip(s), %d audio input(s)", ea.jobID, len(backgroundClips), len(audioInputs))
	}

	opts := []subtitlecast.Option{subtitlecast.WithReporter(rep)}
	if ea.fps > 0 {
		opts = append(opts, subtitlecast.WithFPS(ea.fps))
	}
	if ea.fadeMs > 0 {
		opts = append(opts, subtitlecast.WithFadeMs(ea.fadeMs))
	}
	if ea.blurSigma > 0 {
		opts = append(opts, subtitlecast.WithBlurSigma(ea.blurSigma))
	}
	if ea.cacheDir != "" {
		opts = append(opts, subtitlecast.WithCacheDir(ea.cacheDir))
	}
	if ea.softwareOnly {
		opts = append(opts, subtitlecast.WithSoftwareOnly())
	}

	exporter, err := subtitlecast.New(opts...)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	req := subtitlecast.ExportRequest{
		JobID:       ea.jobID,
		SubtitleDir: ea.subtitleDir,
		Background:  backgroundClips,
		Audio:       audioInputs,
		Width:       ea.width,
		Height:      ea.height,
		Output:      ea.output,
	}
	if ea.fast {
		req.Mode = subtitlecast.ModeA
	}
	if ea.startMs > 0 {
		req.StartMs = &ea.startMs
	}
	if ea.durationMs > 0 {
		req.DurationMs = &ea.durationMs
	}

	ctx, cancel := setupContext()
	defer cancel()

	_, err = exporter.Export(ctx, req)
	return err
}

func resolveBackground(dir, explicit string) ([]subtitlecast.BackgroundClip, error) {
	var paths []string
	if explicit != "" {
		paths = splitNonEmpty(explicit)
	} else {
		found, err := discovery.FindBackgroundFiles(dir)
		if err != nil {
			return nil, err
		}
		paths = found
	}

	clips := make([]subtitlecast.BackgroundClip, len(paths))
	for i, p := range paths {
		clips[i] = background.Clip{Path: p, IsImage: discovery.IsImageFile(p)}
	}
	return clips, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// concatArgs holds the parsed arguments for the concat command.
type concatArgs struct {
	jobID    string
	inputs   string
	output   string
	hasAudio bool
	logDir   string
	verbose  bool
	noLog    bool
}

func runConcat(args []string) error {
	fs := flag.NewFlagSet("concat", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Stream-copy a list of finished export outputs into one file.

Usage:
  %s concat [options]

Required:
  --job-id <ID>       Job identifier
  --inputs <LIST>     Comma-separated list of video files, in order
  --output <PATH>     Output video file path

Options:
  --has-audio         At least one input carries an audio stream
  -l, --log-dir <PATH>  Log directory
  -v, --verbose       Enable verbose output
  --no-log            Disable log file creation
`, appName)
	}

	var ca concatArgs
	fs.StringVar(&ca.jobID, "job-id", "", "Job identifier")
	fs.StringVar(&ca.inputs, "inputs", "", "Comma-separated input video files")
	fs.StringVar(&ca.output, "output", "", "Output video file path")
	fs.BoolVar(&ca.hasAudio, "has-audio", false, "At least one input carries audio")
	fs.StringVar(&ca.logDir, "l", "", "Log directory")
	fs.StringVar(&ca.logDir, "log-dir", "", "Log directory")
	fs.BoolVar(&ca.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&ca.verbose, "verbose", false, "Enable verbose output")
	fs.BoolVar(&ca.noLog, "no-log", false, "Disable log file creation")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if ca.jobID == "" {
		return fmt.Errorf("job id is required (--job-id)")
	}
	inputs := splitNonEmpty(ca.inputs)
	if len(inputs) == 0 {
		return fmt.Errorf("at least one input is required (--inputs)")
	}
	if ca.output == "" {
		return fmt.Errorf("output path is required (--output)")
	}

	return executeConcat(ca, inputs)
}

func executeConcat(ca concatArgs, inputs []string) error {
	if err := os.MkdirAll(filepath.Dir(ca.output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rep, logger, err := setupReporter(ca.verbose, ca.logDir, ca.noLog)
	if err != nil {
		return err
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
		logger.Info("Concatenating job %s: %d inputs", ca.jobID, len(inputs))
	}

	exporter, err := subtitlecast.New(subtitlecast.WithReporter(rep))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := setupContext()
	defer cancel()

	_, err = exporter.ConcatVideos(ctx, ca.jobID, inputs, ca.output, ca.hasAudio)
	return err
}

// Package config provides configuration types and defaults for the
// export pipeline, modeled directly on the teacher's
// internal/config/config.go (defaults-bearing struct, NewConfig,
// Validate).
package config

import "fmt"

// Default constants.
const (
	// DefaultFPS is used when a caller does not specify an output frame rate.
	DefaultFPS float64 = 30.0

	// DefaultFadeMs is the default crossfade duration at subtitle boundaries.
	DefaultFadeMs float64 = 200.0

	// DefaultBlurSigma is the default Gaussian blur applied to the background (0 disables it).
	DefaultBlurSigma float64 = 0.0

	// DefaultCRF is the software-fallback encoder's quality setting (0-63, lower is better).
	DefaultCRF uint8 = 22

	// DefaultPreset is the software-fallback encoder's speed/quality preset.
	DefaultPreset string = "ultrafast"

	// DefaultCacheDirName names the content-addressed prepared-segment
	// cache directory, matching spec.md §6's cache layout.
	DefaultCacheDirName string = "subtitlecast-preproc"

	// ProgressEveryNFrames is how often Mode B emits a ProgressEvent.
	ProgressEveryNFrames int = 30
)

// Config holds all configuration for an export job.
type Config struct {
	// Output geometry and timing
	Width, Height int // 0,0 derives from the first subtitle frame
	FPS           float64
	FadeMs        float64
	BlurSigma     float64

	// Software-fallback encoder parameters (only used when no hardware
	// encoder validates; see internal/probe)
	CRF    uint8
	Preset string

	// Paths
	CacheDir string
	LogDir   string

	// HWPreferred forces hardware-encoder detection on (the default);
	// set false to force the software-only path (internal/probe.WithSoftwareOnly).
	HWPreferred bool

	// Debug options
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig(cacheDir, logDir string) *Config {
	return &Config{
		FPS:         DefaultFPS,
		FadeMs:      DefaultFadeMs,
		BlurSigma:   DefaultBlurSigma,
		CRF:         DefaultCRF,
		Preset:      DefaultPreset,
		CacheDir:    cacheDir,
		LogDir:      logDir,
		HWPreferred: true,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.FadeMs < 0 {
		return fmt.Errorf("fade_ms must be non-negative, got %v", c.FadeMs)
	}
	if c.BlurSigma < 0 {
		return fmt.Errorf("blur_sigma must be non-negative, got %v", c.BlurSigma)
	}
	if c.CRF > 63 {
		return fmt.Errorf("crf must be 0-63, got %d", c.CRF)
	}
	if (c.Width == 0) != (c.Height == 0) {
		return fmt.Errorf("width and height must both be zero or both be set, got %dx%d", c.Width, c.Height)
	}
	return nil
}

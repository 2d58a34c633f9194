// Package subtitlecast provides a Go library for compositing timed
// subtitle overlays atop background video/image sources.
//
// This file re-exports the internal Reporter interface and associated
// types to allow callers to receive all export events directly.
package subtitlecast

import "github.com/five82/subtitlecast/internal/reporter"

// Reporter defines the interface for progress reporting during export
// and concat jobs. Implement this interface to receive detailed events.
type Reporter = reporter.Reporter

// NullReporter is a no-op reporter that discards all updates.
type NullReporter = reporter.NullReporter

// StageProgress announces a pipeline-stage transition.
type StageProgress = reporter.StageProgress

// ProgressSnapshot carries export-progress information for one job.
type ProgressSnapshot = reporter.ProgressSnapshot

// CompleteSummary carries export-complete information for one job.
type CompleteSummary = reporter.CompleteSummary

// ReporterError carries export-error information for one job.
type ReporterError = reporter.ReporterError

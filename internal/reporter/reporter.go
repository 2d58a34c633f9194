// Package reporter defines progress-reporting sinks for export jobs.
//
// Grounded on the teacher's internal/reporter package: the same
// interface-per-concern shape, a Null/Terminal/Log/Composite family,
// adapted from "encode progress" to "export progress".
package reporter

import "time"

// StageProgress announces a pipeline-stage transition (preparing,
// building graph, rendering, muxing, ...).
type StageProgress struct {
	Stage   string
	Message string
}

// ProgressSnapshot carries export-progress information for one job.
type ProgressSnapshot struct {
	JobID       string
	Percent     float32
	CurrentTime time.Duration
	TotalTime   time.Duration
	ChunkIndex  *int
}

// CompleteSummary carries export-complete information for one job.
type CompleteSummary struct {
	JobID      string
	Filename   string
	FullPath   string
	ChunkIndex *int
	Elapsed    time.Duration
}

// ReporterError carries export-error information for one job.
type ReporterError struct {
	JobID      string
	Message    string
	ChunkIndex *int
}

// Reporter receives progress updates during export and concat jobs.
// Implement this interface to receive detailed events.
type Reporter interface {
	Stage(StageProgress)
	Progress(ProgressSnapshot)
	Complete(CompleteSummary)
	Cancelled(jobID string)
	Error(ReporterError)
	Warning(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Stage(StageProgress)       {}
func (NullReporter) Progress(ProgressSnapshot) {}
func (NullReporter) Complete(CompleteSummary)  {}
func (NullReporter) Cancelled(string)          {}
func (NullReporter) Error(ReporterError)       {}
func (NullReporter) Warning(string)            {}
func (NullReporter) Verbose(string)            {}

package reporter

import (
	"testing"
	"time"
)

// TerminalReporter writes straight to stdout/stderr, so these tests only
// confirm that every event shape can be fed through without panicking;
// the actual rendering is exercised visually when the CLI runs.
func TestTerminalReporterHandlesAllEventsWithoutPanicking(t *testing.T) {
	r := NewTerminalReporterVerbose(true)
	chunk := 2

	r.Stage(StageProgress{Stage: "prepare", Message: "scanning subtitles"})
	r.Progress(ProgressSnapshot{JobID: "job-1", Percent: 10, CurrentTime: time.Second, TotalTime: 10 * time.Second})
	r.Progress(ProgressSnapshot{JobID: "job-1", Percent: 200, ChunkIndex: &chunk})
	r.Complete(CompleteSummary{JobID: "job-1", FullPath: "/out/job-1.mp4", Elapsed: time.Minute, ChunkIndex: &chunk})
	r.Cancelled("job-2")
	r.Error(ReporterError{JobID: "job-3", Message: "encode failed"})
	r.Warning("low disk space")
	r.Verbose("probe returned 3 streams")
}

func TestNewTerminalReporterDefaultsToNonVerbose(t *testing.T) {
	r := NewTerminalReporter()
	if r.verbose {
		t.Error("expected NewTerminalReporter() to default to non-verbose")
	}
}

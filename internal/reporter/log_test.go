package reporter

import (
	"strings"
	"testing"
	"time"
)

func TestLogReporterFormatsLines(t *testing.T) {
	var buf strings.Builder
	r := NewLogReporter(&buf)

	r.Stage(StageProgress{Stage: "prepare", Message: "scanning subtitles"})
	r.Complete(CompleteSummary{JobID: "job-1", FullPath: "/out/job-1.mp4", Elapsed: 2 * time.Second})
	r.Cancelled("job-2")
	r.Error(ReporterError{JobID: "job-3", Message: "encode failed"})
	r.Warning("low disk space")
	r.Verbose("probe returned 3 streams")

	out := buf.String()
	for _, want := range []string{
		"[INFO] [PREPARE] scanning subtitles",
		"[INFO] job job-1 complete: /out/job-1.mp4",
		"[WARN] job job-2 cancelled",
		"[ERROR] job job-3: encode failed",
		"[WARN] low disk space",
		"[DEBUG] probe returned 3 streams",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q, got:\n%s", want, out)
		}
	}
}

func TestLogReporterProgressThrottlesToFivePercentBuckets(t *testing.T) {
	var buf strings.Builder
	r := NewLogReporter(&buf)

	r.Progress(ProgressSnapshot{JobID: "job-1", Percent: 1})
	r.Progress(ProgressSnapshot{JobID: "job-1", Percent: 2}) // same 5%-bucket as above, suppressed
	r.Progress(ProgressSnapshot{JobID: "job-1", Percent: 6}) // next bucket, logged

	lines := strings.Count(buf.String(), "progress:")
	if lines != 2 {
		t.Errorf("expected two progress lines (one per distinct 5%% bucket), got %d:\n%s", lines, buf.String())
	}
}

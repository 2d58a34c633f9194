package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogReporter writes export events to a log file.
// Grounded on internal/reporter/log.go's timestamped-line convention.
type LogReporter struct {
	w                  io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
}

func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{w: w, lastProgressBucket: -1}
}

func (r *LogReporter) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(r.w, "%s [%s] %s\n", timestamp, level, msg)
}

func (r *LogReporter) Stage(update StageProgress) {
	r.log("INFO", "[%s] %s", strings.ToUpper(update.Stage), update.Message)
}

func (r *LogReporter) Progress(p ProgressSnapshot) {
	bucket := int(p.Percent / 5)
	r.mu.Lock()
	if bucket > r.lastProgressBucket && bucket <= 20 {
		r.lastProgressBucket = bucket
		r.mu.Unlock()
		r.log("INFO", "job %s progress: %.0f%% (%s / %s)", p.JobID, p.Percent, p.CurrentTime, p.TotalTime)
	} else {
		r.mu.Unlock()
	}
}

func (r *LogReporter) Complete(c CompleteSummary) {
	r.log("INFO", "job %s complete: %s (%s)", c.JobID, c.FullPath, c.Elapsed)
}

func (r *LogReporter) Cancelled(jobID string) {
	r.log("WARN", "job %s cancelled", jobID)
}

func (r *LogReporter) Error(e ReporterError) {
	r.log("ERROR", "job %s: %s", e.JobID, e.Message)
}

func (r *LogReporter) Warning(message string) {
	r.log("WARN", "%s", message)
}

func (r *LogReporter) Verbose(message string) {
	r.log("DEBUG", "%s", message)
}

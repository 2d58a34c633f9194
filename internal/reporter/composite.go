package reporter

// CompositeReporter fans every call out to a list of Reporters, so a
// single export can drive a terminal reporter and a log reporter
// together.
type CompositeReporter struct {
	reporters []Reporter
}

func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	return &CompositeReporter{reporters: reporters}
}

func (c *CompositeReporter) Stage(u StageProgress) {
	for _, r := range c.reporters {
		r.Stage(u)
	}
}

func (c *CompositeReporter) Progress(p ProgressSnapshot) {
	for _, r := range c.reporters {
		r.Progress(p)
	}
}

func (c *CompositeReporter) Complete(s CompleteSummary) {
	for _, r := range c.reporters {
		r.Complete(s)
	}
}

func (c *CompositeReporter) Cancelled(jobID string) {
	for _, r := range c.reporters {
		r.Cancelled(jobID)
	}
}

func (c *CompositeReporter) Error(e ReporterError) {
	for _, r := range c.reporters {
		r.Error(e)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}

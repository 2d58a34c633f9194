package subtitlecast

import "testing"

func TestNewAppliesOptionsAndValidates(t *testing.T) {
	exporter, err := New(
		WithFPS(24),
		WithFadeMs(150),
		WithOutputSize(1280, 720),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exporter.config.FPS != 24 {
		t.Errorf("FPS = %v, want 24", exporter.config.FPS)
	}
	if exporter.config.FadeMs != 150 {
		t.Errorf("FadeMs = %v, want 150", exporter.config.FadeMs)
	}
	if exporter.config.Width != 1280 || exporter.config.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", exporter.config.Width, exporter.config.Height)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(WithFPS(-1)); err == nil {
		t.Fatal("expected an error for a negative fps")
	}
}

func TestCancelUnknownJobReturnsFalse(t *testing.T) {
	exporter, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if exporter.Cancel("does-not-exist") {
		t.Fatal("expected Cancel to report false for an unknown job")
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault(0, 42); got != 42 {
		t.Errorf("orDefault(0, 42) = %d, want 42", got)
	}
	if got := orDefault(7, 42); got != 7 {
		t.Errorf("orDefault(7, 42) = %d, want 7", got)
	}
}

func TestEventReporterTranslatesWarningToEvent(t *testing.T) {
	var captured Event
	handler := func(e Event) error {
		captured = e
		return nil
	}
	r := newEventReporter(handler)
	r.Warning("disk space low")

	w, ok := captured.(WarningEvent)
	if !ok {
		t.Fatalf("captured event type = %T, want WarningEvent", captured)
	}
	if w.Message != "disk space low" {
		t.Errorf("Message = %q, want %q", w.Message, "disk space low")
	}
	if w.Type() != EventTypeExportWarning {
		t.Errorf("Type() = %q, want %q", w.Type(), EventTypeExportWarning)
	}
}

package supervisor

import "testing"

func TestCancelExportNotFound(t *testing.T) {
	s := New(nil, nil)
	if s.CancelExport("does-not-exist") {
		t.Fatal("expected CancelExport to report not-found for an unregistered job")
	}
}

func TestCancelExportTakesRegisteredJob(t *testing.T) {
	s := New(nil, nil)
	cancelled := false
	s.registry.put("job-1", &job{cancel: func() { cancelled = true }})

	if !s.CancelExport("job-1") {
		t.Fatal("expected CancelExport to find the registered job")
	}
	if !cancelled {
		t.Fatal("expected CancelExport to invoke the job's cancel func")
	}
	if s.CancelExport("job-1") {
		t.Fatal("expected a second CancelExport to report not-found")
	}
}

func TestIsMP4Family(t *testing.T) {
	cases := map[string]bool{
		"out.mp4":  true,
		"out.m4v":  true,
		"out.mov":  true,
		"out.mkv":  false,
		"out.webm": false,
	}
	for path, want := range cases {
		if got := isMP4Family(path); got != want {
			t.Errorf("isMP4Family(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestSendFrameAndFinishStreamingExportAreNoOps(t *testing.T) {
	s := New(nil, nil)
	if err := s.SendFrame("job-1", []byte{1, 2, 3}); err != nil {
		t.Errorf("SendFrame: %v", err)
	}
	if err := s.FinishStreamingExport("job-1"); err != nil {
		t.Errorf("FinishStreamingExport: %v", err)
	}
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Interpreting")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Update("Laying out")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	got := buf.String()
	if !strings.Contains(got, "Interpreting") || !strings.Contains(got, "Laying out") {
		t.Errorf("spinner output %q should contain both messages", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("spinner should clear its line on Stop")
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := newSpinnerTo(ctx, &buf, "Testing with context...")
	s.Start()
	cancel()
	<-s.stopped

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s := newSpinnerTo(ctx, &buf, "Testing with timeout...")
	s.Start()
	<-s.stopped

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	var buf bytes.Buffer
	restore := captureOutput(&buf)
	defer restore()

	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "Testing...")
	s.Start()
	s.StopWithSuccess("Done!")

	s = newSpinnerTo(context.Background(), &bytes.Buffer{}, "Testing...")
	s.Start()
	s.StopWithError("Failed!")

	if !strings.Contains(buf.String(), "Done!") || !strings.Contains(buf.String(), "Failed!") {
		t.Errorf("output = %q", buf.String())
	}
}

package capture_test

import (
	"context"
	"testing"

	"factwatch/internal/capture"
)

type fakeTranscriber struct {
	out     chan string
	started bool
	stopped bool
}

func (f *fakeTranscriber) Start(context.Context) error { f.started = true; return nil }
func (f *fakeTranscriber) Stop() error                 { f.stopped = true; return nil }
func (f *fakeTranscriber) Transcripts() <-chan string  { return f.out }

func TestFollowFeedsBufferUntilClosed(t *testing.T) {
	tr := &fakeTranscriber{out: make(chan string, 3)}
	tr.out <- "vaccines cause"
	tr.out <- "nothing at all"
	close(tr.out)

	buf := capture.NewCaptionBuffer(3)
	if err := capture.Follow(context.Background(), tr, buf); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if !tr.started || !tr.stopped {
		t.Fatalf("expected start and stop, got %+v", tr)
	}
	got, _ := buf.ReadCaptions(context.Background(), 0)
	if got != "vaccines cause nothing at all" {
		t.Fatalf("unexpected buffered text %q", got)
	}
}

func TestFollowStopsOnCancel(t *testing.T) {
	tr := &fakeTranscriber{out: make(chan string)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := capture.Follow(ctx, tr, capture.NewCaptionBuffer(0)); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !tr.stopped {
		t.Fatal("expected Stop on cancel")
	}
}

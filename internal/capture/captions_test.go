package capture_test

import (
	"context"
	"errors"
	"testing"

	"factwatch/internal/capture"
)

func TestCaptionBufferDrainsRecentSegments(t *testing.T) {
	buf := capture.NewCaptionBuffer(3)
	for _, line := range []string{"one", "  two  ", "", "two", "three", "four"} {
		buf.Push(line)
	}
	if buf.Pending() != 4 {
		t.Fatalf("expected blank and repeated lines dropped, pending=%d", buf.Pending())
	}

	got, err := buf.ReadCaptions(context.Background(), 0)
	if err != nil {
		t.Fatalf("ReadCaptions: %v", err)
	}
	if got != "two three four" {
		t.Fatalf("unexpected caption text %q", got)
	}
	if again, _ := buf.ReadCaptions(context.Background(), 0); again != "" {
		t.Fatalf("expected drained buffer, got %q", again)
	}
}

type stubReader struct {
	text string
	err  error
}

func (s stubReader) ReadCaptions(context.Context, float64) (string, error) { return s.text, s.err }

func TestFirstOf(t *testing.T) {
	boom := errors.New("boom")
	got, err := capture.FirstOf(stubReader{err: boom}, nil, stubReader{}, stubReader{text: "live"}).ReadCaptions(context.Background(), 1)
	if err != nil || got != "live" {
		t.Fatalf("FirstOf = %q, %v", got, err)
	}
	_, err = capture.FirstOf(stubReader{err: boom}, stubReader{}).ReadCaptions(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Fatalf("expected first error when no text, got %v", err)
	}
}

package capture

import (
	"context"
	"strings"
	"sync"
)

// DefaultSegments is how many caption segments a read joins.
const DefaultSegments = 3

// CaptionReader returns the caption text on screen at a playback position.
type CaptionReader interface {
	ReadCaptions(ctx context.Context, position float64) (string, error)
}

// CaptionBuffer collects caption lines pushed from outside the process (the
// HTTP API, a transcriber). A read drains the buffer and returns the most
// recent segments in arrival order.
type CaptionBuffer struct {
	mu       sync.Mutex
	lines    []string
	segments int
	limit    int
}

// NewCaptionBuffer returns a buffer that yields up to segments lines per read.
func NewCaptionBuffer(segments int) *CaptionBuffer {
	if segments <= 0 {
		segments = DefaultSegments
	}
	return &CaptionBuffer{segments: segments, limit: segments * 16}
}

// Push appends a caption line. Blank lines and immediate repeats are ignored.
func (b *CaptionBuffer) Push(line string) {
	line = normalizeCaption(line)
	if line == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.lines); n > 0 && b.lines[n-1] == line {
		return
	}
	b.lines = append(b.lines, line)
	if len(b.lines) > b.limit {
		b.lines = append(b.lines[:0], b.lines[len(b.lines)-b.limit:]...)
	}
}

// Pending returns the number of buffered lines.
func (b *CaptionBuffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// ReadCaptions drains the buffer. Position is ignored since pushed lines are
// already live.
func (b *CaptionBuffer) ReadCaptions(_ context.Context, _ float64) (string, error) {
	b.mu.Lock()
	lines := b.lines
	b.lines = nil
	b.mu.Unlock()

	if len(lines) > b.segments {
		lines = lines[len(lines)-b.segments:]
	}
	return strings.Join(lines, " "), nil
}

// FirstOf returns a reader that consults readers in order and yields the first
// non-empty text. Errors are returned only when no reader produced text.
func FirstOf(readers ...CaptionReader) CaptionReader {
	return chainReader(readers)
}

type chainReader []CaptionReader

func (c chainReader) ReadCaptions(ctx context.Context, position float64) (string, error) {
	var firstErr error
	for _, reader := range c {
		if reader == nil {
			continue
		}
		text, err := reader.ReadCaptions(ctx, position)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if text != "" {
			return text, nil
		}
	}
	return "", firstErr
}

func normalizeCaption(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

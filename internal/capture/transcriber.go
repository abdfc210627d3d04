package capture

import (
	"context"
	"fmt"
)

// Transcriber is a speech-to-text capability supplied by the embedding
// application. factwatch ships no engine; implementations push recognized
// phrases on Transcripts until Stop is called.
type Transcriber interface {
	Start(ctx context.Context) error
	Stop() error
	Transcripts() <-chan string
}

// Follow starts t and copies every transcript into buf until ctx is cancelled
// or the transcript channel closes.
func Follow(ctx context.Context, t Transcriber, buf *CaptionBuffer) error {
	if err := t.Start(ctx); err != nil {
		return fmt.Errorf("start transcriber: %w", err)
	}
	defer func() { _ = t.Stop() }()

	transcripts := t.Transcripts()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-transcripts:
			if !ok {
				return nil
			}
			buf.Push(line)
		}
	}
}

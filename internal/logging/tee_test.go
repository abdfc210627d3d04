package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if TeeHandler(nil, nil) != slog.DiscardHandler {
		t.Fatal("expected discard handler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if got := TeeHandler(nil, inner); got != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsChildLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With(slog.String(FieldComponent, "monitor"))

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected tee enabled when any child accepts debug")
	}
	logger.Debug("tick")
	logger.Info("cycle recorded")

	if strings.Contains(infoBuf.String(), "tick") {
		t.Fatalf("info handler received debug record: %s", infoBuf.String())
	}
	if !strings.Contains(debugBuf.String(), "tick") || !strings.Contains(debugBuf.String(), "cycle recorded") {
		t.Fatalf("debug handler missing records: %s", debugBuf.String())
	}
	if !strings.Contains(infoBuf.String(), `"component":"monitor"`) {
		t.Fatalf("expected WithAttrs to propagate: %s", infoBuf.String())
	}
}

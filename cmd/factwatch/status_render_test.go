package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"factwatch/internal/api"
	"factwatch/internal/overlay"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	deps := []api.DependencyStatus{
		{Name: "FFmpeg", Available: true, Command: "ffmpeg"},
		{Name: "FFmpeg", Available: false, Optional: true, Detail: "frame capture disabled"},
		{Name: "FFmpeg", Available: false},
	}
	lines := dependencyLines(deps, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Ready (command: ffmpeg)") {
		t.Fatalf("expected ready detail, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN] frame capture disabled") {
		t.Fatalf("expected warn detail, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR] not available") {
		t.Fatalf("expected error detail, got %q", lines[2])
	}
}

func TestLoopLines(t *testing.T) {
	status := api.DaemonStatus{
		Loop: api.LoopStatus{
			State:      "active",
			IntervalMS: 5000,
			Stats:      api.LoopStats{Dispatched: 4, Recorded: 3, Skipped: 1},
		},
		HistoryLen: 3,
		HistoryCap: 100,
	}
	lines := loopLines(status, false)
	requireContains(t, lines[0], "[OK] active, every 5000ms, captions only")
	requireContains(t, lines[1], "4 dispatched, 3 recorded, 1 skipped, 0 failed, 0 stale")
	requireContains(t, lines[2], "3/100 results")
}

func TestRenderOverlayEntry(t *testing.T) {
	entry := overlay.Entry{
		VideoTime: "01:05",
		Claims: []overlay.ClaimView{{
			Text:        "The moon is made of cheese.",
			Label:       "FALSE (high confidence)",
			Class:       "verification-false",
			Explanation: "Lunar samples are rock.",
			Sources:     []string{"nasa.gov", "esa.int"},
		}},
	}
	var buf bytes.Buffer
	renderOverlayEntry(&buf, entry, true)
	out := buf.String()
	requireContains(t, out, "[01:05]")
	requireContains(t, out, ansiRed+"FALSE (high confidence)"+ansiReset)
	requireContains(t, out, "Sources: nasa.gov, esa.int")
}

func TestRenderResultsOneRowPerClaim(t *testing.T) {
	results := []api.Result{{
		VideoTime: "00:10",
		Claims: []api.Claim{
			{Text: "first", Verdict: "true", Confidence: "high"},
			{Text: "second", Verdict: "partially_true", Confidence: "low"},
		},
	}, {
		VideoTime: "00:20",
		Raw:       "not json",
	}}
	rows := buildResultRows(results)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][1] != "partially true" {
		t.Fatalf("expected humanized verdict, got %q", rows[1][1])
	}
	if rows[2][2] != "unparsed reply" {
		t.Fatalf("expected fallback summary, got %q", rows[2][2])
	}
	requireContains(t, renderResults(results), "second")
}

func TestFormatLogLinePassesThroughText(t *testing.T) {
	if got := formatLogLine("plain text"); got != "plain text" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestFormatLogLineReadsDaemonTimestamp(t *testing.T) {
	got := formatLogLine(`{"ts":"2026-01-02T03:04:05Z","level":"warn","msg":"cycle failed","cycle_id":"c1"}`)
	if strings.Contains(got, "ts=") {
		t.Fatalf("timestamp key leaked into attributes: %q", got)
	}
	if !strings.HasSuffix(got, "WARN  cycle failed cycle_id=c1") {
		t.Fatalf("unexpected line %q", got)
	}
	if len(got) < 9 || got[2] != ':' || got[5] != ':' {
		t.Fatalf("expected leading clock time, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

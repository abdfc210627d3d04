package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"factwatch/internal/api"
	"factwatch/internal/testsupport"
)

const moonSRT = `1
00:00:01,000 --> 00:00:06,000
The moon is made of cheese.
`

func TestSessionLifecycleCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	video := testsupport.WriteFile(t, filepath.Join(env.baseDir, "movie.mp4"), "")
	captions := testsupport.WriteFile(t, filepath.Join(env.baseDir, "movie.srt"), moonSRT)

	out := env.run(t, "attach", video, "--captions", captions, "--at", "0:02")
	requireContains(t, out, "Attached movie.mp4 at 00:02 (paused)")

	out = env.run(t, "status")
	requireContains(t, out, "Paused at 00:02")
	requireContains(t, out, "== Poll Loop ==")

	out = env.run(t, "play")
	requireContains(t, out, "Playing movie.mp4 at 00:02 (playing)")

	waitFor(t, 5*time.Second, func() bool {
		return len(env.daemon.History()) > 0
	})
	env.run(t, "pause")

	out = env.run(t, "history")
	requireContains(t, out, "The moon is made of cheese.")
	requireContains(t, out, "false")

	out = env.run(t, "disputed", "--count", "1")
	requireContains(t, out, "The moon is made of cheese.")

	out = env.run(t, "overlay")
	requireContains(t, out, "[00:0")
	requireContains(t, out, "FALSE (high confidence)")
	requireContains(t, out, "Sources: nasa.gov")

	out = env.run(t, "seek", "1:05")
	requireContains(t, out, "Seeked movie.mp4 at 01:05 (paused)")

	out = env.run(t, "detach")
	requireContains(t, out, "Session detached")
	out = env.run(t, "detach")
	requireContains(t, out, "No session attached")

	out = env.run(t, "clear")
	if !strings.HasPrefix(out, "Cleared ") || strings.HasPrefix(out, "Cleared 0 ") {
		t.Fatalf("expected results to be cleared, got %q", out)
	}
	out = env.run(t, "history")
	requireContains(t, out, "No verification results")
}

func TestPlaybackCommandsWithoutSession(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, args := range [][]string{{"play"}, {"pause"}, {"seek", "10"}} {
		if _, _, err := runCLI(t, args, env.socketPath, env.configPath); err == nil {
			t.Fatalf("%v: expected error without a session", args)
		} else if !strings.Contains(err.Error(), "no playback session attached") {
			t.Fatalf("%v: unexpected error %v", args, err)
		}
	}
}

func TestCaptionOnlySession(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.run(t, "attach")
	requireContains(t, out, "Attached session ")

	out = env.run(t, "caption", "Water boils at 50 degrees.")
	requireContains(t, out, "Queued caption (1 pending)")
}

func TestToggleCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	requireContains(t, env.run(t, "disable"), "Fact checking disabled")
	out := env.run(t, "status")
	requireContains(t, out, "Disabled (run `factwatch enable`)")

	requireContains(t, env.run(t, "toggle"), "Fact checking enabled")
	requireContains(t, env.run(t, "toggle"), "Fact checking disabled")
	requireContains(t, env.run(t, "enable"), "Fact checking enabled")
}

func TestCheckRecordThroughDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	env.verifier.verdict = "partially true"

	out := env.run(t, "check", "Bats are blind.", "--record", "--at", "42", "--json")
	var result api.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode check output: %v (%q)", err, out)
	}
	if result.VideoTime != "00:42" {
		t.Fatalf("expected video time 00:42, got %q", result.VideoTime)
	}
	if len(result.Claims) != 1 || result.Claims[0].Verdict != "partially_true" {
		t.Fatalf("unexpected claims %+v", result.Claims)
	}

	out = env.run(t, "history", "--start", "0:40", "--end", "0:45")
	requireContains(t, out, "Bats are blind.")
	requireContains(t, out, "partially true")

	out = env.run(t, "history", "--start", "1:00")
	requireContains(t, out, "No verification results")
}

func TestCheckRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"check"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "provide text") {
		t.Fatalf("expected missing input error, got %v", err)
	}
}

func TestHistoryRejectsInvertedRange(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"history", "--start", "2:00", "--end", "1:00"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "is after end") {
		t.Fatalf("expected range error, got %v", err)
	}
}

func TestStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.run(t, "status", "--json")
	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.Model != "canned" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.SocketPath != env.socketPath {
		t.Fatalf("expected socket %q, got %q", env.socketPath, status.SocketPath)
	}
}

func TestCommandsWithoutDaemon(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	socket := filepath.Join(base, "missing.sock")
	_, _, err := runCLI(t, []string{"history"}, socket, filepath.Join(base, "absent.toml"))
	if err == nil {
		t.Fatal("expected dial error")
	}
	requireContains(t, err.Error(), "factwatch start")
}

func TestLogsCommandFormatsJSONLines(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := env.daemon.LogPath()
	lines := []string{
		`{"time":"2026-01-02T03:04:05Z","level":"INFO","msg":"session attached","session_id":"abc"}`,
		`{"time":"2026-01-02T03:04:06Z","level":"WARN","msg":"cycle failed","event_type":"verification_failed"}`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out := env.run(t, "logs", "--lines", "5")
	requireContains(t, out, "INFO  session attached session_id=abc")
	requireContains(t, out, "WARN  cycle failed event_type=verification_failed")

	out = env.run(t, "logs", "--level", "warn", "--raw")
	if strings.Contains(out, "session attached") {
		t.Fatalf("expected info line filtered out, got %q", out)
	}
	requireContains(t, out, `"msg":"cycle failed"`)
}

func TestParsePosition(t *testing.T) {
	cases := map[string]float64{
		"":         0,
		"42":       42,
		"1.5":      1.5,
		"1:05":     65,
		"01:00:30": 3630,
	}
	for input, want := range cases {
		got, err := parsePosition(input)
		if err != nil {
			t.Fatalf("parsePosition(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("parsePosition(%q) = %v, want %v", input, got, want)
		}
	}
	for _, bad := range []string{"abc", "-3", "1:75", "1:2:3:4"} {
		if _, err := parsePosition(bad); err == nil {
			t.Fatalf("parsePosition(%q): expected error", bad)
		}
	}
}

package ipc_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"factwatch/internal/daemon"
	"factwatch/internal/factcheck"
	"factwatch/internal/ipc"
	"factwatch/internal/logging"
	"factwatch/internal/testsupport"
)

type echoVerifier struct{}

func (echoVerifier) CheckFact(_ context.Context, text string, image []byte) (factcheck.VerificationResult, error) {
	claim := factcheck.NewClaim(text, "false", "high", "echo", []string{"https://example.test"})
	return factcheck.NewResult([]factcheck.Claim{claim}, 0, text, len(image) > 0), nil
}

func (echoVerifier) Model() string    { return "echo" }
func (echoVerifier) Configured() bool { return true }

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutFrames())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenSettings(t, cfg)
	logger := logging.NewNop()
	d, err := daemon.New(cfg, store, echoVerifier{}, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running || status.Model != "echo" || status.Session != nil {
		t.Fatalf("unexpected status %+v", status)
	}

	if _, err := client.Play(); err == nil || !strings.Contains(err.Error(), "no playback session") {
		t.Fatalf("expected no-session error, got %v", err)
	}

	attached, err := client.Attach(ipc.AttachRequest{Position: 30})
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if attached.Session == nil || attached.Session.VideoTime != "00:30" {
		t.Fatalf("unexpected session %+v", attached.Session)
	}

	captions, err := client.PushCaption([]string{"the earth is flat"})
	if err != nil || captions.Pending != 1 {
		t.Fatalf("PushCaption: %+v %v", captions, err)
	}
	if _, err := client.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var history *ipc.HistoryResponse
	for {
		history, err = client.History(0, 0)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history.Results) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a recorded result")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if history.Results[0].SourceText != "the earth is flat" {
		t.Fatalf("unexpected result %+v", history.Results[0])
	}

	ranged, err := client.History(100, 0)
	if err != nil || len(ranged.Results) != 0 {
		t.Fatalf("expected empty range: %+v %v", ranged, err)
	}

	overlayResp, err := client.Overlay()
	if err != nil || len(overlayResp.Entries) != 1 || overlayResp.Entries[0].VideoTime != "00:30" {
		t.Fatalf("unexpected overlay %+v %v", overlayResp, err)
	}

	disputed, err := client.Disputed(0)
	if err != nil || len(disputed.Claims) != 1 || disputed.Claims[0].Count != 1 {
		t.Fatalf("unexpected disputed %+v %v", disputed, err)
	}

	if _, err := client.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	seek, err := client.Seek(90)
	if err != nil || seek.Session.Position != 90 {
		t.Fatalf("Seek: %+v %v", seek, err)
	}

	off, err := client.SetEnabled(false)
	if err != nil || off.Enabled {
		t.Fatalf("SetEnabled: %+v %v", off, err)
	}
	read, err := client.Enabled()
	if err != nil || read.Enabled {
		t.Fatalf("Enabled: %+v %v", read, err)
	}
	toggled, err := client.Toggle()
	if err != nil || !toggled.Enabled {
		t.Fatalf("Toggle: %+v %v", toggled, err)
	}

	check, err := client.Check(ipc.CheckRequest{Text: "on demand", Timestamp: 61})
	if err != nil || check.Result.VideoTime != "01:01" {
		t.Fatalf("Check: %+v %v", check, err)
	}
	if _, err := client.Check(ipc.CheckRequest{}); err == nil {
		t.Fatal("expected empty check to fail")
	}

	detach, err := client.Detach()
	if err != nil || !detach.Detached {
		t.Fatalf("Detach: %+v %v", detach, err)
	}
	cleared, err := client.ClearHistory()
	if err != nil || cleared.Removed != 1 {
		t.Fatalf("ClearHistory: %+v %v", cleared, err)
	}

	if err := os.WriteFile(d.LogPath(), []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	stopResp, err := client.Stop()
	if err != nil || !stopResp.Stopped {
		t.Fatalf("Stop RPC failed: %+v %v", stopResp, err)
	}
	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

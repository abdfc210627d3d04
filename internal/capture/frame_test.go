package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"factwatch/internal/capture"
	"factwatch/internal/testsupport"
)

func TestFFmpegSamplerReturnsJPEG(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\nprintf '\\377\\330\\377\\331'\n"
	binary := testsupport.StubBinary(t, dir, "ffmpeg", script)

	sampler := capture.NewFFmpegSampler(binary, 5)
	frame, err := sampler.SampleFrame(context.Background(), "/videos/talk.mp4", 12.5)
	if err != nil {
		t.Fatalf("SampleFrame: %v", err)
	}
	if len(frame) != 4 || frame[0] != 0xFF || frame[1] != 0xD8 {
		t.Fatalf("unexpected frame bytes %x", frame)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	for _, want := range []string{"-ss 12.500", "-i /videos/talk.mp4", "-frames:v 1", "-q:v 5", "-c:v mjpeg", "pipe:1"} {
		if !strings.Contains(string(args), want) {
			t.Errorf("expected %q in ffmpeg args %q", want, args)
		}
	}
}

func TestFFmpegSamplerFailures(t *testing.T) {
	dir := t.TempDir()
	failing := testsupport.StubBinary(t, dir, "ffmpeg-fail", "#!/bin/sh\necho 'No such file' >&2\nexit 1\n")
	garbage := testsupport.StubBinary(t, dir, "ffmpeg-garbage", "#!/bin/sh\necho hello\n")

	if _, err := capture.NewFFmpegSampler(failing, 4).SampleFrame(context.Background(), "in.mp4", 1); err == nil || !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
	if _, err := capture.NewFFmpegSampler(garbage, 4).SampleFrame(context.Background(), "in.mp4", 1); err == nil {
		t.Fatal("expected error for non-JPEG output")
	}
	if _, err := capture.NewFFmpegSampler(garbage, 4).SampleFrame(context.Background(), "", 1); !errors.Is(err, capture.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
}

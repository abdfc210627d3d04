package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"factwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Gemini.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithGeminiKey sets the Gemini API key on the test config.
func WithGeminiKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.APIKey = key
	}
}

// WithGeminiBaseURL points the verification client at a test server.
func WithGeminiBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.BaseURL = url
	}
}

// WithPollInterval overrides the monitor period in milliseconds.
func WithPollInterval(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.IntervalMillis = ms
	}
}

// WithoutFrames switches the config to text-only polling.
func WithoutFrames() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.Frames = false
	}
}

// WithStubbedFFmpeg installs a stub ffmpeg that prints a minimal JPEG and
// points the capture config at it.
func WithStubbedFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Capture.FFmpegBinary = StubBinary(b.t, filepath.Join(b.baseDir, "bin"), "ffmpeg", JPEGStubScript)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// JPEGStubScript writes the JPEG start and end markers to stdout.
const JPEGStubScript = "#!/bin/sh\nprintf '\\377\\330\\377\\331'\n"

// StubBinary writes an executable shell script named name under dir and
// returns its path.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

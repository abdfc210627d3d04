package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"--config", "/tmp/fw.toml", "--log-level", "debug"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.configPath != "/tmp/fw.toml" || opts.logLevel != "debug" {
		t.Fatalf("unexpected options %+v", opts)
	}

	if _, err := parseArgs([]string{"extra"}, io.Discard); err == nil {
		t.Fatal("expected error for positional arguments")
	}
	if _, err := parseArgs([]string{"--bogus"}, io.Discard); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	err := run(context.Background(), []string{"--config", path}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected config error, got %v", err)
	}
}

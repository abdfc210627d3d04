package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"factwatch/internal/api"
	"factwatch/internal/config"
	"factwatch/internal/deps"
	"factwatch/internal/ipc"
	"factwatch/internal/preflight"
	"factwatch/internal/settings"
)

// StatusLine is one labelled line of `factwatch status` output.
type StatusLine struct {
	Label    string
	Severity string
	Detail   string
}

// Snapshot is daemon status plus locally computed checks.
type Snapshot struct {
	Status       api.DaemonStatus
	Reachable    bool
	SystemChecks []StatusLine
	Preflight    []preflight.Result
}

// BuildStatusSnapshot asks the daemon for its status. When the daemon is down
// the fields it would have reported come from cfg and the settings database.
// remote adds a live Gemini probe to the preflight checks.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config, remote bool) (*Snapshot, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	snapshot := &Snapshot{}
	if status, ok := remoteStatus(cfg.SocketPath()); ok {
		snapshot.Status = status
		snapshot.Reachable = true
	} else {
		snapshot.Status = offlineStatus(ctx, cfg)
	}
	if len(snapshot.Status.Dependencies) == 0 {
		snapshot.Status.Dependencies = ResolveDependencies(cfg)
	}
	snapshot.Preflight = preflight.RunAll(ctx, cfg, remote)
	snapshot.SystemChecks = BuildSystemChecks(snapshot.Status, snapshot.Preflight)
	return snapshot, nil
}

func remoteStatus(socketPath string) (api.DaemonStatus, bool) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return api.DaemonStatus{}, false
	}
	defer client.Close()
	resp, err := client.Status()
	if err != nil {
		return api.DaemonStatus{}, false
	}
	return *resp, true
}

func offlineStatus(ctx context.Context, cfg *config.Config) api.DaemonStatus {
	return api.DaemonStatus{
		Enabled:        persistedEnabled(ctx, cfg),
		Model:          cfg.Gemini.Model,
		APIKeyPresent:  strings.TrimSpace(cfg.Gemini.APIKey) != "",
		SettingsDBPath: cfg.SettingsDBPath(),
		SocketPath:     cfg.SocketPath(),
		LockFilePath:   cfg.LockPath(),
	}
}

// persistedEnabled reads the flag without creating the database; a missing or
// unreadable store means the default, enabled.
func persistedEnabled(ctx context.Context, cfg *config.Config) bool {
	if _, err := os.Stat(cfg.SettingsDBPath()); err != nil {
		return true
	}
	store, err := settings.Open(cfg.SettingsDBPath())
	if err != nil {
		return true
	}
	defer store.Close()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	enabled, err := store.Enabled(ctx)
	return err != nil || enabled
}

// ResolveDependencies reports external tool availability for status output.
func ResolveDependencies(cfg *config.Config) []api.DependencyStatus {
	if cfg == nil {
		return nil
	}
	ffmpeg := deps.ResolveFFmpeg(cfg.Capture.FFmpegBinary, cfg.Capture.Frames)
	return []api.DependencyStatus{api.FromDependency(ffmpeg)}
}

// BuildSystemChecks turns runtime state and preflight results into status lines.
func BuildSystemChecks(status api.DaemonStatus, checks []preflight.Result) []StatusLine {
	lines := make([]StatusLine, 0, 3+len(checks))
	add := func(label, severity, detail string) {
		lines = append(lines, StatusLine{Label: label, Severity: severity, Detail: detail})
	}

	if status.Running {
		add("Daemon", "ok", fmt.Sprintf("Running (pid %d)", status.PID))
	} else {
		add("Daemon", "warn", "Not running (run `factwatch start`)")
	}
	if status.Enabled {
		add("Fact checking", "ok", "Enabled")
	} else {
		add("Fact checking", "warn", "Disabled (run `factwatch enable`)")
	}
	switch session := status.Session; {
	case session == nil:
		add("Session", "info", "Nothing attached")
	case session.Playing:
		add("Session", "ok", "Playing at "+session.VideoTime)
	default:
		add("Session", "info", "Paused at "+session.VideoTime)
	}
	for _, check := range checks {
		severity := "ok"
		if !check.Passed {
			severity = "error"
		}
		add(check.Name, severity, check.Detail)
	}
	return lines
}

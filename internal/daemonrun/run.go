// Package daemonrun wires the factwatch daemon process: logger, pid file,
// settings store, verification client, daemon and IPC server.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"factwatch/internal/config"
	"factwatch/internal/daemon"
	"factwatch/internal/ipc"
	"factwatch/internal/logging"
	"factwatch/internal/preflight"
	"factwatch/internal/services/gemini"
	"factwatch/internal/settings"
)

// PIDFileName is written to the log directory while the daemon runs.
const PIDFileName = "factwatch.pid"

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the factwatch daemon and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	runCfg := *cfg
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		runCfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(&runCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String("run_id", uuid.NewString()))

	pidPath := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := settings.Open(cfg.SettingsDBPath())
	if err != nil {
		logging.ErrorWithContext(logger, "open settings store failed", "settings_open_failed",
			logging.Error(err),
			logging.String("path", cfg.SettingsDBPath()),
			logging.String(logging.FieldErrorHint, "check permissions on paths.state_dir"),
		)
		return err
	}

	verifier := gemini.FromConfig(cfg)
	d, err := daemon.New(cfg, store, verifier, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	logPreflight(signalCtx, logger, cfg)

	if err := d.Start(signalCtx); err != nil {
		logging.WarnWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check for another running factwatchd and the api bind address"),
			logging.String(logging.FieldImpact, "no sessions can be attached until the daemon starts"),
		)
	}

	<-signalCtx.Done()
	logger.Info("factwatch daemon shutting down")
	return nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(ctx, cfg, false)
	for _, result := range results {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail))
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run factwatch status --check for details"),
			logging.String(logging.FieldImpact, "poll cycles may fail"),
		)
	}
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Int("checks", len(results)),
		logging.Int("failed", len(preflight.Failed(results))),
		logging.Bool("gemini_key_present", strings.TrimSpace(cfg.Gemini.APIKey) != ""),
		logging.Bool("frames", cfg.Capture.Frames),
	)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

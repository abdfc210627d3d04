package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"factwatch/internal/config"
	"factwatch/internal/daemonrun"
	"factwatch/internal/ipc"
)

// ErrDaemonNotRunning indicates nothing is listening on the daemon socket.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StopResult describes how the daemon went away.
type StopResult struct {
	StopAcknowledged bool
	ForcedKill       bool
	PID              int
}

// StopAndTerminate asks the runtime to stop (detaching any session), sends the
// process SIGTERM, and falls back to SIGKILL when the socket is still live
// after grace.
func StopAndTerminate(cfg *config.Config, grace time.Duration) (StopResult, error) {
	socketPath := cfg.SocketPath()
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if unreachable(err) {
			return StopResult{}, ErrDaemonNotRunning
		}
		return StopResult{}, err
	}
	var result StopResult
	if status, err := client.Status(); err == nil {
		result.PID = status.PID
	}
	resp, err := client.Stop()
	_ = client.Close()
	if err != nil {
		return result, err
	}
	result.StopAcknowledged = resp.Stopped

	if result.PID > 0 && result.PID != os.Getpid() {
		if proc, err := os.FindProcess(result.PID); err == nil {
			_ = proc.Signal(syscall.SIGTERM)
		}
	}
	waitErr := pollUntil(grace, func() (bool, error) {
		c, err := ipc.Dial(socketPath)
		if err != nil {
			return unreachable(err), err
		}
		_ = c.Close()
		return false, nil
	})
	if waitErr == nil {
		return result, nil
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, daemonrun.PIDFileName)
	pid, err := ForceKillProcess(pidPath, cfg.LockPath(), result.PID)
	if err != nil {
		return result, fmt.Errorf("daemon ignored SIGTERM and could not be killed: %w", err)
	}
	_ = os.Remove(socketPath)
	result.ForcedKill = true
	result.PID = pid
	return result, nil
}

// ForceKillProcess SIGKILLs the pid recorded in pidPath (or fallbackPID) and
// removes the pid and lock files it leaves behind.
func ForceKillProcess(pidPath, lockPath string, fallbackPID int) (int, error) {
	pid, err := readPID(pidPath)
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		pid = fallbackPID
	}
	switch {
	case pid <= 0:
		return 0, fmt.Errorf("no daemon pid recorded in %s", pidPath)
	case pid == os.Getpid():
		return 0, fmt.Errorf("refusing to kill this process (pid %d)", pid)
	}
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		return 0, fmt.Errorf("kill pid %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return pid, fmt.Errorf("remove pid file: %w", err)
	}
	if lockPath != "" {
		_ = os.Remove(lockPath)
	}
	return pid, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid < 0 {
		return 0, nil
	}
	return pid, nil
}

// ProcessInfo reports whether the daemon socket answers and the daemon's pid.
func ProcessInfo(socketPath string) (bool, int, error) {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if unreachable(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	defer client.Close()
	status, err := client.Status()
	if err != nil {
		return true, 0, err
	}
	return true, status.PID, nil
}

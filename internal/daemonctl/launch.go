// Package daemonctl launches, stops and inspects the factwatch daemon process
// on behalf of the CLI.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"factwatch/internal/ipc"
)

const pollEvery = 150 * time.Millisecond

// LaunchOptions are forwarded to the `factwatch run` child process.
type LaunchOptions struct {
	ConfigPath string
	LogLevel   string
}

func (o LaunchOptions) args() []string {
	args := []string{"run"}
	if path := strings.TrimSpace(o.ConfigPath); path != "" {
		args = append(args, "--config", path)
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		args = append(args, "--log-level", level)
	}
	return args
}

type StartState string

const (
	StartStateStarted        StartState = "started"
	StartStateAlreadyRunning StartState = "already_running"
	StartStateRequested      StartState = "start_requested"
)

// StartResult reports what EnsureStarted had to do.
type StartResult struct {
	State    StartState
	Launched bool
	Message  string
}

// Launch starts a detached daemon in its own session so it outlives the CLI.
func Launch(executable string, opts LaunchOptions) error {
	if strings.TrimSpace(executable) == "" {
		return errors.New("launch daemon: no executable path")
	}
	child := exec.Command(executable, opts.args()...)
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := child.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return child.Process.Release()
}

// WaitForClient dials socketPath until it answers or timeout elapses.
func WaitForClient(socketPath string, timeout time.Duration) (*ipc.Client, error) {
	var client *ipc.Client
	err := pollUntil(timeout, func() (bool, error) {
		c, err := ipc.Dial(socketPath)
		if err != nil {
			return false, err
		}
		client = c
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("daemon did not come up: %w", err)
	}
	return client, nil
}

// EnsureStarted launches the daemon when its socket is absent, then asks the
// runtime to start if it reports itself stopped.
func EnsureStarted(socketPath, executable string, opts LaunchOptions, timeout time.Duration) (StartResult, error) {
	var result StartResult
	client, err := ipc.Dial(socketPath)
	if err != nil {
		if err := Launch(executable, opts); err != nil {
			return result, err
		}
		if client, err = WaitForClient(socketPath, timeout); err != nil {
			return result, err
		}
		result.Launched = true
	}
	defer client.Close()

	if status, err := client.Status(); err == nil && status.Running {
		result.State = StartStateAlreadyRunning
		if result.Launched {
			result.State = StartStateStarted
		}
		return result, nil
	}

	resp, err := client.Start()
	if err != nil {
		return result, err
	}
	result.Message = strings.TrimSpace(resp.Message)
	result.State = StartStateRequested
	if resp.Started {
		result.State = StartStateStarted
	}
	return result, nil
}

// pollUntil calls check every pollEvery until it reports done. The last check
// error is returned on timeout.
func pollUntil(timeout time.Duration, check func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		done, err := check()
		if done {
			return nil
		}
		if time.Now().After(deadline) {
			if err == nil {
				err = errors.New("timed out")
			}
			return err
		}
		time.Sleep(pollEvery)
	}
}

func unreachable(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

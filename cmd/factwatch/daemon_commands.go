package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"factwatch/internal/daemonctl"
)

const (
	startWait = 10 * time.Second
	stopGrace = 5 * time.Second
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newStartCommand(ctx),
		newStopCommand(ctx),
		newStatusCommand(ctx),
	}
}

func newStartCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Launch the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			opts := daemonctl.LaunchOptions{ConfigPath: ctx.configPath(), LogLevel: ctx.logLevel}
			result, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, opts, startWait)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Launched {
				fmt.Fprintln(out, "Daemon not running, launching...")
			}
			switch {
			case result.State == daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(out, "Daemon already running")
			case result.State == daemonctl.StartStateStarted:
				fmt.Fprintln(out, "Daemon started")
			case result.Message != "":
				fmt.Fprintln(out, result.Message)
			default:
				fmt.Fprintln(out, "Start request sent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ctx.logLevel, "log-level", "", "Daemon log level (debug, info, warn, error)")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Detach the session and terminate the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(cfg, stopGrace)
			switch {
			case errors.Is(err, daemonctl.ErrDaemonNotRunning):
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			case err != nil:
				return err
			}
			if result.StopAcknowledged {
				fmt.Fprintln(out, "Detaching session and stopping overlay...")
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon ignored SIGTERM; killed pid %d\n", result.PID)
			}
			fmt.Fprintln(out, "Daemon stopped")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var probeGemini bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session and poll loop status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snapshot, err := daemonctl.BuildStatusSnapshot(cmd.Context(), cfg, probeGemini)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, snapshot.Status)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			system := make([]string, 0, len(snapshot.SystemChecks))
			for _, line := range snapshot.SystemChecks {
				system = append(system, renderStatusLine(line.Label, statusKindFromSeverity(line.Severity), line.Detail, colorize))
			}
			printSection(out, "System Status", system, colorize)
			fmt.Fprintln(out)
			printSection(out, "Dependencies", dependencyLines(snapshot.Status.Dependencies, colorize), colorize)
			if !snapshot.Reachable {
				return nil
			}

			loop := loopLines(snapshot.Status, colorize)
			if addr := strings.TrimSpace(snapshot.Status.APIAddress); addr != "" {
				loop = append(loop, renderStatusLine("Overlay page", statusInfo, "http://"+addr+"/overlay", colorize))
			}
			fmt.Fprintln(out)
			printSection(out, "Poll Loop", loop, colorize)
			return nil
		},
	}
	cmd.Flags().BoolVar(&probeGemini, "check", false, "Send a health request to the Gemini endpoint")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status as JSON")
	return cmd
}

func printSection(out io.Writer, title string, lines []string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}

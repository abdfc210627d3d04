package main

import (
	"github.com/spf13/cobra"
)

const (
	groupDaemon  = "daemon"
	groupSession = "session"
	groupResults = "results"
	groupSetup   = "setup"
)

func newRootCommand() *cobra.Command {
	var socketFlag string
	var configFlag string

	ctx := newCommandContext(&socketFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:   "factwatch",
		Short: "Live fact-check overlay for video captions",
		Long: "factwatch samples captions (and optionally frames) from the attached video,\n" +
			"asks Gemini to verify the claims it hears, and pushes verdicts to a browser overlay.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if annotated(cmd, skipConfigLoad) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.AddGroup(
		&cobra.Group{ID: groupDaemon, Title: "Daemon:"},
		&cobra.Group{ID: groupSession, Title: "Playback session:"},
		&cobra.Group{ID: groupResults, Title: "Verification results:"},
		&cobra.Group{ID: groupSetup, Title: "Setup and diagnostics:"},
	)

	rootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "Path to the factwatch daemon socket")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	addGrouped(rootCmd, groupDaemon, append(newDaemonCommands(ctx), newDaemonRunCommand(ctx))...)
	addGrouped(rootCmd, groupSession, append(newSessionCommands(ctx), newToggleCommands(ctx)...)...)
	addGrouped(rootCmd, groupResults, append(newHistoryCommands(ctx), newCheckCommand(ctx), newOverlayCommand(ctx))...)
	addGrouped(rootCmd, groupSetup, newLogsCommand(ctx), newConfigCommand(ctx))

	return rootCmd
}

func addGrouped(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.GroupID = group
		root.AddCommand(cmd)
	}
}

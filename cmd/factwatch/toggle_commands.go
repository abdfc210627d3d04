package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"factwatch/internal/ipc"
)

func newToggleCommands(ctx *commandContext) []*cobra.Command {
	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable fact checking",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetEnabled(true)
				if err != nil {
					return err
				}
				printEnabled(cmd.OutOrStdout(), resp.Enabled)
				return nil
			})
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable fact checking (playback continues)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetEnabled(false)
				if err != nil {
					return err
				}
				printEnabled(cmd.OutOrStdout(), resp.Enabled)
				return nil
			})
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle",
		Short: "Flip fact checking on or off",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Toggle()
				if err != nil {
					return err
				}
				printEnabled(cmd.OutOrStdout(), resp.Enabled)
				return nil
			})
		},
	}

	return []*cobra.Command{enableCmd, disableCmd, toggleCmd}
}

func printEnabled(out io.Writer, enabled bool) {
	if enabled {
		fmt.Fprintln(out, "Fact checking enabled")
		return
	}
	fmt.Fprintln(out, "Fact checking disabled")
}

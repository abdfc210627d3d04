package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"factwatch/internal/ipc"
)

func newOverlayCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Print the overlay panel in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Overlay()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Entries)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "Overlay is empty")
					return nil
				}
				colorize := shouldColorize(stdout)
				for i, entry := range resp.Entries {
					if i > 0 {
						fmt.Fprintln(stdout)
					}
					renderOverlayEntry(stdout, entry, colorize)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output panel entries as JSON")
	return cmd
}

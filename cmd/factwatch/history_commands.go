package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"factwatch/internal/api"
	"factwatch/internal/ipc"
)

func newHistoryCommands(ctx *commandContext) []*cobra.Command {
	var startAt, endAt string
	var historyJSON bool
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List verification results by playback time",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parsePosition(startAt)
			if err != nil {
				return err
			}
			end, err := parsePosition(endAt)
			if err != nil {
				return err
			}
			if end > 0 && start > end {
				return fmt.Errorf("start %s is after end %s", startAt, endAt)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(start, end)
				if err != nil {
					return err
				}
				if historyJSON {
					return writeJSON(cmd, resp.Results)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Results) == 0 {
					fmt.Fprintln(stdout, "No verification results")
					return nil
				}
				fmt.Fprint(stdout, renderResults(api.SortResultsByTimestamp(resp.Results)))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
	historyCmd.Flags().StringVar(&startAt, "start", "", "Earliest playback time (MM:SS or seconds)")
	historyCmd.Flags().StringVar(&endAt, "end", "", "Latest playback time (MM:SS or seconds)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output results as JSON")

	var count int
	var disputedJSON bool
	disputedCmd := &cobra.Command{
		Use:   "disputed",
		Short: "Show the most frequent false or partially true claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Disputed(count)
				if err != nil {
					return err
				}
				if disputedJSON {
					return writeJSON(cmd, resp.Claims)
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Claims) == 0 {
					fmt.Fprintln(stdout, "No disputed claims")
					return nil
				}
				fmt.Fprint(stdout, renderDisputed(resp.Claims))
				fmt.Fprintln(stdout)
				return nil
			})
		},
	}
	disputedCmd.Flags().IntVarP(&count, "count", "n", 5, "Number of claims to show")
	disputedCmd.Flags().BoolVar(&disputedJSON, "json", false, "Output claims as JSON")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear verification history and the overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ClearHistory()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d result(s)\n", resp.Removed)
				return nil
			})
		},
	}

	return []*cobra.Command{historyCmd, disputedCmd, clearCmd}
}

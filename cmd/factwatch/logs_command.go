package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"factwatch/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var raw bool
	var lines int
	var level, eventType, sessionID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			initialLimit := max(lines, 0)
			initialOffset := int64(-1)
			if initialLimit == 0 {
				initialOffset = 0
			}

			return ctx.withClient(func(client *ipc.Client) error {
				runCtx := cmd.Context()
				offset := initialOffset
				limit := initialLimit
				printed := false

				for {
					resp, err := client.LogTail(ipc.LogTailRequest{
						Offset:     offset,
						Limit:      limit,
						Follow:     follow,
						WaitMillis: 1000,
						Level:      level,
						EventType:  eventType,
						SessionID:  sessionID,
					})
					if err != nil {
						return fmt.Errorf("tail logs: %w", err)
					}
					if resp == nil {
						return errors.New("log tail response missing")
					}
					for _, line := range resp.Lines {
						if raw {
							fmt.Fprintln(cmd.OutOrStdout(), line)
						} else {
							fmt.Fprintln(cmd.OutOrStdout(), formatLogLine(line))
						}
						printed = true
					}
					offset = resp.Offset
					limit = 0
					if !follow {
						if !printed {
							fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
						}
						return nil
					}
					select {
					case <-runCtx.Done():
						return nil
					default:
					}
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON lines as written")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&eventType, "event", "", "Only lines with this event_type")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only lines for this session ID")
	return cmd
}

// formatLogLine renders a JSON log record as "15:04:05 LEVEL message k=v".
// The daemon writes its timestamp as "ts"; plain slog output uses "time".
// Lines that are not JSON objects pass through unchanged.
func formatLogLine(line string) string {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return line
	}
	stamp := ""
	for _, key := range []string{"ts", "time"} {
		value, ok := record[key].(string)
		if !ok {
			continue
		}
		if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil && stamp == "" {
			stamp = parsed.Local().Format("15:04:05")
		}
		delete(record, key)
	}
	levelText, _ := record["level"].(string)
	message, _ := record["msg"].(string)
	delete(record, "level")
	delete(record, "msg")

	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	if stamp != "" {
		b.WriteString(stamp)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", strings.ToUpper(levelText), message)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, record[key])
	}
	return b.String()
}

package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"factwatch/internal/api"
	"factwatch/internal/ipc"
)

func newSessionCommands(ctx *commandContext) []*cobra.Command {
	var captions string
	var startAt string
	var play bool
	attachCmd := &cobra.Command{
		Use:   "attach [video]",
		Short: "Attach a video and/or SRT captions to the daemon",
		Long: "Attach a video and/or SRT captions to the daemon. With neither, the session\n" +
			"only checks captions pushed with `factwatch caption`.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parsePosition(startAt)
			if err != nil {
				return err
			}
			req := ipc.AttachRequest{Position: position, Play: play}
			if len(args) == 1 {
				video, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve video path: %w", err)
				}
				req.Video = video
			}
			if strings.TrimSpace(captions) != "" {
				abs, err := filepath.Abs(captions)
				if err != nil {
					return fmt.Errorf("resolve captions path: %w", err)
				}
				req.Captions = abs
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Attach(req)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), "Attached", resp.Session)
				return nil
			})
		},
	}
	attachCmd.Flags().StringVar(&captions, "captions", "", "SRT caption file read at the playhead")
	attachCmd.Flags().StringVar(&startAt, "at", "", "Start position (MM:SS, HH:MM:SS or seconds)")
	attachCmd.Flags().BoolVar(&play, "play", false, "Start playing immediately")

	detachCmd := &cobra.Command{
		Use:   "detach",
		Short: "Detach the current video and clear the overlay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Detach()
				if err != nil {
					return err
				}
				if !resp.Detached {
					fmt.Fprintln(cmd.OutOrStdout(), "No session attached")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session detached")
				return nil
			})
		},
	}

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Resume playback and the poll loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Play()
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), "Playing", resp.Session)
				return nil
			})
		},
	}

	pauseCmd := &cobra.Command{
		Use:   "pause",
		Short: "Pause playback and the poll loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Pause()
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), "Paused", resp.Session)
				return nil
			})
		},
	}

	seekCmd := &cobra.Command{
		Use:   "seek <position>",
		Short: "Move the playhead (MM:SS, HH:MM:SS or seconds)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Seek(position)
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), "Seeked", resp.Session)
				return nil
			})
		},
	}

	captionCmd := &cobra.Command{
		Use:   "caption <line>...",
		Short: "Push caption lines for the next poll cycle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PushCaption(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued caption (%d pending)\n", resp.Pending)
				return nil
			})
		},
	}

	return []*cobra.Command{attachCmd, detachCmd, playCmd, pauseCmd, seekCmd, captionCmd}
}

func printSession(out io.Writer, verb string, session *api.Session) {
	if session == nil {
		fmt.Fprintln(out, "No session attached")
		return
	}
	state := "paused"
	if session.Playing {
		state = "playing"
	}
	name := "session " + session.ID
	switch {
	case session.Video != "":
		name = filepath.Base(session.Video)
	case session.Captions != "":
		name = filepath.Base(session.Captions)
	}
	fmt.Fprintf(out, "%s %s at %s (%s)\n", verb, name, session.VideoTime, state)
}

// parsePosition accepts plain seconds or colon-separated clock notation.
func parsePosition(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if !strings.Contains(value, ":") {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("invalid position %q", value)
		}
		return seconds, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid position %q", value)
	}
	var total float64
	for i, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", value)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("invalid position %q: minutes and seconds must be below 60", value)
		}
		total = total*60 + n
	}
	return total, nil
}

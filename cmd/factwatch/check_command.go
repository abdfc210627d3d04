package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"factwatch/internal/api"
	"factwatch/internal/ipc"
	"factwatch/internal/services/gemini"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var imagePath string
	var at string
	var record bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Fact-check a statement (and optional frame) once",
		Long: "Fact-check a statement directly against Gemini. With --record the check runs\n" +
			"through the daemon and the result lands in history and on the overlay.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 1 {
				text = strings.TrimSpace(args[0])
			}
			var image []byte
			if strings.TrimSpace(imagePath) != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				image = data
			}
			if text == "" && len(image) == 0 {
				return fmt.Errorf("provide text to check or --image")
			}
			timestamp, err := parsePosition(at)
			if err != nil {
				return err
			}

			var result api.Result
			if record {
				req := ipc.CheckRequest{Text: text, Timestamp: timestamp, Record: true}
				if len(image) > 0 {
					req.Image = base64.StdEncoding.EncodeToString(image)
				}
				if err := ctx.withClient(func(client *ipc.Client) error {
					resp, err := client.Check(req)
					if err != nil {
						return err
					}
					result = resp.Result
					return nil
				}); err != nil {
					return err
				}
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				raw, err := gemini.FromConfig(cfg).CheckFact(cmd.Context(), text, image)
				if err != nil {
					return err
				}
				raw.Timestamp = timestamp
				result = api.FromResult(raw)
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			printCheckResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "JPEG frame to send alongside the text")
	cmd.Flags().StringVar(&at, "at", "", "Playback time to stamp on the result (MM:SS or seconds)")
	cmd.Flags().BoolVar(&record, "record", false, "Check through the daemon and record the result")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the result as JSON")
	return cmd
}

func printCheckResult(out io.Writer, result api.Result) {
	if len(result.Claims) == 0 {
		if result.Raw != "" {
			fmt.Fprintln(out, "Model reply could not be parsed:")
			fmt.Fprintln(out, result.Raw)
			return
		}
		fmt.Fprintln(out, "No checkable claims found")
		return
	}
	fmt.Fprintf(out, "%s: %s\n", result.VideoTime, api.VerdictSummary(result))
	fmt.Fprint(out, renderResults([]api.Result{result}))
	fmt.Fprintln(out)
	for i, claim := range result.Claims {
		if claim.Explanation == "" && len(claim.Sources) == 0 {
			continue
		}
		fmt.Fprintf(out, "%d. %s\n", i+1, claim.Explanation)
		for _, src := range claim.Sources {
			fmt.Fprintf(out, "   - %s\n", src)
		}
	}
}

package main

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"factwatch/internal/api"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// claimColumnWidth wraps long claims and explanations inside table cells.
const claimColumnWidth = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         claimColumnWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// buildResultRows flattens results into one row per claim.
func buildResultRows(results []api.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		if len(result.Claims) == 0 {
			rows = append(rows, []string{result.VideoTime, "-", api.VerdictSummary(result), "-"})
			continue
		}
		for _, claim := range result.Claims {
			rows = append(rows, []string{
				result.VideoTime,
				verdictText(claim.Verdict),
				claim.Text,
				claim.Confidence,
			})
		}
	}
	return rows
}

func renderResults(results []api.Result) string {
	return renderTable(
		[]string{"Time", "Verdict", "Claim", "Confidence"},
		buildResultRows(results),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderDisputed(claims []api.DisputedClaim) string {
	rows := make([][]string, 0, len(claims))
	for i, group := range claims {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			group.Claim.Text,
			verdictText(group.Claim.Verdict),
			strconv.Itoa(group.Count),
		})
	}
	return renderTable(
		[]string{"#", "Claim", "Verdict", "Seen"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	)
}

func verdictText(verdict string) string {
	return strings.ReplaceAll(strings.TrimSpace(verdict), "_", " ")
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

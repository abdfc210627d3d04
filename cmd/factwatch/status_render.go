package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"factwatch/internal/api"
	"factwatch/internal/overlay"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func statusKindFromSeverity(severity string) statusKind {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "ok":
		return statusOK
	case "warn", "warning":
		return statusWarn
	case "error":
		return statusError
	default:
		return statusInfo
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// classColor mirrors the overlay's verdict classes on a terminal.
func classColor(class string) string {
	switch class {
	case "verification-true":
		return ansiGreen
	case "verification-false":
		return ansiRed
	case "verification-partial":
		return ansiYellow
	default:
		return ansiGray
	}
}

func dependencyLines(deps []api.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps))
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	return lines
}

func loopLines(status api.DaemonStatus, colorize bool) []string {
	loop := status.Loop
	kind := statusInfo
	if loop.State == "active" {
		kind = statusOK
	}
	mode := "captions + frames"
	if !loop.Frames {
		mode = "captions only"
	}
	stats := loop.Stats
	return []string{
		renderStatusLine("Poll loop", kind, fmt.Sprintf("%s, every %dms, %s", loop.State, loop.IntervalMS, mode), colorize),
		renderStatusLine("Cycles", statusInfo, fmt.Sprintf("%d dispatched, %d recorded, %d skipped, %d failed, %d stale",
			stats.Dispatched, stats.Recorded, stats.Skipped, stats.Failed, stats.Stale), colorize),
		renderStatusLine("History", statusInfo, fmt.Sprintf("%d/%d results", status.HistoryLen, status.HistoryCap), colorize),
		renderStatusLine("Overlay", statusInfo, fmt.Sprintf("%d entries, %d viewers", status.OverlayEntries, status.OverlayClients), colorize),
	}
}

// renderOverlayEntry prints one panel entry the way the browser overlay lays
// it out: timestamp, then each claim with its verdict and explanation.
func renderOverlayEntry(w io.Writer, entry overlay.Entry, colorize bool) {
	header := "[" + entry.VideoTime + "]"
	if colorize {
		header = ansiBlue + header + ansiReset
	}
	fmt.Fprintln(w, header)
	for _, claim := range entry.Claims {
		label := claim.Label
		if colorize {
			label = classColor(claim.Class) + label + ansiReset
		}
		fmt.Fprintf(w, "  %s\n    %s\n", claim.Text, label)
		if claim.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", claim.Explanation)
		}
		if len(claim.Sources) > 0 {
			fmt.Fprintf(w, "    Sources: %s\n", strings.Join(claim.Sources, ", "))
		}
	}
}

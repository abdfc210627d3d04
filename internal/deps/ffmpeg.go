package deps

import (
	"strings"
)

const defaultFFmpeg = "ffmpeg"

// ResolveFFmpeg reports the ffmpeg binary used for frame capture. An empty
// configured value falls back to "ffmpeg" on PATH; disabled capture makes the
// dependency optional.
func ResolveFFmpeg(configured string, framesEnabled bool) Status {
	binary := strings.TrimSpace(configured)
	if binary == "" {
		binary = defaultFFmpeg
	}
	status := lookup(Status{
		Name:        "FFmpeg",
		Description: "Grabs still frames for visual fact checks",
		Optional:    !framesEnabled,
	}, binary)
	if !status.Available && !framesEnabled {
		status.Detail += " (frame capture disabled)"
	}
	return status
}

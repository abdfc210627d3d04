package logs

import (
	"encoding/json"
	"strings"
)

// Filter selects JSON log lines. The zero Filter matches every line.
type Filter struct {
	// Level is the minimum level: debug, info, warn or error.
	Level     string
	EventType string
	SessionID string
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Level) == "" && strings.TrimSpace(f.EventType) == "" && strings.TrimSpace(f.SessionID) == ""
}

type logLine struct {
	Level     string `json:"level"`
	EventType string `json:"event_type"`
	SessionID string `json:"session_id"`
}

// Match reports whether line passes the filter. Lines that are not JSON only
// pass an empty filter.
func (f Filter) Match(line string) bool {
	if f.Empty() {
		return true
	}
	var parsed logLine
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		return false
	}
	if floor := levelRank(f.Level); floor > 0 && levelRank(parsed.Level) < floor {
		return false
	}
	if want := strings.TrimSpace(f.EventType); want != "" && !strings.EqualFold(parsed.EventType, want) {
		return false
	}
	if want := strings.TrimSpace(f.SessionID); want != "" && parsed.SessionID != want {
		return false
	}
	return true
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 1
	case "info":
		return 2
	case "warn", "warning":
		return 3
	case "error":
		return 4
	default:
		return 0
	}
}

package ipc

import (
	"factwatch/internal/api"
	"factwatch/internal/overlay"
)

// StartRequest starts the daemon runtime (lock, overlay hub, HTTP API).
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon runtime.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse is the daemon status DTO.
type StatusResponse = api.DaemonStatus

// AttachRequest attaches a video and optional caption file.
type AttachRequest = api.AttachRequest

// SessionRequest targets the attached session (play, pause).
type SessionRequest struct{}

// SeekRequest moves the playhead.
type SeekRequest = api.SeekRequest

// SessionResponse carries the session after a playback command.
type SessionResponse = api.SessionResponse

// DetachRequest detaches the current session.
type DetachRequest struct{}

// DetachResponse reports whether a session was attached.
type DetachResponse struct {
	Detached bool `json:"detached"`
}

// CaptionRequest pushes caption lines.
type CaptionRequest = api.CaptionRequest

// CaptionResponse reports pending caption lines.
type CaptionResponse = api.CaptionResponse

// EnabledRequest sets the enabled flag. A nil Enabled reads it.
type EnabledRequest = api.EnabledRequest

// ToggleRequest flips the enabled flag.
type ToggleRequest struct{}

// EnabledResponse reports the enabled flag.
type EnabledResponse = api.EnabledResponse

// HistoryRequest filters history by playback time. Zero Start and End return
// everything.
type HistoryRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// HistoryResponse lists results, newest first.
type HistoryResponse = api.HistoryResponse

// DisputedRequest asks for the most frequent disputed claims.
type DisputedRequest struct {
	Count int `json:"count"`
}

// DisputedResponse lists disputed claim groups.
type DisputedResponse = api.DisputedResponse

// ClearRequest clears history and the overlay.
type ClearRequest struct{}

// ClearResponse reports how many results were removed.
type ClearResponse = api.ClearResponse

// CheckRequest runs an on-demand check.
type CheckRequest = api.CheckRequest

// CheckResponse carries an on-demand result.
type CheckResponse = api.CheckResponse

// OverlayRequest fetches the overlay panel contents.
type OverlayRequest struct{}

// OverlayResponse lists panel entries, oldest first.
type OverlayResponse struct {
	Entries []overlay.Entry `json:"entries"`
}

// LogTailRequest reads the daemon log.
type LogTailRequest struct {
	Offset     int64  `json:"offset"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
	Level      string `json:"level,omitempty"`
	EventType  string `json:"event_type,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

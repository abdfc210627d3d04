package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Claim describes one checked statement.
type Claim struct {
	Text         string   `json:"claim"`
	Verification string   `json:"verification"`
	Verdict      string   `json:"verdict"`
	Confidence   string   `json:"confidence"`
	Explanation  string   `json:"explanation"`
	Sources      []string `json:"sources"`
}

// Result describes one verification result.
type Result struct {
	ID         string  `json:"id"`
	Timestamp  float64 `json:"timestamp"`
	VideoTime  string  `json:"videoTime"`
	SourceText string  `json:"sourceText,omitempty"`
	HadImage   bool    `json:"hadImage"`
	Claims     []Claim `json:"claims"`
	Raw        string  `json:"raw,omitempty"`
	CheckedAt  string  `json:"checkedAt,omitempty"`
}

// DisputedClaim is a recurring false or partially true claim.
type DisputedClaim struct {
	Claim Claim `json:"claim"`
	Count int   `json:"count"`
}

// Session describes the attached playback session.
type Session struct {
	ID         string  `json:"id"`
	Video      string  `json:"video,omitempty"`
	Captions   string  `json:"captions,omitempty"`
	Playing    bool    `json:"playing"`
	Position   float64 `json:"position"`
	VideoTime  string  `json:"videoTime"`
	AttachedAt string  `json:"attachedAt,omitempty"`
}

// LoopStats counts poll cycle outcomes.
type LoopStats struct {
	Dispatched uint64 `json:"dispatched"`
	Recorded   uint64 `json:"recorded"`
	Skipped    uint64 `json:"skipped"`
	Failed     uint64 `json:"failed"`
	Stale      uint64 `json:"stale"`
}

// LoopStatus summarizes the poll loop.
type LoopStatus struct {
	State      string    `json:"state"`
	Generation uint64    `json:"generation"`
	IntervalMS int64     `json:"intervalMs"`
	Frames     bool      `json:"frames"`
	Stats      LoopStats `json:"stats"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running        bool               `json:"running"`
	PID            int                `json:"pid"`
	Enabled        bool               `json:"enabled"`
	Model          string             `json:"model"`
	APIKeyPresent  bool               `json:"apiKeyPresent"`
	Session        *Session           `json:"session,omitempty"`
	Loop           LoopStatus         `json:"loop"`
	HistoryLen     int                `json:"historyLen"`
	HistoryCap     int                `json:"historyCap"`
	OverlayEntries int                `json:"overlayEntries"`
	OverlayClients int                `json:"overlayClients"`
	LockFilePath   string             `json:"lockFilePath"`
	SettingsDBPath string             `json:"settingsDbPath"`
	SocketPath     string             `json:"socketPath"`
	APIAddress     string             `json:"apiAddress,omitempty"`
	Dependencies   []DependencyStatus `json:"dependencies"`
}

// AttachRequest attaches a video and optional caption file.
type AttachRequest struct {
	Video    string  `json:"video"`
	Captions string  `json:"captions,omitempty"`
	Position float64 `json:"position,omitempty"`
	Play     bool    `json:"play,omitempty"`
}

// SeekRequest moves the playhead.
type SeekRequest struct {
	Position float64 `json:"position"`
}

// CaptionRequest pushes caption lines shown on screen.
type CaptionRequest struct {
	Lines []string `json:"lines"`
}

// CaptionResponse reports how many lines are waiting for the next cycle.
type CaptionResponse struct {
	Pending int `json:"pending"`
}

// EnabledRequest sets the persisted enabled flag.
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// EnabledResponse reports the persisted enabled flag.
type EnabledResponse struct {
	Enabled bool `json:"enabled"`
}

// CheckRequest asks for an on-demand check outside the poll loop. Image is
// base64-encoded JPEG.
type CheckRequest struct {
	Text      string  `json:"text"`
	Image     string  `json:"image,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
	Record    bool    `json:"record,omitempty"`
}

// CheckResponse wraps an on-demand result.
type CheckResponse struct {
	Result Result `json:"result"`
}

// SessionResponse wraps the current session.
type SessionResponse struct {
	Session *Session `json:"session"`
}

// HistoryResponse wraps a list of results, newest first.
type HistoryResponse struct {
	Results []Result `json:"results"`
}

// DisputedResponse wraps TopDisputed output.
type DisputedResponse struct {
	Claims []DisputedClaim `json:"claims"`
}

// ClearResponse reports how many results were removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

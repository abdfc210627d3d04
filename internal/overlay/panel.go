package overlay

import (
	"bytes"
	"log/slog"
	"net/http"
	"sync"

	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
)

// DefaultMaxEntries is the number of entries the panel keeps.
const DefaultMaxEntries = 5

// Panel is the bounded list of rendered results, oldest first.
type Panel struct {
	logger    *slog.Logger
	hub       *Hub
	sanitizer sanitizer
	max       int

	mu      sync.RWMutex
	entries []Entry
}

// NewPanel returns an empty panel. hub may be nil when no live clients exist.
func NewPanel(maxEntries int, hub *Hub, logger *slog.Logger) *Panel {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Panel{
		logger:    logging.NewComponentLogger(logger, "overlay"),
		hub:       hub,
		sanitizer: newSanitizer(),
		max:       maxEntries,
	}
}

// Render appends result to the panel, evicting the oldest entry past the cap,
// and broadcasts it. It reports whether an entry was added.
func (p *Panel) Render(result factcheck.VerificationResult) bool {
	entry, ok := buildEntry(p.sanitizer, result)
	if !ok {
		p.logger.Debug("result not rendered",
			logging.Args(logging.DecisionAttrs("overlay_render", "skipped", "no claims")...)...)
		return false
	}

	p.mu.Lock()
	p.entries = append(p.entries, entry)
	if over := len(p.entries) - p.max; over > 0 {
		p.entries = append(p.entries[:0], p.entries[over:]...)
	}
	p.mu.Unlock()

	p.logger.Info("overlay entry rendered",
		logging.String("video_time", entry.VideoTime),
		logging.Int("claims", len(entry.Claims)),
	)
	if p.hub != nil {
		p.hub.Broadcast(Message{Type: MessageTypeEntry, Entry: &entry})
	}
	return true
}

// Entries returns a snapshot of the visible entries, oldest first.
func (p *Panel) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Clear empties the panel.
func (p *Panel) Clear() {
	p.mu.Lock()
	p.entries = nil
	p.mu.Unlock()
	if p.hub != nil {
		p.hub.Broadcast(Message{Type: MessageTypeClear})
	}
}

// PublishStatus pushes the enabled and playing state to connected overlays.
func (p *Panel) PublishStatus(enabled, playing bool) {
	if p.hub != nil {
		p.hub.Broadcast(Message{Type: MessageTypeStatus, Enabled: &enabled, Playing: &playing})
	}
}

// HTML renders the entries as an HTML fragment.
func (p *Panel) HTML() (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "entries", p.Entries()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ServeWS streams panel updates, starting with a snapshot of current entries.
func (p *Panel) ServeWS(w http.ResponseWriter, r *http.Request) {
	if p.hub == nil {
		http.Error(w, "live overlay unavailable", http.StatusServiceUnavailable)
		return
	}
	p.hub.Serve(w, r, &Message{Type: MessageTypeSnapshot, Entries: p.Entries()})
}

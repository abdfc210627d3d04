package overlay

import (
	_ "embed"
	"html/template"
	"net/http"

	"factwatch/internal/logging"
)

//go:embed overlay.html
var pageSource string

var pageTemplate = template.Must(template.New("overlay").Parse(pageSource))

type pageData struct {
	Entries   []Entry
	SocketURL string
}

// PageHandler serves the overlay page. socketPath is the websocket route the
// page connects to.
func (p *Panel) PageHandler(socketPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		data := pageData{Entries: p.Entries(), SocketURL: socketPath}
		if err := pageTemplate.Execute(w, data); err != nil {
			logging.ErrorWithContext(p.logger, "overlay page render failed", "overlay_render_failed", logging.Error(err))
		}
	})
}

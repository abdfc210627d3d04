package overlay_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"factwatch/internal/factcheck"
	"factwatch/internal/logging"
	"factwatch/internal/overlay"
)

func resultAt(ts float64, text string) factcheck.VerificationResult {
	claim := factcheck.NewClaim(text, "true", "high", "", nil)
	return factcheck.NewResult([]factcheck.Claim{claim}, ts, text, false)
}

func TestPanelEvictsOldestBeyondMax(t *testing.T) {
	panel := overlay.NewPanel(3, nil, logging.NewNop())
	for i := range 5 {
		if !panel.Render(resultAt(float64(i*5), "claim")) {
			t.Fatalf("render %d returned false", i)
		}
	}
	entries := panel.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"00:10", "00:15", "00:20"}
	for i, entry := range entries {
		if entry.VideoTime != want[i] {
			t.Fatalf("entry %d: got %q want %q", i, entry.VideoTime, want[i])
		}
	}
}

func TestPanelDefaultsMaxEntries(t *testing.T) {
	panel := overlay.NewPanel(0, nil, nil)
	for range overlay.DefaultMaxEntries + 2 {
		panel.Render(resultAt(1, "c"))
	}
	if got := len(panel.Entries()); got != overlay.DefaultMaxEntries {
		t.Fatalf("expected %d entries, got %d", overlay.DefaultMaxEntries, got)
	}
}

func TestPanelRenderIgnoresEmptyResults(t *testing.T) {
	panel := overlay.NewPanel(5, nil, nil)
	if panel.Render(factcheck.NewResult(nil, 3, "", false)) {
		t.Fatal("expected empty result to be ignored")
	}
	if len(panel.Entries()) != 0 {
		t.Fatal("expected panel to stay empty")
	}
}

func TestPanelClear(t *testing.T) {
	panel := overlay.NewPanel(5, nil, nil)
	panel.Render(resultAt(1, "c"))
	panel.Clear()
	if len(panel.Entries()) != 0 {
		t.Fatal("expected empty panel after clear")
	}
}

func TestPanelHTMLEscapesText(t *testing.T) {
	panel := overlay.NewPanel(5, nil, nil)
	panel.Render(resultAt(61, "1 < 2 & 3 > 2"))
	out, err := panel.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	if !strings.Contains(out, "01:01") {
		t.Fatalf("missing timestamp in %s", out)
	}
	if !strings.Contains(out, "1 &lt; 2 &amp; 3 &gt; 2") {
		t.Fatalf("expected escaped claim text in %s", out)
	}
	if !strings.Contains(out, "verification-true") {
		t.Fatalf("missing verdict class in %s", out)
	}
}

func TestPageHandlerServesOverlay(t *testing.T) {
	panel := overlay.NewPanel(5, nil, nil)
	panel.Render(resultAt(7, "water is wet"))

	rec := httptest.NewRecorder()
	panel.PageHandler("/overlay/ws").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/overlay", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "water is wet") || !strings.Contains(body, "/overlay/ws") {
		t.Fatalf("page missing content: %s", body)
	}

	rec = httptest.NewRecorder()
	panel.PageHandler("/overlay/ws").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/overlay", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestServeWSWithoutHub(t *testing.T) {
	panel := overlay.NewPanel(5, nil, nil)
	rec := httptest.NewRecorder()
	panel.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/overlay/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

package overlay

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"factwatch/internal/factcheck"
)

// ClaimView is one claim as the panel shows it.
type ClaimView struct {
	Text        string   `json:"text"`
	Label       string   `json:"label"`
	Class       string   `json:"class"`
	Explanation string   `json:"explanation,omitempty"`
	Sources     []string `json:"sources"`
}

// Entry is one rendered verification result.
type Entry struct {
	ResultID  string      `json:"result_id"`
	VideoTime string      `json:"video_time"`
	Timestamp float64     `json:"timestamp"`
	HadImage  bool        `json:"had_image"`
	Claims    []ClaimView `json:"claims"`
	CheckedAt time.Time   `json:"checked_at"`
}

var upper = cases.Upper(language.Und)

// FormatVideoTime renders seconds as zero-padded MM:SS. Minutes are not
// wrapped into hours.
func FormatVideoTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// VerdictClass maps a verdict to its CSS class.
func VerdictClass(v factcheck.Verdict) string {
	switch v {
	case factcheck.VerdictTrue:
		return "verification-true"
	case factcheck.VerdictFalse:
		return "verification-false"
	case factcheck.VerdictPartiallyTrue:
		return "verification-partial"
	default:
		return "verification-unknown"
	}
}

// VerdictLabel renders e.g. "PARTIALLY TRUE (medium confidence)". The raw
// verification text is preferred so the panel shows what the model said.
func VerdictLabel(c factcheck.Claim) string {
	verdict := strings.TrimSpace(c.Verification)
	if verdict == "" {
		verdict = strings.ReplaceAll(string(c.Verdict), "_", " ")
	}
	return fmt.Sprintf("%s (%s confidence)", upper.String(verdict), c.Confidence)
}

type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() sanitizer {
	return sanitizer{policy: bluemonday.StrictPolicy()}
}

// text strips markup and returns plain text; html/template escapes on output.
func (s sanitizer) text(value string) string {
	clean := html.UnescapeString(s.policy.Sanitize(value))
	return strings.Join(strings.Fields(clean), " ")
}

// BuildEntry converts result into a panel entry. Results without claims yield
// false.
func BuildEntry(result factcheck.VerificationResult) (Entry, bool) {
	return buildEntry(newSanitizer(), result)
}

func buildEntry(s sanitizer, result factcheck.VerificationResult) (Entry, bool) {
	if len(result.Claims) == 0 {
		return Entry{}, false
	}
	entry := Entry{
		ResultID:  result.ID,
		VideoTime: FormatVideoTime(result.Timestamp),
		Timestamp: result.Timestamp,
		HadImage:  result.HadImage,
		Claims:    make([]ClaimView, 0, len(result.Claims)),
		CheckedAt: result.CheckedAt,
	}
	for _, claim := range result.Claims {
		sources := make([]string, 0, len(claim.Sources))
		for _, src := range claim.Sources {
			if clean := s.text(src); clean != "" {
				sources = append(sources, clean)
			}
		}
		entry.Claims = append(entry.Claims, ClaimView{
			Text:        s.text(claim.Text),
			Label:       s.text(VerdictLabel(claim)),
			Class:       VerdictClass(claim.Verdict),
			Explanation: s.text(claim.Explanation),
			Sources:     sources,
		})
	}
	return entry, true
}

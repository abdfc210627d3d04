package api

import (
	"time"

	"factwatch/internal/deps"
	"factwatch/internal/factcheck"
	"factwatch/internal/monitor"
	"factwatch/internal/overlay"
	"factwatch/internal/playback"
)

// FromClaim converts a claim to its API representation.
func FromClaim(c factcheck.Claim) Claim {
	sources := c.Sources
	if sources == nil {
		sources = []string{}
	}
	return Claim{
		Text:         c.Text,
		Verification: c.Verification,
		Verdict:      string(c.Verdict),
		Confidence:   string(c.Confidence),
		Explanation:  c.Explanation,
		Sources:      sources,
	}
}

// FromResult converts a verification result to its API representation.
func FromResult(r factcheck.VerificationResult) Result {
	dto := Result{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		VideoTime:  overlay.FormatVideoTime(r.Timestamp),
		SourceText: r.SourceText,
		HadImage:   r.HadImage,
		Claims:     make([]Claim, 0, len(r.Claims)),
		Raw:        r.Raw,
		CheckedAt:  formatTime(r.CheckedAt),
	}
	for _, c := range r.Claims {
		dto.Claims = append(dto.Claims, FromClaim(c))
	}
	return dto
}

// FromResults converts results preserving order. The slice is never nil.
func FromResults(results []factcheck.VerificationResult) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, FromResult(r))
	}
	return out
}

// FromDisputed converts TopDisputed groups. The slice is never nil.
func FromDisputed(groups []factcheck.DisputedClaimGroup) []DisputedClaim {
	out := make([]DisputedClaim, 0, len(groups))
	for _, g := range groups {
		out = append(out, DisputedClaim{Claim: FromClaim(g.Claim), Count: g.Count})
	}
	return out
}

// FromSessionInfo converts a playback snapshot.
func FromSessionInfo(info playback.Info) *Session {
	return &Session{
		ID:         info.ID,
		Video:      info.Video,
		Captions:   info.Captions,
		Playing:    info.Playing,
		Position:   info.Position,
		VideoTime:  overlay.FormatVideoTime(info.Position),
		AttachedAt: formatTime(info.AttachedAt),
	}
}

// FromLoopStats converts monitor counters.
func FromLoopStats(s monitor.Stats) LoopStats {
	return LoopStats(s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime parses API timestamps for display.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

// FromDependency converts a dependency probe to its API representation.
func FromDependency(d deps.Status) DependencyStatus {
	return DependencyStatus{
		Name:        d.Name,
		Command:     d.Command,
		Description: d.Description,
		Optional:    d.Optional,
		Available:   d.Available,
		Detail:      d.Detail,
	}
}

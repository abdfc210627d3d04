package factcheck

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Verdict is the normalized outcome of checking one claim.
type Verdict string

const (
	VerdictTrue          Verdict = "true"
	VerdictFalse         Verdict = "false"
	VerdictPartiallyTrue Verdict = "partially_true"
	VerdictUnverifiable  Verdict = "unverifiable"
)

// Disputed reports whether the verdict counts toward TopDisputed.
func (v Verdict) Disputed() bool {
	return v == VerdictFalse || v == VerdictPartiallyTrue
}

// NormalizeVerdict maps a free-form verification string onto a Verdict.
// Anything mentioning "partial" is partially true; unknown values are unverifiable.
func NormalizeVerdict(raw string) Verdict {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "true":
		return VerdictTrue
	case value == "false":
		return VerdictFalse
	case strings.Contains(value, "partial"):
		return VerdictPartiallyTrue
	default:
		return VerdictUnverifiable
	}
}

// Confidence is the model's stated certainty in a verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// NormalizeConfidence maps a free-form confidence string onto a Confidence,
// defaulting to low.
func NormalizeConfidence(raw string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(raw))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Claim is one checked statement. Treat it as immutable once built.
type Claim struct {
	Text string `json:"claim"`
	// Verification is the raw verdict string as the API returned it.
	Verification string     `json:"verification"`
	Verdict      Verdict    `json:"verdict"`
	Confidence   Confidence `json:"confidence"`
	Explanation  string     `json:"explanation"`
	Sources      []string   `json:"sources"`
}

// NewClaim builds a normalized claim. Sources is copied and never nil.
func NewClaim(text, verification, confidence, explanation string, sources []string) Claim {
	return Claim{
		Text:         strings.TrimSpace(text),
		Verification: strings.TrimSpace(verification),
		Verdict:      NormalizeVerdict(verification),
		Confidence:   NormalizeConfidence(confidence),
		Explanation:  strings.TrimSpace(explanation),
		Sources:      copySources(sources),
	}
}

func (c Claim) clone() Claim {
	c.Sources = copySources(c.Sources)
	return c
}

func copySources(sources []string) []string {
	out := make([]string, 0, len(sources))
	for _, source := range sources {
		if trimmed := strings.TrimSpace(source); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// VerificationResult is the outcome of one poll cycle.
type VerificationResult struct {
	ID     string  `json:"id"`
	Claims []Claim `json:"claims"`
	// Timestamp is the playback position in seconds when the sample was taken.
	Timestamp  float64 `json:"timestamp"`
	SourceText string  `json:"source_text"`
	HadImage   bool    `json:"had_image"`
	// Raw holds the model text when it could not be decoded into claims.
	Raw       string    `json:"raw,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewResult stamps a result with a fresh ID and check time.
func NewResult(claims []Claim, timestamp float64, sourceText string, hadImage bool) VerificationResult {
	cloned := make([]Claim, 0, len(claims))
	for _, claim := range claims {
		cloned = append(cloned, claim.clone())
	}
	return VerificationResult{
		ID:         uuid.NewString(),
		Claims:     cloned,
		Timestamp:  timestamp,
		SourceText: sourceText,
		HadImage:   hadImage,
		CheckedAt:  time.Now().UTC(),
	}
}

// FallbackResult wraps undecodable model text so the cycle still yields a result.
func FallbackResult(raw string, timestamp float64, sourceText string, hadImage bool) VerificationResult {
	result := NewResult(nil, timestamp, sourceText, hadImage)
	result.Raw = raw
	return result
}

// IsFallback reports whether the result carries raw text instead of claims.
func (r VerificationResult) IsFallback() bool {
	return len(r.Claims) == 0 && r.Raw != ""
}

func (r VerificationResult) clone() VerificationResult {
	claims := make([]Claim, len(r.Claims))
	for i, claim := range r.Claims {
		claims[i] = claim.clone()
	}
	r.Claims = claims
	return r
}

// DisputedClaimGroup counts recurrences of one disputed claim text.
type DisputedClaimGroup struct {
	Claim Claim `json:"claim"`
	Count int   `json:"count"`
}

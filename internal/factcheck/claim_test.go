package factcheck_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"factwatch/internal/factcheck"
)

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want factcheck.Verdict
	}{
		{"true", factcheck.VerdictTrue},
		{" TRUE ", factcheck.VerdictTrue},
		{"false", factcheck.VerdictFalse},
		{"partially true", factcheck.VerdictPartiallyTrue},
		{"Partial", factcheck.VerdictPartiallyTrue},
		{"unverifiable", factcheck.VerdictUnverifiable},
		{"mostly true", factcheck.VerdictUnverifiable},
		{"", factcheck.VerdictUnverifiable},
	}
	for _, tt := range tests {
		if got := factcheck.NormalizeVerdict(tt.in); got != tt.want {
			t.Errorf("NormalizeVerdict(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeConfidence(t *testing.T) {
	tests := map[string]factcheck.Confidence{
		"High":    factcheck.ConfidenceHigh,
		"medium":  factcheck.ConfidenceMedium,
		"low":     factcheck.ConfidenceLow,
		"certain": factcheck.ConfidenceLow,
		"":        factcheck.ConfidenceLow,
	}
	for in, want := range tests {
		if got := factcheck.NormalizeConfidence(in); got != want {
			t.Errorf("NormalizeConfidence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewClaimSourcesNeverNil(t *testing.T) {
	c := factcheck.NewClaim("X", "false", "high", "why", nil)
	if c.Sources == nil {
		t.Fatal("expected empty non-nil sources")
	}
	src := []string{"a", " ", "b"}
	c = factcheck.NewClaim("X", "false", "high", "why", src)
	src[0] = "changed"
	if len(c.Sources) != 2 || c.Sources[0] != "a" {
		t.Fatalf("expected copied, trimmed sources, got %v", c.Sources)
	}
}

func TestFallbackResult(t *testing.T) {
	r := factcheck.FallbackResult("not json", 12, "caption", true)
	if !r.IsFallback() || r.Claims == nil || len(r.Claims) != 0 {
		t.Fatalf("unexpected fallback %#v", r)
	}
	if r.ID == "" || r.CheckedAt.IsZero() {
		t.Fatal("expected ID and check time")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&factcheck.ConfigurationError{Setting: "GEMINI_API_KEY"}, "verification_not_configured"},
		{fmt.Errorf("cycle: %w", factcheck.ErrRateLimited), "verification_rate_limited"},
		{&factcheck.TransportError{Op: "gemini request", StatusCode: 500, Body: "boom"}, "verification_transport_failed"},
		{&factcheck.ParseError{Op: "gemini response", Snippet: "<empty>"}, "verification_parse_failed"},
		{errors.New("other"), "verification_failed"},
	}
	for _, tt := range tests {
		if got := factcheck.EventType(tt.err); got != tt.want {
			t.Errorf("EventType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	hint := factcheck.ErrorHint(&factcheck.TransportError{Op: "x", StatusCode: 403})
	if !strings.Contains(hint, "API key") {
		t.Fatalf("unexpected hint %q", hint)
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := fmt.Errorf("cycle: %w", &factcheck.TransportError{Op: "gemini request", Err: inner})
	if !errors.Is(err, inner) {
		t.Fatal("expected TransportError to unwrap to inner error")
	}
	var te *factcheck.TransportError
	if !errors.As(err, &te) || te.Op != "gemini request" {
		t.Fatalf("errors.As failed: %v", err)
	}
}

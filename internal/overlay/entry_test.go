package overlay_test

import (
	"testing"

	"factwatch/internal/factcheck"
	"factwatch/internal/overlay"
)

func TestFormatVideoTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{5.9, "00:05"},
		{65, "01:05"},
		{3599, "59:59"},
		{3725, "62:05"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := overlay.FormatVideoTime(tt.seconds); got != tt.want {
			t.Errorf("FormatVideoTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestVerdictClass(t *testing.T) {
	tests := map[factcheck.Verdict]string{
		factcheck.VerdictTrue:          "verification-true",
		factcheck.VerdictFalse:         "verification-false",
		factcheck.VerdictPartiallyTrue: "verification-partial",
		factcheck.VerdictUnverifiable:  "verification-unknown",
	}
	for verdict, want := range tests {
		if got := overlay.VerdictClass(verdict); got != want {
			t.Errorf("VerdictClass(%s) = %q, want %q", verdict, got, want)
		}
	}
}

func TestVerdictLabelUppercasesRawVerification(t *testing.T) {
	claim := factcheck.NewClaim("x", "partially true", "medium", "", nil)
	if got := overlay.VerdictLabel(claim); got != "PARTIALLY TRUE (medium confidence)" {
		t.Fatalf("unexpected label %q", got)
	}

	claim = factcheck.Claim{Verdict: factcheck.VerdictPartiallyTrue, Confidence: factcheck.ConfidenceHigh}
	if got := overlay.VerdictLabel(claim); got != "PARTIALLY TRUE (high confidence)" {
		t.Fatalf("unexpected fallback label %q", got)
	}
}

func TestBuildEntrySkipsResultsWithoutClaims(t *testing.T) {
	if _, ok := overlay.BuildEntry(factcheck.NewResult(nil, 10, "text", false)); ok {
		t.Fatal("expected no entry for empty result")
	}
	if _, ok := overlay.BuildEntry(factcheck.FallbackResult("not json", 10, "text", false)); ok {
		t.Fatal("expected no entry for fallback result")
	}
}

func TestBuildEntryStripsMarkup(t *testing.T) {
	claim := factcheck.NewClaim(
		`<script>alert(1)</script>The <b>moon</b> is cheese`,
		"false", "high",
		"It is rock &amp; dust",
		[]string{`<a href="https://nasa.gov">NASA</a>`, "  "},
	)
	entry, ok := overlay.BuildEntry(factcheck.NewResult([]factcheck.Claim{claim}, 125, "", true))
	if !ok {
		t.Fatal("expected entry")
	}
	if entry.VideoTime != "02:05" {
		t.Fatalf("unexpected video time %q", entry.VideoTime)
	}
	view := entry.Claims[0]
	if view.Text != "The moon is cheese" {
		t.Fatalf("unexpected text %q", view.Text)
	}
	if view.Explanation != "It is rock & dust" {
		t.Fatalf("unexpected explanation %q", view.Explanation)
	}
	if len(view.Sources) != 1 || view.Sources[0] != "NASA" {
		t.Fatalf("unexpected sources %v", view.Sources)
	}
	if view.Class != "verification-false" || view.Label != "FALSE (high confidence)" {
		t.Fatalf("unexpected verdict rendering %+v", view)
	}
}

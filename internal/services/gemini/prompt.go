package gemini

import (
	"fmt"
	"strings"
)

const factCheckPrompt = `Fact check the following statement from a video: %q.
Determine if it contains verifiable claims, and if so, verify their accuracy.
Provide sources when possible and a confidence score (low, medium, high) for each verification.
Format the response as JSON with these fields:
{ "claims": [{"claim": "...", "verification": "true/false/partially true/unverifiable",
"explanation": "...", "sources": ["..."], "confidence": "low/medium/high"}] }`

const imageOnlyPrompt = `Fact check any statements visible in the attached video frame.
Determine if it contains verifiable claims, and if so, verify their accuracy.
Provide sources when possible and a confidence score (low, medium, high) for each verification.
Format the response as JSON with these fields:
{ "claims": [{"claim": "...", "verification": "true/false/partially true/unverifiable",
"explanation": "...", "sources": ["..."], "confidence": "low/medium/high"}] }`

func buildPrompt(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return imageOnlyPrompt
	}
	return fmt.Sprintf(factCheckPrompt, text)
}

package factcheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// sourceList accepts a JSON array of strings, a single string, or null.
type sourceList []string

func (s *sourceList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = sourceList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type claimPayload struct {
	Claim        string     `json:"claim"`
	Verification string     `json:"verification"`
	Explanation  string     `json:"explanation"`
	Sources      sourceList `json:"sources"`
	Confidence   string     `json:"confidence"`
}

type claimsPayload struct {
	Claims []claimPayload `json:"claims"`
}

// DecodeClaims decodes the model's claims JSON. It tolerates code fences and
// prose around the object, and normalizes each claim. A payload without a
// claims array is an error.
func DecodeClaims(content string) ([]Claim, error) {
	var raw map[string]json.RawMessage
	if err := DecodeModelJSON(content, &raw); err != nil {
		return nil, err
	}
	claimsJSON, ok := raw["claims"]
	if !ok {
		return nil, fmt.Errorf("missing claims array (payload snippet: %s)", SummarizeSnippet(content))
	}
	var items []claimPayload
	if err := json.Unmarshal(claimsJSON, &items); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	claims := make([]Claim, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Claim) == "" {
			continue
		}
		claims = append(claims, NewClaim(item.Claim, item.Verification, item.Confidence, item.Explanation, item.Sources))
	}
	return claims, nil
}

// DecodeModelJSON decodes JSON from model output, handling common formatting quirks.
func DecodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, SummarizeSnippet(trimmed))
	}
	if err := json.Unmarshal([]byte(sanitized), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, SummarizeSnippet(sanitized))
	}
	return nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFence(content))
	if trimmed == "" || trimmed[0] == '{' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

// SummarizeSnippet collapses whitespace and truncates content for error messages.
func SummarizeSnippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

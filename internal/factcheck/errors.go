package factcheck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimited is returned when the local request budget is exhausted. The
// cycle is dropped without contacting the API.
var ErrRateLimited = errors.New("verification request budget exhausted")

// ConfigurationError reports a missing or invalid setting. No request was sent.
type ConfigurationError struct {
	Setting string
	Hint    string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration: %s not set", e.Setting)
	if hint := strings.TrimSpace(e.Hint); hint != "" {
		msg += " (" + hint + ")"
	}
	return msg
}

// TransportError reports a network failure or a non-2xx HTTP status.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response envelope that could not be decoded.
type ParseError struct {
	Op      string
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected payload (snippet: %s)", e.Op, e.Snippet)
	}
	return fmt.Sprintf("%s: %v (snippet: %s)", e.Op, e.Err, e.Snippet)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EventType classifies err for structured logging.
func EventType(err error) string {
	var (
		cfgErr   *ConfigurationError
		transErr *TransportError
		parseErr *ParseError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "verification_not_configured"
	case errors.Is(err, ErrRateLimited):
		return "verification_rate_limited"
	case errors.As(err, &transErr):
		return "verification_transport_failed"
	case errors.As(err, &parseErr):
		return "verification_parse_failed"
	default:
		return "verification_failed"
	}
}

// ErrorHint suggests a next step for err.
func ErrorHint(err error) string {
	var (
		cfgErr   *ConfigurationError
		transErr *TransportError
	)
	switch {
	case errors.As(err, &cfgErr):
		if cfgErr.Hint != "" {
			return cfgErr.Hint
		}
		return "set " + cfgErr.Setting
	case errors.Is(err, ErrRateLimited):
		return "raise gemini.requests_per_minute or lengthen monitor.interval_ms"
	case errors.As(err, &transErr):
		if transErr.StatusCode == 401 || transErr.StatusCode == 403 {
			return "check the Gemini API key"
		}
		return "check network connectivity and the Gemini base_url"
	default:
		return "check logs for details"
	}
}

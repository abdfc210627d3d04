package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"factwatch/internal/config"
	"factwatch/internal/factcheck"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel       = "gemini-2.0-flash"
	defaultHTTPTimeout = 30 * time.Second
	jsonMimeType       = "application/json"
	imageMimeType      = "image/jpeg"
	apiKeyHeader       = "x-goog-api-key"
	apiKeyEnvHint      = "set gemini.api_key or export GEMINI_API_KEY"
)

// Config captures the runtime settings required to talk to Gemini.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Temperature    float64
	TopP           float64
	TopK           int
	// RequestsPerMinute caps outbound calls. Zero means no cap.
	RequestsPerMinute int
}

// Client wraps the Gemini generateContent endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimiter overrides the request budget derived from RequestsPerMinute.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient constructs a Gemini client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	if cfg.RequestsPerMinute > 0 {
		burst := max(1, cfg.RequestsPerMinute/12)
		client.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FromConfig builds a client from the [gemini] section of cfg.
func FromConfig(cfg *config.Config, opts ...Option) *Client {
	if cfg == nil {
		return NewClient(Config{}, opts...)
	}
	return NewClient(Config(cfg.GetGemini()), opts...)
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// CheckFact sends one caption sample (and optional JPEG frame) for verification.
// The returned result has a zero Timestamp; the caller stamps the playback
// position before recording it.
func (c *Client) CheckFact(ctx context.Context, text string, image []byte) (factcheck.VerificationResult, error) {
	const op = "gemini check"
	text = strings.TrimSpace(text)
	if !c.Configured() {
		return factcheck.VerificationResult{}, &factcheck.ConfigurationError{Setting: "gemini.api_key", Hint: apiKeyEnvHint}
	}
	if text == "" && len(image) == 0 {
		return factcheck.VerificationResult{}, fmt.Errorf("%s: text or image required", op)
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return factcheck.VerificationResult{}, fmt.Errorf("%s: %w", op, factcheck.ErrRateLimited)
	}

	parts := []part{{Text: buildPrompt(text)}}
	if len(image) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: imageMimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}})
	}
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{
			Temperature:      c.cfg.Temperature,
			TopP:             c.cfg.TopP,
			TopK:             c.cfg.TopK,
			ResponseMimeType: jsonMimeType,
		},
	}

	candidate, err := c.generate(ctx, payload)
	if err != nil {
		return factcheck.VerificationResult{}, err
	}

	claims, err := factcheck.DecodeClaims(candidate)
	if err != nil {
		return factcheck.FallbackResult(candidate, 0, text, len(image) > 0), nil
	}
	return factcheck.NewResult(claims, 0, text, len(image) > 0), nil
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return &factcheck.ConfigurationError{Setting: "gemini.api_key", Hint: apiKeyEnvHint}
	}
	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: `Respond with {"ok":true}`}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: jsonMimeType,
		},
	}
	candidate, err := c.generate(ctx, payload)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := factcheck.DecodeModelJSON(candidate, &parsed); err != nil {
		return &factcheck.ParseError{Op: "gemini health", Snippet: factcheck.SummarizeSnippet(candidate), Err: err}
	}
	if !parsed.OK {
		return errors.New("gemini health: unexpected response")
	}
	return nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP,omitempty"`
	TopK             int     `json:"topK,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) endpoint() (string, error) {
	return url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
}

// generate performs one request and returns the first candidate's text.
func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	const op = "gemini request"
	endpoint, err := c.endpoint()
	if err != nil {
		return "", fmt.Errorf("%s: build url: %w", op, err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", jsonMimeType)
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &factcheck.TransportError{Op: op, Err: fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &factcheck.TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &factcheck.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       factcheck.SummarizeSnippet(string(body)),
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &factcheck.ParseError{Op: "gemini response", Snippet: factcheck.SummarizeSnippet(string(body)), Err: err}
	}
	if decoded.Error != nil {
		return "", &factcheck.TransportError{
			Op:         op,
			StatusCode: decoded.Error.Code,
			Body:       strings.TrimSpace(decoded.Error.Status + " " + decoded.Error.Message),
		}
	}
	if len(decoded.Candidates) == 0 {
		reason := ""
		if decoded.PromptFeedback != nil {
			reason = decoded.PromptFeedback.BlockReason
		}
		return "", &factcheck.ParseError{
			Op:      "gemini response",
			Snippet: factcheck.SummarizeSnippet(string(body)),
			Err:     fmt.Errorf("no candidates (block_reason=%q)", reason),
		}
	}

	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &factcheck.ParseError{
			Op:      "gemini response",
			Snippet: factcheck.SummarizeSnippet(string(body)),
			Err:     fmt.Errorf("empty candidate text (finish_reason=%q)", decoded.Candidates[0].FinishReason),
		}
	}
	return text.String(), nil
}

package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"factwatch/internal/factcheck"
)

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestCheckFactSendsPromptImageAndGenerationConfig(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xd9}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/demo-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		if r.URL.Query().Get("key") != "" {
			t.Error("api key must not be sent in the query string")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("expected text and image parts, got %+v", req.Contents)
		} else {
			if !strings.Contains(req.Contents[0].Parts[0].Text, `"the moon is cheese"`) {
				t.Errorf("prompt missing statement: %q", req.Contents[0].Parts[0].Text)
			}
			inline := req.Contents[0].Parts[1].InlineData
			if inline == nil || inline.MimeType != "image/jpeg" || inline.Data != base64.StdEncoding.EncodeToString(image) {
				t.Errorf("unexpected inline data %+v", inline)
			}
		}
		if req.GenerationConfig.Temperature != 0.2 || req.GenerationConfig.TopP != 0.8 || req.GenerationConfig.TopK != 40 {
			t.Errorf("unexpected generation config %+v", req.GenerationConfig)
		}
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"claims":[{"claim":"The moon is cheese","verification":"false","explanation":"It is rock.","sources":["nasa.gov"],"confidence":"high"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "demo-model", Temperature: 0.2, TopP: 0.8, TopK: 40})
	result, err := client.CheckFact(context.Background(), "the moon is cheese", image)
	if err != nil {
		t.Fatalf("CheckFact returned error: %v", err)
	}
	if !result.HadImage || result.SourceText != "the moon is cheese" {
		t.Fatalf("unexpected result metadata %+v", result)
	}
	if len(result.Claims) != 1 {
		t.Fatalf("expected one claim, got %d", len(result.Claims))
	}
	got := result.Claims[0]
	if got.Verdict != factcheck.VerdictFalse || got.Confidence != factcheck.ConfidenceHigh || got.Sources[0] != "nasa.gov" {
		t.Fatalf("unexpected claim %+v", got)
	}
}

func TestCheckFactTextOnlyOmitsInlineData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents[0].Parts) != 1 {
			t.Errorf("expected a single text part, got %d", len(req.Contents[0].Parts))
		}
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"claims":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	result, err := client.CheckFact(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("CheckFact returned error: %v", err)
	}
	if result.HadImage || result.Claims == nil || len(result.Claims) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckFactFallsBackToRawText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse("I could not find any claims."))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	result, err := client.CheckFact(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("expected graceful fallback, got error: %v", err)
	}
	if !result.IsFallback() || result.Raw != "I could not find any claims." {
		t.Fatalf("unexpected fallback result %+v", result)
	}
}

func TestCheckFactWithoutKeyIsConfigurationError(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.CheckFact(context.Background(), "hello", nil)
	var cfgErr *factcheck.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if called {
		t.Fatal("no request should be sent without an API key")
	}
}

func TestCheckFactHTTPStatusIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.CheckFact(context.Background(), "hello", nil)
	var transportErr *factcheck.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusTooManyRequests || !strings.Contains(transportErr.Body, "quota") {
		t.Fatalf("unexpected transport error %+v", transportErr)
	}
}

func TestCheckFactNetworkFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: baseURL})
	_, err := client.CheckFact(context.Background(), "hello", nil)
	var transportErr *factcheck.TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != 0 {
		t.Fatalf("expected network TransportError, got %v", err)
	}
}

func TestCheckFactBadEnvelopeIsParseError(t *testing.T) {
	tests := map[string]string{
		"not json":      "<html>oops</html>",
		"no candidates": `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`,
		"empty text":    `{"candidates":[{"content":{"parts":[{"text":""}]},"finishReason":"MAX_TOKENS"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
			_, err := client.CheckFact(context.Background(), "hello", nil)
			var parseErr *factcheck.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestCheckFactHonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.CheckFact(ctx, "hello", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCheckFactRateLimitFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"claims":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL}, WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))
	if _, err := client.CheckFact(context.Background(), "first", nil); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := client.CheckFact(context.Background(), "second", nil)
	if !errors.Is(err, factcheck.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single outbound request, got %d", calls)
	}
}

func TestCheckFactRequiresInput(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	if _, err := client.CheckFact(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty sample")
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(candidateResponse("```json\n{\"ok\":true}\n```"))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}

func TestNewClientDerivesLimiterFromConfig(t *testing.T) {
	if c := NewClient(Config{APIKey: "k"}); c.limiter != nil {
		t.Fatal("expected no limiter without requests_per_minute")
	}
	c := NewClient(Config{APIKey: "k", RequestsPerMinute: 60})
	if c.limiter == nil || c.limiter.Limit() != rate.Limit(1) {
		t.Fatalf("unexpected limiter %+v", c.limiter)
	}
}

package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOpenAIImageGenerateSuccess(t *testing.T) {
	var payload map[string]any
	imageBytes := []byte("png-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"created": 1,
			"data": []map[string]any{{
				"b64_json":       base64.StdEncoding.EncodeToString(imageBytes),
				"revised_prompt": "a lighthouse at dusk, dramatic light",
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewOpenAIImageClient(OpenAIImageConfig{
		APIKey:  "test-key",
		Model:   "dall-e-3",
		Quality: "standard",
		Style:   "vivid",
		BaseURL: server.URL,
	})

	result, err := client.Generate(context.Background(), &ImageRequest{
		Prompt: "a lighthouse at dusk",
		Size:   "1024x1024",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success result")
	}
	if string(result.Data) != string(imageBytes) {
		t.Fatalf("unexpected image bytes: %q", string(result.Data))
	}
	if result.RevisedPrompt != "a lighthouse at dusk, dramatic light" {
		t.Fatalf("unexpected revised prompt: %q", result.RevisedPrompt)
	}
	if math.Abs(result.CostUSD-0.04) > 1e-9 {
		t.Fatalf("expected dall-e-3 standard cost 0.04, got %f", result.CostUSD)
	}
	if result.TokenEstimate <= 0 {
		t.Fatalf("expected non-zero token estimate, got %d", result.TokenEstimate)
	}
	if got, _ := payload["model"].(string); got != "dall-e-3" {
		t.Fatalf("expected model dall-e-3, got %q", got)
	}
	if got, _ := payload["size"].(string); got != "1024x1024" {
		t.Fatalf("expected size 1024x1024, got %q", got)
	}
	if got, _ := payload["quality"].(string); got != "standard" {
		t.Fatalf("expected quality standard, got %q", got)
	}
	if got, _ := payload["response_format"].(string); got != "b64_json" {
		t.Fatalf("expected inline b64 payload, got %q", got)
	}
}

func TestOpenAIImageGenerateRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"rate_limit_error","param":"","code":"rate_limit"}}`))
	}))
	defer server.Close()

	client := NewOpenAIImageClient(OpenAIImageConfig{
		APIKey:     "test-key",
		MaxRetries: 1,
		BaseURL:    server.URL,
	})

	_, err := client.Generate(context.Background(), &ImageRequest{Prompt: "a lighthouse"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	rle, ok := IsRateLimitError(err)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rle.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rle.StatusCode)
	}
	if rle.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s, got %v", rle.RetryAfter)
	}
}

func TestOpenAIImageGenerateAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":"","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client := NewOpenAIImageClient(OpenAIImageConfig{
		APIKey:     "bad-key",
		MaxRetries: 1,
		BaseURL:    server.URL,
	})

	result, err := client.Generate(context.Background(), &ImageRequest{Prompt: "a lighthouse"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if _, ok := IsRateLimitError(err); ok {
		t.Fatalf("401 should not map to RateLimitError: %v", err)
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status in message, got %v", err)
	}
	if result.Success {
		t.Fatal("result should not be marked successful")
	}
	if result.ErrorMessage == "" {
		t.Fatal("result should carry the error message")
	}
}

func TestOpenAIImageGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"server overloaded","type":"server_error","param":"","code":null}}`))
	}))
	defer server.Close()

	client := NewOpenAIImageClient(OpenAIImageConfig{
		APIKey:     "test-key",
		MaxRetries: 1,
		BaseURL:    server.URL,
	})

	_, err := client.Generate(context.Background(), &ImageRequest{Prompt: "a lighthouse"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status in message, got %v", err)
	}
}

func TestOpenAIImageGenerateEmptyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer server.Close()

	client := NewOpenAIImageClient(OpenAIImageConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	_, err := client.Generate(context.Background(), &ImageRequest{Prompt: "a lighthouse"})
	if err == nil {
		t.Fatal("expected error for empty data")
	}
	if !strings.Contains(err.Error(), "no image data") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenAIImageGenerateEmptyPrompt(t *testing.T) {
	client := NewOpenAIImageClient(OpenAIImageConfig{APIKey: "test-key"})

	result, err := client.Generate(context.Background(), &ImageRequest{Prompt: "   "})
	if err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if result.Success {
		t.Fatal("result should not be marked successful")
	}
}

func TestEstimateOpenAIImageCostUSD(t *testing.T) {
	tests := []struct {
		model   string
		size    string
		quality string
		want    float64
	}{
		{"dall-e-3", "1024x1024", "standard", 0.04},
		{"dall-e-3", "1024x1024", "hd", 0.08},
		{"dall-e-3", "1792x1024", "standard", 0.08},
		{"dall-e-3", "1024x1792", "hd", 0.12},
		{"dall-e-2", "1024x1024", "", 0.02},
		{"dall-e-2", "512x512", "", 0.018},
		{"dall-e-2", "256x256", "", 0.016},
		{"future-model", "1024x1024", "standard", 0.04},
	}

	for _, tt := range tests {
		got := estimateOpenAIImageCostUSD(tt.model, tt.size, tt.quality)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("estimateOpenAIImageCostUSD(%q, %q, %q) = %f, want %f",
				tt.model, tt.size, tt.quality, got, tt.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter("5"); got != 5*time.Second {
		t.Errorf("parseRetryAfter(5) = %v, want 5s", got)
	}
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("parseRetryAfter(empty) = %v, want 0", got)
	}
	if got := parseRetryAfter("soon"); got != 0 {
		t.Errorf("parseRetryAfter(garbage) = %v, want 0", got)
	}

	at := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(at)
	if got <= 0 || got > 10*time.Second {
		t.Errorf("parseRetryAfter(http date) = %v, want within (0, 10s]", got)
	}
}

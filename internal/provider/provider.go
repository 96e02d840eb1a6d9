// Package provider abstracts image-generation backends behind a single
// Generate call with uniform cost and timing accounting.
package provider

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
)

// ImageProvider renders one prompt per request.
type ImageProvider interface {
	// Generate renders the prompt into image bytes.
	Generate(ctx context.Context, req *ImageRequest) (*ImageResult, error)

	// Name returns the provider identifier (e.g., "openai", "mock").
	Name() string
}

// New returns the named provider. Unknown names fall back to the mock,
// with a warning, so generation keeps working.
func New(name string, cfg OpenAIImageConfig, logger *slog.Logger) ImageProvider {
	switch name {
	case OpenAIImageName:
		return NewOpenAIImageClient(cfg)
	case MockImageName:
		return NewMockImageClient()
	default:
		if logger != nil {
			logger.Warn("unknown provider, using mock", "provider", name)
		}
		return NewMockImageClient()
	}
}

// ImageRequest is a request to render one prompt.
type ImageRequest struct {
	// Required
	Prompt string `json:"prompt"`

	// Rendering parameters (client defaults when empty)
	Model   string `json:"model,omitempty"`
	Size    string `json:"size,omitempty"`    // "1024x1024", "1792x1024", "1024x1792"
	Quality string `json:"quality,omitempty"` // "standard", "hd"
	Style   string `json:"style,omitempty"`   // "vivid", "natural"

	// Request tracking
	RequestID string `json:"-"`
}

// ImageResult is the complete response from a generation call.
type ImageResult struct {
	// Image content
	Data   []byte `json:"-"`
	Format string `json:"format,omitempty"`

	// The model may rewrite the prompt before rendering.
	RevisedPrompt string `json:"revised_prompt,omitempty"`

	// Usage accounting
	TokenEstimate int     `json:"token_estimate"`
	CostUSD       float64 `json:"cost_usd"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// estimatePromptTokens approximates prompt token usage from rune count.
// Image responses carry no usage block, so accounting relies on this.
func estimatePromptTokens(text string) int {
	runes := len([]rune(strings.TrimSpace(text)))
	if runes == 0 {
		return 0
	}
	return int(math.Ceil(float64(runes) / 4.0))
}

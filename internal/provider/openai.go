package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	OpenAIImageName      = "openai"
	openAIDefaultModel   = openai.ImageModelDallE3
	openAIDefaultSize    = "1024x1024"
	openAIDefaultQuality = "standard"
	openAIDefaultStyle   = "vivid"
)

// OpenAIImageConfig holds configuration for the OpenAI image client.
type OpenAIImageConfig struct {
	APIKey     string
	Model      string        // "dall-e-3" (default), "dall-e-2"
	Size       string        // "1024x1024" (default)
	Quality    string        // "standard" (default), "hd"
	Style      string        // "vivid" (default), "natural"
	MaxRetries int           // Retry attempts for SDK transport
	Timeout    time.Duration // HTTP timeout
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIImageClient implements ImageProvider using the official OpenAI SDK.
type OpenAIImageClient struct {
	model   string
	size    string
	quality string
	style   string
	client  openai.Client
}

// NewOpenAIImageClient creates a new OpenAI image client.
func NewOpenAIImageClient(cfg OpenAIImageConfig) *OpenAIImageClient {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Size == "" {
		cfg.Size = openAIDefaultSize
	}
	if cfg.Quality == "" {
		cfg.Quality = openAIDefaultQuality
	}
	if cfg.Style == "" {
		cfg.Style = openAIDefaultStyle
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	return &OpenAIImageClient{
		model:   cfg.Model,
		size:    cfg.Size,
		quality: cfg.Quality,
		style:   cfg.Style,
		client:  client,
	}
}

// Name returns the provider identifier.
func (c *OpenAIImageClient) Name() string {
	return OpenAIImageName
}

// Model returns the configured default model.
func (c *OpenAIImageClient) Model() string {
	return c.model
}

// HealthCheck verifies the OpenAI API is reachable and the API key is valid.
func (c *OpenAIImageClient) HealthCheck(ctx context.Context) error {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("openai models list failed: %w", mapOpenAIError(err))
	}
	if page == nil {
		return fmt.Errorf("openai models list returned nil response")
	}
	return nil
}

// Generate renders a prompt through the OpenAI images API, requesting the
// payload inline as base64.
func (c *OpenAIImageClient) Generate(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	start := time.Now()

	if req == nil {
		err := fmt.Errorf("request is required")
		return &ImageResult{
			Success:       false,
			Provider:      OpenAIImageName,
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		err := fmt.Errorf("prompt is required")
		return &ImageResult{
			Success:       false,
			Provider:      OpenAIImageName,
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}
	size := strings.TrimSpace(req.Size)
	if size == "" {
		size = c.size
	}
	quality := strings.TrimSpace(req.Quality)
	if quality == "" {
		quality = c.quality
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = c.style
	}

	params := openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(size),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}
	if supportsQualityStyle(model) {
		params.Quality = openai.ImageGenerateParamsQuality(quality)
		params.Style = openai.ImageGenerateParamsStyle(style)
	}

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		err = mapOpenAIError(err)
		return &ImageResult{
			Success:       false,
			Provider:      OpenAIImageName,
			ModelUsed:     model,
			TokenEstimate: estimatePromptTokens(prompt),
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}
	if resp == nil || len(resp.Data) == 0 {
		err := fmt.Errorf("openai returned no image data")
		return &ImageResult{
			Success:       false,
			Provider:      OpenAIImageName,
			ModelUsed:     model,
			TokenEstimate: estimatePromptTokens(prompt),
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	imageBytes, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		err = fmt.Errorf("failed decoding openai image payload: %w", err)
		return &ImageResult{
			Success:       false,
			Provider:      OpenAIImageName,
			ModelUsed:     model,
			TokenEstimate: estimatePromptTokens(prompt),
			ErrorMessage:  err.Error(),
			ExecutionTime: time.Since(start),
		}, err
	}

	return &ImageResult{
		Success:       true,
		Data:          imageBytes,
		Format:        "png",
		RevisedPrompt: resp.Data[0].RevisedPrompt,
		TokenEstimate: estimatePromptTokens(prompt),
		CostUSD:       estimateOpenAIImageCostUSD(model, size, quality),
		ExecutionTime: time.Since(start),
		Provider:      OpenAIImageName,
		ModelUsed:     model,
	}, nil
}

// estimateOpenAIImageCostUSD prices a render from the published per-image
// rates. Image responses carry no usage block, so this is the accounting
// source of record.
func estimateOpenAIImageCostUSD(model, size, quality string) float64 {
	model = strings.TrimSpace(strings.ToLower(model))
	size = strings.TrimSpace(strings.ToLower(size))
	quality = strings.TrimSpace(strings.ToLower(quality))

	switch model {
	case "dall-e-3":
		large := size == "1792x1024" || size == "1024x1792"
		switch {
		case large && quality == "hd":
			return 0.12
		case large:
			return 0.08
		case quality == "hd":
			return 0.08
		default:
			return 0.04
		}
	case "dall-e-2":
		switch size {
		case "512x512":
			return 0.018
		case "256x256":
			return 0.016
		default:
			return 0.02
		}
	default:
		// Unknown image model: price as dall-e-3 standard instead of
		// returning zero.
		return 0.04
	}
}

func supportsQualityStyle(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "dall-e-3")
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			retryAfter := time.Duration(0)
			if apiErr.Response != nil {
				retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
			}
			return &RateLimitError{
				Message:    fmt.Sprintf("OpenAI rate limited: %s", apiErr.Message),
				RetryAfter: retryAfter,
				StatusCode: apiErr.StatusCode,
			}
		}
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI image error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI image error (status %d)", apiErr.StatusCode)
	}
	return err
}

var _ ImageProvider = (*OpenAIImageClient)(nil)

package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const MockImageName = "mock"

// MockImageClient is an ImageProvider for tests and keyless runs. It
// renders a solid-color placeholder whose fill is derived from the prompt,
// so the same prompt always produces the same bytes.
type MockImageClient struct {
	// Configurable behavior
	Latency    time.Duration
	ShouldFail bool
	FailAfter  int // Fail after N requests (0 = never)

	// State
	requestCount atomic.Int64
}

// NewMockImageClient creates a new mock client with sensible defaults.
func NewMockImageClient() *MockImageClient {
	return &MockImageClient{
		Latency: 10 * time.Millisecond,
	}
}

// Name returns the client identifier.
func (c *MockImageClient) Name() string {
	return MockImageName
}

// RequestCount reports how many requests the client has served.
func (c *MockImageClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Generate renders a placeholder image for the prompt.
func (c *MockImageClient) Generate(ctx context.Context, req *ImageRequest) (*ImageResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	result := &ImageResult{
		Provider:  MockImageName,
		ModelUsed: "mock-image",
	}

	if req == nil || strings.TrimSpace(req.Prompt) == "" {
		err := fmt.Errorf("prompt is required")
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	result.TokenEstimate = estimatePromptTokens(req.Prompt)

	if c.ShouldFail {
		err := fmt.Errorf("mock client configured to fail")
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		err := fmt.Errorf("mock client failed after %d requests", c.FailAfter)
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	// Simulate latency
	select {
	case <-time.After(c.Latency):
	case <-ctx.Done():
		result.ErrorMessage = ctx.Err().Error()
		result.ExecutionTime = time.Since(start)
		return result, ctx.Err()
	}

	data, err := renderPlaceholder(req.Prompt, req.Size)
	if err != nil {
		result.ErrorMessage = err.Error()
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	result.Success = true
	result.Data = data
	result.Format = "png"
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// renderPlaceholder encodes a solid PNG at the requested size, colored by
// a hash of the prompt.
func renderPlaceholder(prompt, size string) ([]byte, error) {
	width, height := parseSize(size)

	sum := sha256.Sum256([]byte(prompt))
	fill := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed encoding placeholder image: %w", err)
	}
	return buf.Bytes(), nil
}

// parseSize interprets a "WxH" size string, clamped to something a test
// can afford to encode.
func parseSize(size string) (int, int) {
	const (
		defaultSide = 256
		minSide     = 16
		maxSide     = 2048
	)

	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(size)), "x", 2)
	if len(parts) != 2 {
		return defaultSide, defaultSide
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return defaultSide, defaultSide
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return defaultSide, defaultSide
	}
	clamp := func(v int) int {
		if v < minSide {
			return minSide
		}
		if v > maxSide {
			return maxSide
		}
		return v
	}
	return clamp(width), clamp(height)
}

var _ ImageProvider = (*MockImageClient)(nil)

package provider

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"
)

func TestMockImageGenerate(t *testing.T) {
	client := NewMockImageClient()
	client.Latency = 0

	result, err := client.Generate(context.Background(), &ImageRequest{
		Prompt: "a lighthouse at dusk",
		Size:   "64x64",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !result.Success {
		t.Fatal("expected success result")
	}
	if result.Format != "png" {
		t.Fatalf("Format = %q, want png", result.Format)
	}

	img, err := png.Decode(bytes.NewReader(result.Data))
	if err != nil {
		t.Fatalf("payload is not a decodable PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 64 || bounds.Dy() != 64 {
		t.Errorf("image size = %dx%d, want 64x64", bounds.Dx(), bounds.Dy())
	}
	if result.TokenEstimate <= 0 {
		t.Errorf("TokenEstimate = %d, want > 0", result.TokenEstimate)
	}
	if client.RequestCount() != 1 {
		t.Errorf("RequestCount() = %d, want 1", client.RequestCount())
	}
}

func TestMockImageGenerateDeterministic(t *testing.T) {
	client := NewMockImageClient()
	client.Latency = 0

	first, err := client.Generate(context.Background(), &ImageRequest{Prompt: "same prompt", Size: "32x32"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := client.Generate(context.Background(), &ImageRequest{Prompt: "same prompt", Size: "32x32"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Error("same prompt should render identical bytes")
	}

	other, err := client.Generate(context.Background(), &ImageRequest{Prompt: "different prompt", Size: "32x32"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if bytes.Equal(first.Data, other.Data) {
		t.Error("different prompts should render different bytes")
	}
}

func TestMockImageGenerateFailures(t *testing.T) {
	t.Run("should fail", func(t *testing.T) {
		client := NewMockImageClient()
		client.Latency = 0
		client.ShouldFail = true

		result, err := client.Generate(context.Background(), &ImageRequest{Prompt: "x"})
		if err == nil {
			t.Fatal("expected configured failure")
		}
		if result.Success {
			t.Error("result should not be marked successful")
		}
	})

	t.Run("fail after", func(t *testing.T) {
		client := NewMockImageClient()
		client.Latency = 0
		client.FailAfter = 2

		for i := 0; i < 2; i++ {
			if _, err := client.Generate(context.Background(), &ImageRequest{Prompt: "x"}); err != nil {
				t.Fatalf("request %d should succeed: %v", i+1, err)
			}
		}
		if _, err := client.Generate(context.Background(), &ImageRequest{Prompt: "x"}); err == nil {
			t.Fatal("third request should fail")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		client := NewMockImageClient()
		client.Latency = time.Second

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := client.Generate(ctx, &ImageRequest{Prompt: "x"}); err == nil {
			t.Fatal("expected context error")
		}
	})

	t.Run("empty prompt", func(t *testing.T) {
		client := NewMockImageClient()
		client.Latency = 0

		if _, err := client.Generate(context.Background(), &ImageRequest{Prompt: " "}); err == nil {
			t.Fatal("expected error for empty prompt")
		}
	})
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in         string
		wantWidth  int
		wantHeight int
	}{
		{"1024x1024", 1024, 1024},
		{"1792x1024", 1792, 1024},
		{"64x32", 64, 32},
		{"", 256, 256},
		{"huge", 256, 256},
		{"8x8", 16, 16},
		{"9000x9000", 2048, 2048},
	}

	for _, tt := range tests {
		gotWidth, gotHeight := parseSize(tt.in)
		if gotWidth != tt.wantWidth || gotHeight != tt.wantHeight {
			t.Errorf("parseSize(%q) = %dx%d, want %dx%d",
				tt.in, gotWidth, gotHeight, tt.wantWidth, tt.wantHeight)
		}
	}
}

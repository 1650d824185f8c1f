package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"docqa/internal/port"
)

func TestNewGeminiEmbedderMissingKey(t *testing.T) {
	t.Setenv("DOCQA_TEST_GEMINI_KEY", "")

	_, err := NewGeminiEmbedder(context.Background(), "DOCQA_TEST_GEMINI_KEY", "gemini-embedding-001", 768, 100)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !errors.Is(err, port.ErrUnavailable) {
		t.Errorf("missing key must signal an unavailable provider, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected unit norm, got %f", sum)
	}

	zero := Normalize([]float32{0, 0, 0})
	for _, x := range zero {
		if x != 0 {
			t.Error("zero vector must stay zero")
		}
	}
}

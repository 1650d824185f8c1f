package llm

import (
	"context"
	"errors"
	"testing"

	"docqa/internal/port"
)

func TestNewGeminiLLMMissingKey(t *testing.T) {
	t.Setenv("DOCQA_TEST_GEMINI_KEY", "")

	_, err := NewGeminiLLM(context.Background(), GeminiConfig{
		APIKeyEnv: "DOCQA_TEST_GEMINI_KEY",
		Model:     "gemini-2.0-flash",
	})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !errors.Is(err, port.ErrUnavailable) {
		t.Errorf("missing key must signal an unavailable provider, got %v", err)
	}
}

func TestNilClientUnavailable(t *testing.T) {
	var g *GeminiLLM
	if g.Available() {
		t.Error("nil client must report unavailable")
	}
}

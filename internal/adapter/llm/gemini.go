// Package llm wraps the Gemini generation API behind the LLM port.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"docqa/internal/port"
)

type GeminiLLM struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

type GeminiConfig struct {
	APIKeyEnv   string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func NewGeminiLLM(ctx context.Context, cfg GeminiConfig) (*GeminiLLM, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: environment variable %s is not set", port.ErrUnavailable, cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %v", port.ErrUnavailable, err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GeminiLLM{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int32(cfg.MaxTokens),
		timeout:     timeout,
	}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		break
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("model %s returned no text", g.model)
	}
	return text, nil
}

func (g *GeminiLLM) Available() bool { return g != nil && g.client != nil }

func (g *GeminiLLM) ModelName() string { return g.model }

package embedding

import (
	"context"
	"fmt"
	"math"
	"os"

	"google.golang.org/genai"

	"docqa/internal/port"
)

// GeminiEmbedder generates embeddings through the Gemini API. Vectors
// are L2-normalized so cosine similarity reduces to a dot product.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	batchSize int
}

// NewGeminiEmbedder creates an embedder from the API key in the given
// environment variable. A missing key or failed client initialization
// makes the provider unavailable; it never silently degrades to zero
// vectors.
func NewGeminiEmbedder(ctx context.Context, apiKeyEnv, model string, dimension, batchSize int) (*GeminiEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not found in environment variable %s", port.ErrUnavailable, apiKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize genai client: %v", port.ErrUnavailable, err)
	}

	if batchSize <= 0 {
		batchSize = 100
	}

	return &GeminiEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
	}, nil
}

// Embed generates one vector per input text, preserving order.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	outputDim := int32(e.dimension)
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(emb.Values))
		}
		vectors[i] = Normalize(emb.Values)
	}

	return vectors, nil
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

func (e *GeminiEmbedder) ModelName() string {
	return e.model
}

// Normalize scales a vector to unit L2 norm. Zero vectors are returned
// unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

package embedding

import (
	"context"
	"hash/fnv"
)

// MockEmbedder produces deterministic vectors derived from token
// hashes. Texts sharing words land close together, which is enough for
// retrieval tests without a live model.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dimension)
		word := make([]rune, 0, 16)
		flush := func() {
			if len(word) == 0 {
				return
			}
			h := fnv.New32a()
			h.Write([]byte(string(word)))
			v[int(h.Sum32())%e.dimension]++
			word = word[:0]
		}
		for _, r := range text {
			if r == ' ' || r == '\n' || r == '\t' || r == '.' || r == ',' || r == '?' || r == '!' {
				flush()
				continue
			}
			word = append(word, r)
		}
		flush()
		vectors[i] = Normalize(v)
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}

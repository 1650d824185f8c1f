package port

import (
	"context"
	"errors"

	"docqa/internal/domain"
)

// ErrUnavailable is returned by providers whose backing client or store
// failed to initialize. Callers use it to answer with a fixed
// service-unavailable message instead of a generic error.
var ErrUnavailable = errors.New("provider unavailable")

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates one L2-normalized vector per input text,
	// preserving order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// IndexEntry is a chunk together with its embedding, persisted as one
// record.
type IndexEntry struct {
	Chunk  domain.Chunk
	Vector []float32
}

// VectorIndex stores (chunk, vector) entries and serves similarity
// search. Implementations must preserve insertion order so that equal
// scores rank deterministically.
type VectorIndex interface {
	// Upsert adds entries to the store; entries are durable when the
	// call returns.
	Upsert(entries []IndexEntry) error

	// Search returns the k entries most similar to the query vector,
	// descending by cosine similarity, ties stable by insertion order.
	// Fewer than k entries returns all of them.
	Search(query []float32, k int) ([]domain.ScoredChunk, error)

	// Count returns the number of indexed entries.
	Count() (int, error)

	// Available reports whether the backing store initialized.
	Available() bool

	// Clear removes every entry. Full rebuild is the only deletion path.
	Clear() error

	Close() error
}

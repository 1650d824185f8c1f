package store

import (
	"sort"
	"sync"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// MemoryIndex keeps everything in process memory. It backs tests and
// ad-hoc runs where persistence is not wanted.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []port.IndexEntry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Upsert(entries []port.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MemoryIndex) Search(vector []float32, k int) ([]domain.ScoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scored := make([]domain.ScoredChunk, len(m.entries))
	for i, e := range m.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: e.Chunk,
			Score: cosineSimilarity(vector, e.Vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MemoryIndex) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *MemoryIndex) Available() bool { return m != nil }

func (m *MemoryIndex) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *MemoryIndex) Close() error { return nil }

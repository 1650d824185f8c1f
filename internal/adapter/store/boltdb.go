package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

var bucketEntries = []byte("entries")

// BoltIndex is a bbolt-backed vector index. Entries are keyed by a
// monotonic sequence so insertion order survives restarts, which keeps
// equal-score search results in a stable order. All vectors are cached
// in memory for brute-force cosine search; reopening reconstructs the
// cache without re-embedding.
type BoltIndex struct {
	db *bbolt.DB
	mu sync.RWMutex
	// entries mirrors the bucket, ordered by insertion.
	entries []cachedEntry
}

type cachedEntry struct {
	chunk  domain.Chunk
	vector []float32
}

type storedEntry struct {
	Source string    `json:"source"`
	Offset int       `json:"offset"`
	Text   string    `json:"text"`
	Vector []float32 `json:"vector"`
}

// NewBoltIndex opens (or creates) the index file at path and loads the
// entry cache.
func NewBoltIndex(path string) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open index db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create entries bucket: %w", err)
	}

	idx := &BoltIndex{db: db}
	if err := idx.loadEntries(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	return idx, nil
}

// loadEntries reads every entry into memory in key order.
func (s *BoltIndex) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			s.entries = append(s.entries, cachedEntry{
				chunk: domain.Chunk{
					Text:        stored.Text,
					Source:      stored.Source,
					StartOffset: stored.Offset,
				},
				vector: stored.Vector,
			})
			return nil
		})
	})
}

// Upsert appends entries to the store. The write transaction commits
// before the call returns, so entries are durable on success.
func (s *BoltIndex) Upsert(entries []port.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return fmt.Errorf("entries bucket not found")
		}

		for _, entry := range entries {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)

			data, err := json.Marshal(storedEntry{
				Source: entry.Chunk.Source,
				Offset: entry.Chunk.StartOffset,
				Text:   entry.Chunk.Text,
				Vector: entry.Vector,
			})
			if err != nil {
				return err
			}
			if err := b.Put(key, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, entry := range entries {
		s.entries = append(s.entries, cachedEntry{chunk: entry.Chunk, vector: entry.Vector})
	}
	return nil
}

// Search returns the k entries most similar to the query vector,
// descending by cosine similarity. Ties keep insertion order.
func (s *BoltIndex) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || k <= 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredChunk, len(s.entries))
	for i, entry := range s.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: entry.chunk,
			Score: cosineSimilarity(query, entry.vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Count returns the number of indexed entries.
func (s *BoltIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Available reports whether the store is open.
func (s *BoltIndex) Available() bool {
	return s != nil && s.db != nil
}

// Clear removes every entry; the only deletion path is a full rebuild.
func (s *BoltIndex) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketEntries)
		return err
	})
	if err != nil {
		return err
	}

	s.entries = nil
	return nil
}

func (s *BoltIndex) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package store

import (
	"path/filepath"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/port"
)

func testEntry(text, source string, vector []float32) port.IndexEntry {
	return port.IndexEntry{
		Chunk:  domain.Chunk{Text: text, Source: source},
		Vector: vector,
	}
}

func TestBoltIndexUpsertAndCount(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if n, _ := idx.Count(); n != 0 {
		t.Errorf("expected empty index, got %d", n)
	}

	entries := []port.IndexEntry{
		testEntry("alpha", "a.txt", []float32{1, 0, 0}),
		testEntry("beta", "a.txt", []float32{0, 1, 0}),
		testEntry("gamma", "b.txt", []float32{0, 0, 1}),
	}
	if err := idx.Upsert(entries); err != nil {
		t.Fatal(err)
	}

	if n, _ := idx.Count(); n != 3 {
		t.Errorf("expected 3 entries, got %d", n)
	}
}

func TestBoltIndexSearchOrdering(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	entries := []port.IndexEntry{
		testEntry("far", "doc", []float32{0, 1, 0}),
		testEntry("close", "doc", []float32{1, 0.1, 0}),
		testEntry("closest", "doc", []float32{1, 0, 0}),
	}
	if err := idx.Upsert(entries); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search([]float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.Text != "closest" || results[1].Chunk.Text != "close" {
		t.Errorf("wrong ranking: %q, %q", results[0].Chunk.Text, results[1].Chunk.Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestBoltIndexSearchTiesStable(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	// Identical vectors score identically; insertion order must hold.
	entries := []port.IndexEntry{
		testEntry("first", "doc", []float32{1, 0}),
		testEntry("second", "doc", []float32{1, 0}),
		testEntry("third", "doc", []float32{1, 0}),
	}
	if err := idx.Upsert(entries); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if results[i].Chunk.Text != w {
			t.Errorf("position %d: expected %q, got %q", i, w, results[i].Chunk.Text)
		}
	}
}

func TestBoltIndexSearchFewerThanK(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Upsert([]port.IndexEntry{testEntry("only", "doc", []float32{1, 0})}); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected all 1 entries, got %d", len(results))
	}
}

func TestBoltIndexPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := NewBoltIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	entries := []port.IndexEntry{
		testEntry("persisted", "a.txt", []float32{1, 0}),
		testEntry("also persisted", "b.txt", []float32{0, 1}),
	}
	if err := idx.Upsert(entries); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen: the full entry set must come back without re-embedding.
	reopened, err := NewBoltIndex(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if n, _ := reopened.Count(); n != 2 {
		t.Fatalf("expected 2 entries after reopen, got %d", n)
	}
	results, err := reopened.Search([]float32{1, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Chunk.Text != "persisted" {
		t.Errorf("expected %q, got %q", "persisted", results[0].Chunk.Text)
	}
	if results[0].Chunk.Source != "a.txt" {
		t.Errorf("source lost across restart: %q", results[0].Chunk.Source)
	}
}

func TestBoltIndexClear(t *testing.T) {
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()

	if err := idx.Upsert([]port.IndexEntry{testEntry("gone", "doc", []float32{1})}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := idx.Count(); n != 0 {
		t.Errorf("expected 0 entries after clear, got %d", n)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors: expected ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1}, []float32{1, 0}); got != 0 {
		t.Errorf("dimension mismatch: expected 0, got %f", got)
	}
}

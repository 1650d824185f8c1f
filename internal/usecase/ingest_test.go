package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/store"
	"docqa/internal/domain"
)

func testLogger() *log.Logger {
	return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

// fakeObjectStore serves documents from a map of key to content.
type fakeObjectStore struct {
	objects  map[string]string
	failKeys map[string]bool
	listErr  error
}

func (f *fakeObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeObjectStore) Download(_ context.Context, key, localPath string) error {
	if f.failKeys[key] {
		return fmt.Errorf("simulated download failure")
	}
	content, ok := f.objects[key]
	if !ok {
		return fmt.Errorf("no such key: %s", key)
	}
	return os.WriteFile(localPath, []byte(content), 0o644)
}

// fakeExtractor reads the file back; keys ending in .bin yield nothing.
type fakeExtractor struct{}

func (fakeExtractor) Extract(path string) (string, error) {
	if strings.HasSuffix(path, ".bin") {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func newTestIngest(objects *fakeObjectStore, index *store.MemoryIndex, includes []string) *IngestUseCase {
	return NewIngestUseCase(
		objects,
		fakeExtractor{},
		chunker.NewRecursiveChunker(100, 20),
		embedding.NewMockEmbedder(16),
		index,
		testLogger(),
		"docs/",
		includes,
	)
}

func TestIngestIndexesDocuments(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string]string{
		"docs/a.txt": strings.Repeat("alpha beta gamma. ", 30),
		"docs/b.txt": "short document about birds",
	}}
	index := store.NewMemoryIndex()

	report, err := newTestIngest(objects, index, nil).Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != domain.StateDone {
		t.Errorf("expected StateDone, got %v", report.State)
	}
	if report.FilesProcessed != 2 {
		t.Errorf("expected 2 processed, got %d", report.FilesProcessed)
	}
	n, _ := index.Count()
	if n != report.ChunksIndexed || n == 0 {
		t.Errorf("index has %d entries, report says %d", n, report.ChunksIndexed)
	}
}

func TestIngestSkipsWhenIndexPopulated(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string]string{"docs/a.txt": "text"}}
	index := store.NewMemoryIndex()
	u := newTestIngest(objects, index, nil)

	if _, err := u.Ingest(context.Background()); err != nil {
		t.Fatal(err)
	}
	before, _ := index.Count()

	report, err := u.Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != domain.StateSkipped {
		t.Errorf("expected StateSkipped on second run, got %v", report.State)
	}
	after, _ := index.Count()
	if after != before {
		t.Errorf("second run changed the index: %d -> %d", before, after)
	}
}

func TestIngestEmptyListing(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string]string{}}
	report, err := newTestIngest(objects, store.NewMemoryIndex(), nil).Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.State != domain.StateDone {
		t.Errorf("expected StateDone, got %v", report.State)
	}
	if report.Warning != "no files found" {
		t.Errorf("expected warning, got %q", report.Warning)
	}
	if report.ChunksIndexed != 0 {
		t.Errorf("expected empty index, got %d chunks", report.ChunksIndexed)
	}
}

func TestIngestUnavailableConnector(t *testing.T) {
	objects := &fakeObjectStore{listErr: fmt.Errorf("connection refused")}
	index := store.NewMemoryIndex()

	report, err := newTestIngest(objects, index, nil).Ingest(context.Background())
	if err != nil {
		t.Fatalf("unreachable storage must not be fatal, got %v", err)
	}
	if report.State != domain.StateDone {
		t.Errorf("expected StateDone, got %v", report.State)
	}
	if report.Warning != "object storage unavailable" {
		t.Errorf("expected warning, got %q", report.Warning)
	}
	if n, _ := index.Count(); n != 0 {
		t.Errorf("expected empty index, got %d entries", n)
	}
}

func TestIngestContinuesPastFailures(t *testing.T) {
	objects := &fakeObjectStore{
		objects: map[string]string{
			"docs/good.txt":   "a perfectly fine document",
			"docs/broken.txt": "never delivered",
			"docs/image.bin":  "binary junk",
		},
		failKeys: map[string]bool{"docs/broken.txt": true},
	}
	report, err := newTestIngest(objects, store.NewMemoryIndex(), nil).Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesProcessed != 1 {
		t.Errorf("expected 1 processed, got %d", report.FilesProcessed)
	}
	if report.FilesSkipped != 2 {
		t.Errorf("expected 2 skipped, got %d", report.FilesSkipped)
	}
	if len(report.Errors) != 2 {
		t.Errorf("expected 2 errors recorded, got %v", report.Errors)
	}
	if report.State != domain.StateDone {
		t.Errorf("batch should still finish, got %v", report.State)
	}
}

func TestIngestIncludeFilter(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string]string{
		"docs/keep.md":  "kept markdown",
		"docs/drop.csv": "dropped,csv",
	}}
	u := newTestIngest(objects, store.NewMemoryIndex(), []string{"**/*.md"})

	report, err := u.Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesProcessed != 1 {
		t.Errorf("expected only the markdown file, got %d processed", report.FilesProcessed)
	}
}

func TestIngestProgressCallback(t *testing.T) {
	objects := &fakeObjectStore{objects: map[string]string{
		"docs/a.txt": "one",
		"docs/b.txt": "two",
	}}
	u := newTestIngest(objects, store.NewMemoryIndex(), nil)

	var calls int
	var lastTotal int
	u.OnProgress = func(done, total int) {
		calls++
		lastTotal = total
	}
	if _, err := u.Ingest(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("expected 2 progress calls with total 2, got %d calls, total %d", calls, lastTotal)
	}
}

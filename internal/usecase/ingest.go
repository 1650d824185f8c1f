package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/phuslu/log"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// IngestUseCase pulls documents from object storage, extracts their
// text, chunks it, embeds the chunks and writes them to the index.
type IngestUseCase struct {
	objects   port.ObjectStore
	extractor port.Extractor
	chunker   port.Chunker
	embedder  port.Embedder
	index     port.VectorIndex
	logger    *log.Logger

	prefix   string
	includes []string

	// OnProgress, when set, is called after each document with the
	// number processed so far and the total. Used by the CLI bar.
	OnProgress func(done, total int)
}

func NewIngestUseCase(
	objects port.ObjectStore,
	extractor port.Extractor,
	chunker port.Chunker,
	embedder port.Embedder,
	index port.VectorIndex,
	logger *log.Logger,
	prefix string,
	includes []string,
) *IngestUseCase {
	return &IngestUseCase{
		objects:   objects,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		logger:    logger,
		prefix:    prefix,
		includes:  includes,
	}
}

// Ingest runs the full pipeline. It is idempotent: a non-empty index
// means a previous run completed and the whole batch is skipped.
// Failures on individual documents are recorded and do not stop the
// batch.
func (u *IngestUseCase) Ingest(ctx context.Context) (*domain.IngestReport, error) {
	report := &domain.IngestReport{State: domain.StateCheckingIndex}

	count, err := u.index.Count()
	if err != nil {
		return nil, fmt.Errorf("check index: %w", err)
	}
	if count > 0 {
		u.logger.Info().Int("entries", count).Msg("index already populated, skipping ingestion")
		report.State = domain.StateSkipped
		return report, nil
	}

	// An unreachable connector is a warning, not a fatal error: the
	// service can still come up and answer from whatever is indexed.
	keys, err := u.objects.List(ctx, u.prefix)
	if err != nil {
		report.State = domain.StateDone
		report.Warning = "object storage unavailable"
		u.logger.Warn().Err(err).Str("prefix", u.prefix).Msg("object storage unavailable, nothing ingested")
		return report, nil
	}
	keys = u.filterKeys(keys)
	if len(keys) == 0 {
		report.State = domain.StateDone
		report.Warning = "no files found"
		u.logger.Warn().Str("prefix", u.prefix).Msg("no files found in object storage")
		return report, nil
	}

	tempDir, err := os.MkdirTemp("", "docqa-ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := u.ingestOne(ctx, key, tempDir, report); err != nil {
			report.FilesSkipped++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", key, err))
			u.logger.Warn().Err(err).Str("key", key).Msg("skipping document")
		} else {
			report.FilesProcessed++
		}
		if u.OnProgress != nil {
			u.OnProgress(i+1, len(keys))
		}
	}

	report.State = domain.StateDone
	u.logger.Info().
		Int("processed", report.FilesProcessed).
		Int("skipped", report.FilesSkipped).
		Int("chunks", report.ChunksIndexed).
		Msg("ingestion complete")
	return report, nil
}

func (u *IngestUseCase) ingestOne(ctx context.Context, key, tempDir string, report *domain.IngestReport) error {
	report.State = domain.StateDownloading
	localPath := filepath.Join(tempDir, filepath.Base(key))
	if err := u.objects.Download(ctx, key, localPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer os.Remove(localPath)

	report.State = domain.StateExtracting
	text, err := u.extractor.Extract(localPath)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if text == "" {
		return fmt.Errorf("no usable text")
	}

	report.State = domain.StateChunking
	chunks := u.chunker.Chunk(text, key)
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced")
	}

	report.State = domain.StateEmbeddingAndIndexing
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	entries := make([]port.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = port.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}
	if err := u.index.Upsert(entries); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	report.ChunksIndexed += len(entries)
	return nil
}

// filterKeys keeps only keys matching at least one include pattern.
// No patterns means everything passes.
func (u *IngestUseCase) filterKeys(keys []string) []string {
	if len(u.includes) == 0 {
		return keys
	}
	var kept []string
	for _, key := range keys {
		for _, pattern := range u.includes {
			if ok, err := doublestar.Match(pattern, key); err == nil && ok {
				kept = append(kept, key)
				break
			}
		}
	}
	return kept
}

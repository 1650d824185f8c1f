package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/extract"
	"docqa/internal/adapter/objstore"
	"docqa/internal/domain"
	"docqa/internal/logging"
	"docqa/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull documents from the bucket and build the index",
	Long: `Download every document under the configured bucket prefix, extract
its text, and index it for retrieval. A populated index is left
untouched; run with --force to rebuild from scratch.

Examples:
  docqa ingest            # Build the index if empty
  docqa ingest --force    # Clear and rebuild`,
	RunE: runIngest,
}

var forceIngest bool

func init() {
	ingestCmd.Flags().BoolVar(&forceIngest, "force", false, "clear the index and re-ingest everything")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := logging.New(cfg.Logging.Level)
	ctx := cmd.Context()

	index, err := openIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	if forceIngest {
		if err := index.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	objects, err := objstore.NewS3Store(ctx, cfg.Source.Bucket, cfg.Source.Region)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}

	ingest := usecase.NewIngestUseCase(
		objects,
		extract.NewFileExtractor(),
		chunker.NewRecursiveChunker(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		embedder,
		index,
		logger,
		cfg.Source.Prefix,
		cfg.Source.Includes,
	)

	fmt.Printf("Ingesting from s3://%s/%s...\n", cfg.Source.Bucket, cfg.Source.Prefix)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	ingest.OnProgress = func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	report, err := ingest.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	switch report.State {
	case domain.StateSkipped:
		fmt.Println("Index already populated, nothing to do. Use --force to rebuild.")
	default:
		fmt.Printf("Processed %d files (%d skipped), indexed %d chunks.\n",
			report.FilesProcessed, report.FilesSkipped, report.ChunksIndexed)
		if report.Warning != "" {
			fmt.Printf("Warning: %s\n", report.Warning)
		}
		for _, e := range report.Errors {
			fmt.Printf("  skipped: %s\n", e)
		}
	}
	return nil
}

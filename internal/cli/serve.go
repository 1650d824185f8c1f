package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/extract"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/objstore"
	"docqa/internal/logging"
	"docqa/internal/port"
	"docqa/internal/server"
	"docqa/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP question answering API",
	Long: `Start the HTTP server. A missing credential leaves the affected
subsystem unavailable and reported by /health; the process itself
keeps running.

Endpoints:
  POST /api/ask       Ask a question
  GET  /api/history   Recent question/answer pairs
  GET  /health        Liveness and dependency status`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index, err := openIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	embedder, embErr := newEmbedder(ctx, cfg)
	if embErr != nil {
		logger.Warn().Err(embErr).Msg("embedder unavailable")
	}
	model, llmErr := newLLM(ctx, cfg)
	if llmErr != nil {
		logger.Warn().Err(llmErr).Msg("model unavailable, answers will be refused")
	}
	if embErr != nil || llmErr != nil {
		// No embedder means no retrieval; report the whole pipeline down.
		model = (*llm.GeminiLLM)(nil)
	}

	chatLog := newChatLog(ctx, cfg, logger)
	defer chatLog.Close(context.Background())

	answers := usecase.NewAnswerUseCase(embedder, index, model, chatLog, logger, cfg.Retrieval.TopK)
	srv := server.New(answers, index, model, chatLog, logger)

	// An empty index is filled before serving, like the ingest command
	// would. Failures degrade /health instead of stopping the server.
	if embErr != nil {
		srv.SetIngestError(embErr)
	} else if objects, oerr := objstore.NewS3Store(ctx, cfg.Source.Bucket, cfg.Source.Region); oerr != nil {
		logger.Warn().Err(oerr).Msg("object storage unavailable, serving with the existing index")
		srv.SetIngestError(oerr)
	} else {
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
		if ierr := startupIngest(ctx, ingest, index, logger); ierr != nil {
			srv.SetIngestError(ierr)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return srv.ListenAndServe(ctx, addr)
}

// startupIngest runs the ingestion pipeline when the index is empty.
// The returned error is for /health reporting; it never stops startup.
func startupIngest(ctx context.Context, ingest *usecase.IngestUseCase, index port.VectorIndex, logger *log.Logger) error {
	count, err := index.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	report, err := ingest.Ingest(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("startup ingestion failed, serving with an empty index")
		return err
	}
	if report.Warning != "" {
		return errors.New(report.Warning)
	}
	return nil
}

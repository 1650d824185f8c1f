package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docqa/internal/logging"
	"docqa/internal/usecase"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the indexed documents",
	Long: `Answer a single question from the indexed documents and print the
result. The answer is drawn only from indexed content; a question the
documents cannot answer gets an explicit refusal.

Examples:
  docqa ask "What is the refund policy?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := logging.New(cfg.Logging.Level)
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	index, err := openIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	embedder, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	model, err := newLLM(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	chatLog := newChatLog(ctx, cfg, logger)
	defer chatLog.Close(ctx)

	answers := usecase.NewAnswerUseCase(embedder, index, model, chatLog, logger, cfg.Retrieval.TopK)
	answer := answers.Answer(ctx, question)

	fmt.Println(answer.Text)
	return nil
}

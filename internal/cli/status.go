package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	index, err := openIndex(cfg)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer index.Close()

	count, err := index.Count()
	if err != nil {
		return fmt.Errorf("failed to count index entries: %w", err)
	}

	fmt.Printf("Backend:        %s\n", cfg.Index.Backend)
	fmt.Printf("Indexed chunks: %d\n", count)
	fmt.Printf("Embedding:      %s (dim %d)\n", cfg.Embedding.Model, cfg.Embedding.Dimension)
	fmt.Printf("Chat model:     %s\n", cfg.LLM.Model)
	return nil
}

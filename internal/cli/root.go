package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docqa/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Document QA - Answer questions from your document corpus",
	Long: `docqa ingests documents from object storage, indexes them as
embeddings, and answers questions strictly from the indexed content.
Questions the documents cannot answer are refused rather than guessed.

Example usage:
  docqa ingest                     # Pull documents and build the index
  docqa ask "What is the policy?"  # Ask a one-off question
  docqa serve                      # Run the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Secrets live in .env during development; absence is fine.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./docqa.yaml)")
}

func GetConfig() *config.Config {
	return cfg
}

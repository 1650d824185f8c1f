package port

import "context"

// LLM represents a language model for text generation.
type LLM interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether the model client initialized.
	Available() bool

	// ModelName returns the name of the model.
	ModelName() string
}

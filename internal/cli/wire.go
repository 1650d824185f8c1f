package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"

	"docqa/config"
	"docqa/internal/adapter/chatlog"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/store"
	"docqa/internal/port"
)

// openIndex creates the configured vector index backend.
func openIndex(cfg *config.Config) (port.VectorIndex, error) {
	switch cfg.Index.Backend {
	case "", "bolt":
		return store.NewBoltIndex(cfg.Index.Path)
	case "qdrant":
		q := cfg.Index.Qdrant
		if q == nil {
			return nil, fmt.Errorf("index backend is qdrant but no qdrant section is configured")
		}
		return store.NewQdrantIndex(store.QdrantConfig{
			URL:        q.URL,
			APIKey:     os.Getenv(q.APIKeyEnv),
			Collection: q.Collection,
			Dimension:  cfg.Embedding.Dimension,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown index backend: %s", cfg.Index.Backend)
	}
}

func newEmbedder(ctx context.Context, cfg *config.Config) (port.Embedder, error) {
	return embedding.NewGeminiEmbedder(ctx,
		cfg.Embedding.APIKeyEnv,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		cfg.Embedding.BatchSize,
	)
}

func newLLM(ctx context.Context, cfg *config.Config) (port.LLM, error) {
	return llm.NewGeminiLLM(ctx, llm.GeminiConfig{
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxOutputTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
}

// newChatLog connects to Mongo, falling back to a no-op log so the
// service keeps answering when the database is down.
func newChatLog(ctx context.Context, cfg *config.Config, logger *log.Logger) port.ChatLog {
	ml, err := chatlog.NewMongoLog(ctx, chatlog.MongoConfig{
		Host:       cfg.ChatLog.Host,
		Port:       cfg.ChatLog.Port,
		Username:   os.Getenv(cfg.ChatLog.UsernameEnv),
		Password:   os.Getenv(cfg.ChatLog.PasswordEnv),
		AuthSource: cfg.ChatLog.AuthSource,
		Database:   cfg.ChatLog.Database,
		Collection: cfg.ChatLog.Collection,
		Timeout:    time.Duration(cfg.ChatLog.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("chat log unavailable, answers will not be recorded")
		return chatlog.NopLog{}
	}
	return ml
}

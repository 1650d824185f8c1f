package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 150 {
		t.Errorf("expected ChunkOverlap=150, got %d", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieval.TopK)
	}
	if cfg.LLM.MaxOutputTokens != 1024 {
		t.Errorf("expected MaxOutputTokens=1024, got %d", cfg.LLM.MaxOutputTokens)
	}
	if cfg.Index.Backend != "bolt" {
		t.Errorf("expected bolt backend, got %s", cfg.Index.Backend)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "docqa.yaml")

	content := `
chunking:
  chunk_size: 500
  chunk_overlap: 50
retrieval:
  top_k: 8
source:
  bucket: my-bucket
  prefix: docs/
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Source.Bucket != "my-bucket" {
		t.Errorf("expected bucket my-bucket, got %s", cfg.Source.Bucket)
	}
	// Unset sections keep their defaults.
	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("expected default LLM model, got %s", cfg.LLM.Model)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DOCQA_CHUNK_SIZE", "256")
	t.Setenv("DOCQA_S3_BUCKET", "env-bucket")

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chunking.ChunkSize != 256 {
		t.Errorf("expected env ChunkSize=256, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Source.Bucket != "env-bucket" {
		t.Errorf("expected env bucket, got %s", cfg.Source.Bucket)
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "docqa.yaml")

	cfg := DefaultConfig()
	cfg.Retrieval.TopK = 6
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieval.TopK != 6 {
		t.Errorf("expected TopK=6 after reload, got %d", loaded.Retrieval.TopK)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the QA service.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
	Index     IndexConfig     `yaml:"index"`
	Source    SourceConfig    `yaml:"source"`
	ChatLog   ChatLogConfig   `yaml:"chat_log"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`       // e.g. "gemini-embedding-001"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for the API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// ChunkingConfig controls how extracted text is split.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig controls query-time retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig holds generation configuration.
type LLMConfig struct {
	Model           string  `yaml:"model"` // e.g. "gemini-2.0-flash"
	APIKeyEnv       string  `yaml:"api_key_env"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Backend string        `yaml:"backend"` // "bolt" or "qdrant"
	Path    string        `yaml:"path"`    // bolt database file
	Qdrant  *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector index.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SourceConfig describes the object storage bucket documents are
// ingested from.
type SourceConfig struct {
	Bucket   string   `yaml:"bucket"`
	Prefix   string   `yaml:"prefix"`
	Region   string   `yaml:"region"`
	Includes []string `yaml:"includes"` // doublestar patterns; empty = all keys
}

// ChatLogConfig holds MongoDB connection details for the audit log.
// Username and password come from the environment, never the file.
type ChatLogConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	AuthSource  string `yaml:"auth_source"`
	Database    string `yaml:"database"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:     "gemini-embedding-001",
			APIKeyEnv: "GEMINI_API_KEY",
			Dimension: 768,
			BatchSize: 100,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    1000,
			ChunkOverlap: 150,
		},
		Retrieval: RetrievalConfig{
			TopK: 4,
		},
		LLM: LLMConfig{
			Model:           "gemini-2.0-flash",
			APIKeyEnv:       "GEMINI_API_KEY",
			Temperature:     0.1,
			MaxOutputTokens: 1024,
			TimeoutSecs:     60,
		},
		Index: IndexConfig{
			Backend: "bolt",
			Path:    "docqa.db",
		},
		Source: SourceConfig{
			Region: "us-east-1",
		},
		ChatLog: ChatLogConfig{
			Host:        "localhost",
			Port:        27017,
			UsernameEnv: "MONGODB_USERNAME",
			PasswordEnv: "MONGODB_PASSWORD",
			AuthSource:  "admin",
			Database:    "chatbot_db",
			Collection:  "chat_history",
			TimeoutSecs: 10,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides lets the documented environment variables override
// file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCQA_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v, ok := envInt("DOCQA_CHUNK_SIZE"); ok {
		cfg.Chunking.ChunkSize = v
	}
	if v, ok := envInt("DOCQA_CHUNK_OVERLAP"); ok {
		cfg.Chunking.ChunkOverlap = v
	}
	if v, ok := envInt("DOCQA_RETRIEVAL_K"); ok {
		cfg.Retrieval.TopK = v
	}
	if v := os.Getenv("DOCQA_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("DOCQA_LLM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(f)
		}
	}
	if v, ok := envInt("DOCQA_LLM_MAX_TOKENS"); ok {
		cfg.LLM.MaxOutputTokens = v
	}
	if v := os.Getenv("DOCQA_INDEX_PATH"); v != "" {
		cfg.Index.Path = v
	}
	if v := os.Getenv("DOCQA_S3_BUCKET"); v != "" {
		cfg.Source.Bucket = v
	}
	if v := os.Getenv("DOCQA_S3_PREFIX"); v != "" {
		cfg.Source.Prefix = v
	}
	if v := os.Getenv("DOCQA_S3_REGION"); v != "" {
		cfg.Source.Region = v
	}
	if v, ok := envInt("DOCQA_SERVER_PORT"); ok {
		cfg.Server.Port = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

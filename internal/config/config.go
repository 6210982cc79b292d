package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ragqa/internal/chunker"
	"ragqa/internal/domain"
)

// OpenAIConfig configures an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	Dimensions  int     `yaml:"dimensions,omitempty"`
	Temperature float32 `yaml:"temperature,omitempty"`
}

// GeminiConfig configures the Gemini API.
type GeminiConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string        `yaml:"type"`
	Dimension int           `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIConfig `yaml:"openai,omitempty"`
	Gemini    *GeminiConfig `yaml:"gemini,omitempty"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type   string        `yaml:"type"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
	Gemini *GeminiConfig `yaml:"gemini,omitempty"`
	Ollama *OllamaConfig `yaml:"ollama,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
	Overlap      int `yaml:"overlap"`
	// Boundaries overrides the cut order: paragraph, line, sentence, word.
	Boundaries []string `yaml:"boundaries,omitempty"`
}

// IndexConfig configures the vector index.
type IndexConfig struct {
	Metric string `yaml:"metric"`
	Path   string `yaml:"path,omitempty"`
}

// RetrievalConfig holds query-time parameters.
type RetrievalConfig struct {
	TopK        int `yaml:"top_k"`
	Budget      int `yaml:"budget"`
	Concurrency int `yaml:"concurrency"`
}

// AnswerConfig overrides the answer prompt.
type AnswerConfig struct {
	Template string `yaml:"template,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant export.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env,omitempty"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChromaConfig contains connection details for a ChromaDB export.
type ChromaConfig struct {
	URL        string `yaml:"url,omitempty"`
	Collection string `yaml:"collection"`
}

// PGVectorConfig contains connection details for a Postgres export.
type PGVectorConfig struct {
	DSNEnv string `yaml:"dsn_env"`
	Table  string `yaml:"table"`
}

// ExportConfig selects where --export copies the index.
type ExportConfig struct {
	Type      string          `yaml:"type,omitempty"`
	BatchSize int             `yaml:"batch_size,omitempty"`
	Qdrant    *QdrantConfig   `yaml:"qdrant,omitempty"`
	Chroma    *ChromaConfig   `yaml:"chroma,omitempty"`
	PGVector  *PGVectorConfig `yaml:"pgvector,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	Export    ExportConfig    `yaml:"export"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports the first invalid setting as domain.ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	switch c.Embedder.Type {
	case "hashing", "openai", "gemini":
	default:
		return domain.InvalidConfig("config", c.Embedder.Type, "embedder.type must be hashing, openai or gemini")
	}
	switch c.Generator.Type {
	case "extractive", "openai", "gemini", "ollama":
	default:
		return domain.InvalidConfig("config", c.Generator.Type, "generator.type must be extractive, openai, gemini or ollama")
	}
	if c.Chunker.MaxChunkSize <= 0 || c.Chunker.Overlap <= 0 || c.Chunker.Overlap >= c.Chunker.MaxChunkSize {
		return domain.InvalidConfig("config", fmt.Sprintf("%d/%d", c.Chunker.MaxChunkSize, c.Chunker.Overlap),
			"chunker needs 0 < overlap < max_chunk_size")
	}
	if _, err := chunker.ParseBoundaries(c.Chunker.Boundaries); err != nil {
		return err
	}
	switch c.Index.Metric {
	case "cosine", "euclidean":
	default:
		return domain.InvalidConfig("config", c.Index.Metric, "index.metric must be cosine or euclidean")
	}
	if c.Retrieval.TopK <= 0 {
		return domain.InvalidConfig("config", c.Retrieval.TopK, "retrieval.top_k must be positive")
	}
	if c.Retrieval.Budget <= 0 {
		return domain.InvalidConfig("config", c.Retrieval.Budget, "retrieval.budget must be positive")
	}
	switch c.Export.Type {
	case "", "qdrant", "chroma", "pgvector":
	default:
		return domain.InvalidConfig("config", c.Export.Type, "export.type must be qdrant, chroma or pgvector")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 512
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small", 30)
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiConfig{}
		}
		geminiDefaults(cfg.Embedder.Gemini, "text-embedding-004")
	}

	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "extractive"
	}
	switch cfg.Generator.Type {
	case "openai":
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		openAIDefaults(cfg.Generator.OpenAI, "gpt-4o-mini", 60)
	case "gemini":
		if cfg.Generator.Gemini == nil {
			cfg.Generator.Gemini = &GeminiConfig{}
		}
		geminiDefaults(cfg.Generator.Gemini, "gemini-2.5-flash")
	case "ollama":
		if cfg.Generator.Ollama == nil {
			cfg.Generator.Ollama = &OllamaConfig{}
		}
		if cfg.Generator.Ollama.Model == "" {
			cfg.Generator.Ollama.Model = "llama3.2"
		}
	}

	if cfg.Chunker.MaxChunkSize == 0 {
		cfg.Chunker.MaxChunkSize = 500
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 50
	}
	if cfg.Index.Metric == "" {
		cfg.Index.Metric = "cosine"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.Budget == 0 {
		cfg.Retrieval.Budget = 4000
	}
	if cfg.Retrieval.Concurrency == 0 {
		cfg.Retrieval.Concurrency = 4
	}
	if cfg.Export.BatchSize == 0 {
		cfg.Export.BatchSize = 64
	}
	if q := cfg.Export.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "ragqa"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 15
		}
	}
	if c := cfg.Export.Chroma; c != nil && c.Collection == "" {
		c.Collection = "ragqa"
	}
	if p := cfg.Export.PGVector; p != nil {
		if p.DSNEnv == "" {
			p.DSNEnv = "DATABASE_URL"
		}
		if p.Table == "" {
			p.Table = "ragqa_chunks"
		}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func openAIDefaults(c *OpenAIConfig, model string, timeout int) {
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = timeout
	}
}

func geminiDefaults(c *GeminiConfig, model string) {
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
}

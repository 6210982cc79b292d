// Package app turns configuration into the concrete components the
// binaries run with. Credentials are resolved from the environment here
// and passed to constructors explicitly.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"ragqa/internal/config"
	"ragqa/internal/domain"
	"ragqa/internal/embedding/gemini"
	"ragqa/internal/embedding/hashing"
	"ragqa/internal/embedding/openai"
	"ragqa/internal/llm"
	llmgemini "ragqa/internal/llm/gemini"
	llmollama "ragqa/internal/llm/ollama"
	llmopenai "ragqa/internal/llm/openai"
	"ragqa/internal/vectorstore"
	"ragqa/internal/vectorstore/chroma"
	"ragqa/internal/vectorstore/pgvector"
	"ragqa/internal/vectorstore/qdrant"
)

// NewEmbedder builds the configured embedder.
func NewEmbedder(ctx context.Context, cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "hashing", "":
		return embedderOrNil(hashing.NewEmbedder(cfg.Dimension))
	case "openai":
		o := cfg.OpenAI
		if o == nil {
			return nil, domain.InvalidConfig("embedder", "openai", "openai section missing")
		}
		return embedderOrNil(openai.NewClient(openai.Config{
			BaseURL:    o.BaseURL,
			APIKey:     os.Getenv(o.APIKeyEnv),
			Model:      o.Model,
			Dimensions: o.Dimensions,
			Timeout:    time.Duration(o.TimeoutSecs) * time.Second,
		}))
	case "gemini":
		g := cfg.Gemini
		if g == nil {
			return nil, domain.InvalidConfig("embedder", "gemini", "gemini section missing")
		}
		return embedderOrNil(gemini.NewClient(ctx, gemini.Config{APIKey: os.Getenv(g.APIKeyEnv), Model: g.Model}))
	}
	return nil, domain.InvalidConfig("embedder", cfg.Type, "unknown embedder")
}

// NewGenerator builds the configured generator.
func NewGenerator(ctx context.Context, cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return llm.Extractive{}, nil
	case "openai":
		o := cfg.OpenAI
		if o == nil {
			return nil, domain.InvalidConfig("generator", "openai", "openai section missing")
		}
		return generatorOrNil(llmopenai.NewClient(llmopenai.Config{
			BaseURL:     o.BaseURL,
			APIKey:      os.Getenv(o.APIKeyEnv),
			Model:       o.Model,
			Temperature: o.Temperature,
			Timeout:     time.Duration(o.TimeoutSecs) * time.Second,
		}))
	case "gemini":
		g := cfg.Gemini
		if g == nil {
			return nil, domain.InvalidConfig("generator", "gemini", "gemini section missing")
		}
		return generatorOrNil(llmgemini.NewClient(ctx, llmgemini.Config{APIKey: os.Getenv(g.APIKeyEnv), Model: g.Model}))
	case "ollama":
		o := cfg.Ollama
		if o == nil {
			o = &config.OllamaConfig{}
		}
		return generatorOrNil(llmollama.NewClient(llmollama.Config{ServerURL: o.ServerURL, Model: o.Model}))
	}
	return nil, domain.InvalidConfig("generator", cfg.Type, "unknown generator")
}

// embedderOrNil keeps a failed constructor from yielding a non-nil
// interface around a nil pointer.
func embedderOrNil[E domain.Embedder](e E, err error) (domain.Embedder, error) {
	if err != nil {
		return nil, err
	}
	return e, nil
}

func generatorOrNil[G domain.Generator](g G, err error) (domain.Generator, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}

// NewSink builds the configured export destination. The returned close
// function releases its connections.
func NewSink(cfg config.ExportConfig) (vectorstore.Sink, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Type {
	case "qdrant":
		q := cfg.Qdrant
		if q == nil || q.URL == "" {
			return nil, nil, domain.InvalidConfig("export", "qdrant", "qdrant.url is required")
		}
		key := ""
		if q.APIKeyEnv != "" {
			key = os.Getenv(q.APIKeyEnv)
		}
		return qdrant.NewSink(qdrant.Config{
			URL:        q.URL,
			APIKey:     key,
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		}), noop, nil
	case "chroma":
		c := cfg.Chroma
		if c == nil {
			c = &config.ChromaConfig{}
		}
		s, err := chroma.NewSink(chroma.Config{URL: c.URL, Collection: c.Collection})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "pgvector":
		p := cfg.PGVector
		if p == nil {
			return nil, nil, domain.InvalidConfig("export", "pgvector", "pgvector section missing")
		}
		dsn := os.Getenv(p.DSNEnv)
		if dsn == "" {
			return nil, nil, domain.InvalidConfig("export", p.DSNEnv, "environment variable with the Postgres DSN is empty")
		}
		s, err := pgvector.NewSink(pgvector.Config{DSN: dsn, Table: p.Table})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, domain.InvalidConfig("export", cfg.Type, fmt.Sprintf("unknown export type %q", cfg.Type))
}

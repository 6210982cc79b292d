package app

import (
	"context"
	"errors"
	"testing"

	"ragqa/internal/config"
	"ragqa/internal/domain"
)

func TestNewEmbedder(t *testing.T) {
	e, err := NewEmbedder(context.Background(), config.EmbedderConfig{Type: "hashing", Dimension: 32})
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if e.Dimension() != 32 {
		t.Fatalf("unexpected dimension %d", e.Dimension())
	}

	t.Setenv("TEST_OPENAI_KEY", "")
	_, err = NewEmbedder(context.Background(), config.EmbedderConfig{
		Type:   "openai",
		OpenAI: &config.OpenAIConfig{APIKeyEnv: "TEST_OPENAI_KEY"},
	})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig without a key, got %v", err)
	}

	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	e, err = NewEmbedder(context.Background(), config.EmbedderConfig{
		Type:   "openai",
		OpenAI: &config.OpenAIConfig{APIKeyEnv: "TEST_OPENAI_KEY", Model: "text-embedding-3-small"},
	})
	if err != nil || e.Name() != "openai:text-embedding-3-small" {
		t.Fatalf("openai embedder: %v", err)
	}

	if _, err := NewEmbedder(context.Background(), config.EmbedderConfig{Type: "bert"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(context.Background(), config.GeneratorConfig{Type: "extractive"})
	if err != nil || g.Name() != "extractive" {
		t.Fatalf("extractive: %v", err)
	}
	g, err = NewGenerator(context.Background(), config.GeneratorConfig{Type: "ollama", Ollama: &config.OllamaConfig{Model: "tiny"}})
	if err != nil || g.Name() != "ollama:tiny" {
		t.Fatalf("ollama: %v", err)
	}
	if _, err := NewGenerator(context.Background(), config.GeneratorConfig{Type: "gemini"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for missing gemini section, got %v", err)
	}
}

func TestNewSink(t *testing.T) {
	s, closeFn, err := NewSink(config.ExportConfig{Type: "qdrant", Qdrant: &config.QdrantConfig{URL: "http://localhost:6333"}})
	if err != nil {
		t.Fatalf("qdrant: %v", err)
	}
	defer closeFn()
	if s.Name() != "qdrant" {
		t.Fatalf("unexpected sink %s", s.Name())
	}

	t.Setenv("TEST_DSN", "")
	_, _, err = NewSink(config.ExportConfig{Type: "pgvector", PGVector: &config.PGVectorConfig{DSNEnv: "TEST_DSN"}})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for empty DSN, got %v", err)
	}
	if _, _, err := NewSink(config.ExportConfig{Type: "s3"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

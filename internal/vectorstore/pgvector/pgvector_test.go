package pgvector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ragqa/internal/domain"
	"ragqa/internal/vectorstore"
)

func TestNewSink_TableName(t *testing.T) {
	if _, err := NewSink(Config{DSN: "postgres://localhost/rag", Table: "chunks; DROP TABLE x"}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	s, err := NewSink(Config{DSN: "postgres://localhost/rag"})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	defer s.Close()
	if s.table != "ragqa_chunks" {
		t.Fatalf("expected default table, got %q", s.table)
	}
}

func TestSink_NoDatabaseNeeded(t *testing.T) {
	s, err := NewSink(Config{DSN: "postgres://localhost/rag", Table: "docs"})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	if err := s.Init(ctx, vectorstore.Cosine, 0); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for zero dimension, got %v", err)
	}
	if err := s.Upsert(ctx, nil); err != nil {
		t.Fatalf("empty upsert should be a no-op, got %v", err)
	}
}

func TestSchema(t *testing.T) {
	cases := []struct {
		metric vectorstore.Metric
		ops    string
	}{
		{vectorstore.Cosine, "vector_cosine_ops"},
		{vectorstore.Euclidean, "vector_l2_ops"},
	}
	for _, tc := range cases {
		stmts := schema("docs", tc.metric, 384)
		if len(stmts) != 3 {
			t.Fatalf("expected 3 statements, got %d", len(stmts))
		}
		if !strings.Contains(stmts[1], "CREATE TABLE IF NOT EXISTS docs") || !strings.Contains(stmts[1], "vector(384)") {
			t.Fatalf("unexpected table DDL: %s", stmts[1])
		}
		if !strings.Contains(stmts[2], "docs_embedding_idx ON docs USING hnsw (embedding "+tc.ops+")") {
			t.Fatalf("%s: unexpected index DDL: %s", tc.metric, stmts[2])
		}
	}
}

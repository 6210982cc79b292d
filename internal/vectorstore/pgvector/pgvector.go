package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/lib/pq"
	pgv "github.com/pgvector/pgvector-go"

	"ragqa/internal/domain"
	"ragqa/internal/embedding"
	"ragqa/internal/vectorstore"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	DSN   string
	Table string
}

// Sink stores chunks in a Postgres table with a pgvector column.
type Sink struct {
	db    *sql.DB
	table string
}

func NewSink(cfg Config) (*Sink, error) {
	if cfg.Table == "" {
		cfg.Table = "ragqa_chunks"
	}
	if !tableName.MatchString(cfg.Table) {
		return nil, domain.InvalidConfig("pgvector", cfg.Table, "table name must be a plain identifier")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

func (s *Sink) Name() string { return "pgvector" }

func (s *Sink) Init(ctx context.Context, metric vectorstore.Metric, dimension int) error {
	if dimension <= 0 {
		return domain.InvalidConfig("pgvector init", dimension, "dimension must be positive")
	}
	for _, q := range schema(s.table, metric, dimension) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("pgvector init: %w", err)
		}
	}
	return nil
}

// schema returns the DDL that prepares table for vectors of the given
// dimension, indexed with the operator class matching metric.
func schema(table string, metric vectorstore.Metric, dimension int) []string {
	ops := "vector_cosine_ops"
	if metric == vectorstore.Euclidean {
		ops = "vector_l2_ops"
	}
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			chunk_id    TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			start_pos   INTEGER NOT NULL,
			end_pos     INTEGER NOT NULL,
			content     TEXT NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, table, dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding %s)`, table, table, ops),
	}
}

func (s *Sink) Upsert(ctx context.Context, batch []domain.EmbeddedChunk) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (chunk_id, document_id, seq, start_pos, end_pos, content, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (chunk_id) DO UPDATE SET
		   document_id = EXCLUDED.document_id, seq = EXCLUDED.seq,
		   start_pos = EXCLUDED.start_pos, end_pos = EXCLUDED.end_pos,
		   content = EXCLUDED.content, embedding = EXCLUDED.embedding`, s.table))
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, ec := range batch {
		vec := pgv.NewVector(embedding.ToFloat32(ec.Vector))
		if _, err := stmt.ExecContext(ctx, ec.ID, ec.DocumentID, ec.Seq, ec.Start, ec.End, ec.Text, vec); err != nil {
			return fmt.Errorf("insert chunk %s: %w", ec.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Sink) Close() error { return s.db.Close() }

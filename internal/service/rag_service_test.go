package service

import (
	"context"
	"testing"

	"ragqa/internal/domain"
	"ragqa/internal/embedding/hashing"
	"ragqa/internal/llm"
	"ragqa/internal/pipeline"
	"ragqa/internal/vectorstore"
)

func newService(t *testing.T) *RAGService {
	t.Helper()
	emb, _ := hashing.NewEmbedder(128)
	p, err := pipeline.New(pipeline.Config{MaxChunkSize: 60, Overlap: 10, Concurrency: 2}, emb, llm.Extractive{})
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	idx, _ := vectorstore.New(vectorstore.Cosine, emb.Dimension())
	return NewRAGService(p, idx, 2, 500)
}

func TestRAGService_AddAndAsk(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	report, err := s.AddDocuments(ctx, []domain.Document{
		{ID: "fox.txt", Text: "The quick brown fox jumps over the lazy dog."},
		{ID: "db.txt", Text: "Postgres stores rows in heap pages."},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(report.Documents) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	ans, err := s.Ask(ctx, "what does the fox do?", 0)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(ans.Sources) != 2 || ans.Sources[0].DocumentID != "fox.txt" {
		t.Fatalf("unexpected sources %+v", ans.Sources)
	}
	if ans.Text != "The quick brown fox jumps over the lazy dog." {
		t.Fatalf("unexpected answer %q", ans.Text)
	}

	st := s.Stats()
	if st.Documents != 2 || st.Chunks != 2 || st.Dimension != 128 || st.Metric != "cosine" || st.Embedder != "hashing" {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestRAGService_Summary(t *testing.T) {
	s := newService(t)
	s.SetSummary("digest")
	if s.Summary() != "digest" {
		t.Fatalf("got %q", s.Summary())
	}
}

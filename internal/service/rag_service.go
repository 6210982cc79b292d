package service

import (
	"context"
	"sync"

	"ragqa/internal/domain"
	"ragqa/internal/pipeline"
	"ragqa/internal/vectorstore"
)

// Stats describes the loaded index.
type Stats struct {
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Embedder  string `json:"embedder"`
}

// RAGService binds a pipeline to one live index and the configured query
// defaults. It is what the HTTP API, the TUI and the plain loop talk to.
type RAGService struct {
	pipeline *pipeline.Pipeline
	index    *vectorstore.Index
	topK     int
	budget   int

	// writes serialises Extend calls so reports match what was inserted.
	writes  sync.Mutex
	mu      sync.RWMutex
	summary string
}

func NewRAGService(p *pipeline.Pipeline, idx *vectorstore.Index, topK, budget int) *RAGService {
	return &RAGService{pipeline: p, index: idx, topK: topK, budget: budget}
}

// Ask answers question from the k best chunks; k <= 0 uses the default.
func (s *RAGService) Ask(ctx context.Context, question string, k int) (domain.Answer, error) {
	if k <= 0 {
		k = s.topK
	}
	return s.pipeline.Query(ctx, s.index, question, k, s.budget)
}

// AddDocuments appends docs to the live index.
func (s *RAGService) AddDocuments(ctx context.Context, docs []domain.Document) (*pipeline.BuildReport, error) {
	s.writes.Lock()
	defer s.writes.Unlock()
	return s.pipeline.Extend(ctx, s.index, docs)
}

func (s *RAGService) Stats() Stats {
	return Stats{
		Documents: len(s.index.DocumentIDs()),
		Chunks:    s.index.Len(),
		Dimension: s.index.Dimension(),
		Metric:    string(s.index.Metric()),
		Embedder:  s.pipeline.Embedder().Name(),
	}
}

// Index returns the live index, for saving and export.
func (s *RAGService) Index() *vectorstore.Index { return s.index }

// Summary is a short digest of the corpus for display.
func (s *RAGService) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *RAGService) SetSummary(summary string) {
	s.mu.Lock()
	s.summary = summary
	s.mu.Unlock()
}

package retriever

import (
	"context"

	"ragqa/internal/domain"
	"ragqa/internal/vectorstore"
)

// Retriever embeds a query and returns the nearest chunks of an index.
type Retriever struct {
	embedder domain.Embedder
	index    *vectorstore.Index
}

func New(embedder domain.Embedder, index *vectorstore.Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns at most k results, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, domain.InvalidConfig("retrieve", k, "k must be positive")
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.EmbeddingFailure("retrieve", err)
	}
	return r.index.Query(vec, k)
}

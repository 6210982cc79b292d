// Package vectorstore holds embedded chunks in memory and answers
// exact nearest-neighbour queries by brute force.
package vectorstore

import (
	"sort"
	"sync"

	"ragqa/internal/domain"
)

// Index is a brute-force vector index. Queries run concurrently; inserts
// take the write lock and are all-or-nothing per batch.
type Index struct {
	mu        sync.RWMutex
	metric    Metric
	dimension int
	entries   []domain.EmbeddedChunk
	ids       map[string]struct{}
}

// New creates an empty index. A zero dimension is fixed by the first insert.
func New(metric Metric, dimension int) (*Index, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	if metric == "" {
		metric = Cosine
	}
	if dimension < 0 {
		return nil, domain.InvalidConfig("vectorstore.New", dimension, "dimension must not be negative")
	}
	return &Index{metric: metric, dimension: dimension, ids: make(map[string]struct{})}, nil
}

// Metric returns the similarity metric chosen at construction.
func (x *Index) Metric() Metric { return x.metric }

// Dimension returns the vector dimension, or 0 while still unset.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Len returns the number of stored chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Insert adds a single embedded chunk.
func (x *Index) Insert(ec domain.EmbeddedChunk) error {
	return x.InsertBatch([]domain.EmbeddedChunk{ec})
}

// InsertBatch adds every chunk or none of them.
func (x *Index) InsertBatch(batch []domain.EmbeddedChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	seen := make(map[string]struct{}, len(batch))
	for _, ec := range batch {
		if dim == 0 {
			dim = len(ec.Vector)
		}
		if len(ec.Vector) == 0 || len(ec.Vector) != dim {
			return domain.DimensionMismatch("vectorstore.Insert", dim, len(ec.Vector))
		}
		if _, ok := x.ids[ec.ID]; ok {
			return domain.NewError(domain.ErrDuplicateChunk, "vectorstore.Insert", ec.ID, nil)
		}
		if _, ok := seen[ec.ID]; ok {
			return domain.NewError(domain.ErrDuplicateChunk, "vectorstore.Insert", ec.ID, nil)
		}
		seen[ec.ID] = struct{}{}
	}

	for _, ec := range batch {
		v := make([]float64, len(ec.Vector))
		copy(v, ec.Vector)
		x.entries = append(x.entries, domain.EmbeddedChunk{Chunk: ec.Chunk, Vector: v})
		x.ids[ec.ID] = struct{}{}
	}
	x.dimension = dim
	return nil
}

// Query returns the min(k, Len) most similar chunks, best first. Equal
// scores keep insertion order.
func (x *Index) Query(vector []float64, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return nil, domain.InvalidConfig("vectorstore.Query", k, "k must be positive")
	}
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return []domain.SearchResult{}, nil
	}
	if len(vector) != x.dimension {
		return nil, domain.DimensionMismatch("vectorstore.Query", x.dimension, len(vector))
	}

	scores := make([]float64, len(x.entries))
	order := make([]int, len(x.entries))
	for i := range x.entries {
		scores[i] = x.metric.Similarity(vector, x.entries[i].Vector)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]domain.SearchResult, 0, k)
	for _, j := range order[:k] {
		results = append(results, domain.SearchResult{Chunk: x.entries[j].Chunk, Score: scores[j]})
	}
	return results, nil
}

// Chunks returns a copy of the stored entries in insertion order.
func (x *Index) Chunks() []domain.EmbeddedChunk {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]domain.EmbeddedChunk, len(x.entries))
	for i, ec := range x.entries {
		v := make([]float64, len(ec.Vector))
		copy(v, ec.Vector)
		out[i] = domain.EmbeddedChunk{Chunk: ec.Chunk, Vector: v}
	}
	return out
}

// DocumentIDs lists the distinct documents in the index, in first-seen order.
func (x *Index) DocumentIDs() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, ec := range x.entries {
		if _, ok := seen[ec.DocumentID]; ok {
			continue
		}
		seen[ec.DocumentID] = struct{}{}
		ids = append(ids, ec.DocumentID)
	}
	return ids
}

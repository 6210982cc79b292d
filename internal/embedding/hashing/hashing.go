package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"slices"
	"strings"

	"ragqa/internal/domain"
	"ragqa/internal/embedding"
)

// DefaultDimension is used when no dimension is configured.
const DefaultDimension = 512

// Embedder implements a stateless term-frequency vectorizer.
// Tokens are hashed into a fixed number of buckets, so no corpus
// preparation is needed and the same text always yields the same vector.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder with the given dimension.
func NewEmbedder(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, domain.InvalidConfig("hashing embedder", dimension, "dimension must be positive")
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes a sublinear term-frequency vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.EmbeddingFailure("hashing embed", err)
	}
	vec := make([]float64, e.dimension)
	tf := make(map[string]int)
	for _, tok := range e.tokenize(text) {
		tf[tok]++
	}
	// Sorted so colliding buckets always sum in the same order.
	toks := make([]string, 0, len(tf))
	for tok := range tf {
		toks = append(toks, tok)
	}
	slices.Sort(toks)
	for _, tok := range toks {
		idx, sign := e.bucket(tok)
		vec[idx] += sign * (1 + math.Log(float64(tf[tok])))
	}
	embedding.Normalize(vec)
	return vec, nil
}

// bucket maps a token to an index and a sign so that collisions tend to cancel.
func (e *Embedder) bucket(tok string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tok))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1
	}
	return int(sum % uint64(e.dimension)), sign
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

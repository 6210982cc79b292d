package domain

import (
	"context"
	"unicode/utf8"
)

// Document represents a single source text loaded into the system.
type Document struct {
	ID   string
	Path string
	Text string
}

// Len returns the document length in characters.
func (d Document) Len() int { return utf8.RuneCountInString(d.Text) }

// Chunk is a contiguous span [Start, End) of a document, in character offsets.
type Chunk struct {
	ID         string
	DocumentID string
	Start      int
	End        int
	Text       string
	Seq        int
}

// EmbeddedChunk is a chunk together with its embedding vector.
type EmbeddedChunk struct {
	Chunk
	Vector []float64
}

// SearchResult represents a matching chunk with a similarity score.
type SearchResult struct {
	Chunk
	Score float64
}

// Answer is generated text plus the chunks that were placed in the prompt.
type Answer struct {
	Text    string
	Sources []SearchResult
}

// Embedder converts free text into a fixed-size numeric vector.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator produces text for a fully composed prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// PassageAnswerer is implemented by generators that answer from the
// retrieved passages directly instead of a rendered prompt.
type PassageAnswerer interface {
	AnswerFromPassages(ctx context.Context, question string, passages []string) (string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Split(document Document) ([]Chunk, error)
}

package chunker

import (
	"fmt"
	"strings"
	"unicode"

	"ragqa/internal/domain"
)

// Boundary is a natural split point used when cutting a chunk.
type Boundary int

const (
	// Paragraph is the position right after a blank line.
	Paragraph Boundary = iota
	// Line is the position right after a newline.
	Line
	// Sentence is the position right after terminal punctuation followed by space.
	Sentence
	// Word is the start of a word that follows whitespace.
	Word
)

// DefaultBoundaries is the order in which boundaries are tried.
var DefaultBoundaries = []Boundary{Paragraph, Line, Sentence, Word}

var boundaryNames = map[string]Boundary{
	"paragraph": Paragraph,
	"line":      Line,
	"sentence":  Sentence,
	"word":      Word,
}

// ParseBoundaries maps config names (paragraph, line, sentence, word) to
// boundaries, keeping their order. An empty list yields nil.
func ParseBoundaries(names []string) ([]Boundary, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]Boundary, 0, len(names))
	for _, n := range names {
		b, ok := boundaryNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, domain.InvalidConfig("chunker", n, "boundary must be paragraph, line, sentence or word")
		}
		out = append(out, b)
	}
	return out, nil
}

// Chunker splits text into overlapping character windows, cutting on the
// coarsest natural boundary that fits and falling back to a hard cut.
type Chunker struct {
	maxChunkSize int
	overlap      int
	boundaries   []Boundary
}

// Option customises a Chunker.
type Option func(*Chunker)

// WithBoundaries overrides the boundary fallback order.
func WithBoundaries(b ...Boundary) Option {
	return func(c *Chunker) { c.boundaries = append([]Boundary(nil), b...) }
}

// New validates the window parameters and returns a Chunker.
func New(maxChunkSize, overlap int, opts ...Option) (*Chunker, error) {
	if maxChunkSize <= 0 {
		return nil, domain.InvalidConfig("chunker", maxChunkSize, "max chunk size must be positive")
	}
	if overlap <= 0 {
		return nil, domain.InvalidConfig("chunker", overlap, "overlap must be positive")
	}
	if overlap >= maxChunkSize {
		return nil, domain.InvalidConfig("chunker", overlap, fmt.Sprintf("overlap must be smaller than max chunk size %d", maxChunkSize))
	}
	c := &Chunker{maxChunkSize: maxChunkSize, overlap: overlap, boundaries: DefaultBoundaries}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Split cuts the document into chunks covering [0, len) where adjacent
// chunks share exactly Overlap characters.
func (c *Chunker) Split(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(document.Text)
	n := len(runes)
	var chunks []domain.Chunk
	start := 0
	for seq := 0; start < n; seq++ {
		end := n
		if start+c.maxChunkSize < n {
			end = c.cut(runes, start)
		}
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s#%d", document.ID, seq),
			DocumentID: document.ID,
			Start:      start,
			End:        end,
			Text:       string(runes[start:end]),
			Seq:        seq,
		})
		if end == n {
			break
		}
		start = end - c.overlap
	}
	return chunks, nil
}

// cut returns the end of the chunk starting at start. The end must leave
// the next chunk starting strictly after start.
func (c *Chunker) cut(runes []rune, start int) int {
	lo := start + c.overlap + 1
	hi := start + c.maxChunkSize
	for _, b := range c.boundaries {
		for pos := hi; pos >= lo; pos-- {
			if isBoundary(b, runes, pos) {
				return pos
			}
		}
	}
	return hi
}

func isBoundary(b Boundary, runes []rune, pos int) bool {
	if pos <= 0 || pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	switch b {
	case Paragraph:
		return prev == '\n' && pos >= 2 && runes[pos-2] == '\n'
	case Line:
		return prev == '\n'
	case Sentence:
		return (prev == '.' || prev == '!' || prev == '?') && unicode.IsSpace(runes[pos])
	case Word:
		return unicode.IsSpace(prev) && !unicode.IsSpace(runes[pos])
	}
	return false
}

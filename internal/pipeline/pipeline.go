// Package pipeline wires the chunker, embedder, index, retriever and
// answerer into the two phases of the system: build and query.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"ragqa/internal/answerer"
	"ragqa/internal/chunker"
	"ragqa/internal/domain"
	"ragqa/internal/retriever"
	"ragqa/internal/vectorstore"
)

// Config holds the build and query parameters.
type Config struct {
	MaxChunkSize int
	Overlap      int
	Metric       vectorstore.Metric
	// Boundaries names the chunker cut order; empty keeps the default.
	Boundaries []string
	// Concurrency bounds in-flight embedding calls per document.
	Concurrency int
	// Template overrides the answer prompt when set.
	Template string
}

// BuildReport lists the documents that were indexed.
type BuildReport struct {
	Documents []string
	Chunks    int
}

// BuildError reports the document that stopped a build. Documents listed
// in Succeeded are in the index and queryable.
type BuildError struct {
	Document  string
	Succeeded []string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build stopped at document %q after [%s]: %v", e.Document, strings.Join(e.Succeeded, ", "), e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

type Pipeline struct {
	cfg       Config
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	generator domain.Generator
	answerer  *answerer.Answerer
	logger    *slog.Logger
	progress  func(doc string, done, total int)
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithProgress registers a callback run after each indexed document.
func WithProgress(fn func(doc string, done, total int)) Option {
	return func(p *Pipeline) { p.progress = fn }
}

func New(cfg Config, embedder domain.Embedder, generator domain.Generator, opts ...Option) (*Pipeline, error) {
	bs, err := chunker.ParseBoundaries(cfg.Boundaries)
	if err != nil {
		return nil, err
	}
	var chOpts []chunker.Option
	if len(bs) > 0 {
		chOpts = append(chOpts, chunker.WithBoundaries(bs...))
	}
	ch, err := chunker.New(cfg.MaxChunkSize, cfg.Overlap, chOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.Metric, err = vectorstore.ParseMetric(string(cfg.Metric)); err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	p := &Pipeline{
		cfg:       cfg,
		chunker:   ch,
		embedder:  embedder,
		generator: generator,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	p.answerer, err = answerer.New(generator, answerer.WithTemplate(cfg.Template), answerer.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Embedder returns the embedder used for both chunks and queries.
func (p *Pipeline) Embedder() domain.Embedder { return p.embedder }

// Build indexes docs into a new index. On failure the returned index still
// holds every document that succeeded before the failing one.
func (p *Pipeline) Build(ctx context.Context, docs []domain.Document) (*vectorstore.Index, *BuildReport, error) {
	idx, err := vectorstore.New(p.cfg.Metric, p.embedder.Dimension())
	if err != nil {
		return nil, nil, err
	}
	report, err := p.Extend(ctx, idx, docs)
	return idx, report, err
}

// Extend appends docs to idx one document at a time. A document is
// inserted only after all its chunks are embedded, so a failing document
// contributes nothing.
func (p *Pipeline) Extend(ctx context.Context, idx *vectorstore.Index, docs []domain.Document) (*BuildReport, error) {
	report := &BuildReport{}
	for i, doc := range docs {
		n, err := p.indexDocument(ctx, idx, doc)
		if err != nil {
			p.logger.Error("document failed", "document", doc.ID, "indexed", len(report.Documents), "error", err)
			return report, &BuildError{Document: doc.ID, Succeeded: append([]string(nil), report.Documents...), Err: err}
		}
		report.Documents = append(report.Documents, doc.ID)
		report.Chunks += n
		p.logger.Info("document indexed", "document", doc.ID, "chunks", n)
		if p.progress != nil {
			p.progress(doc.ID, i+1, len(docs))
		}
	}
	return report, nil
}

func (p *Pipeline) indexDocument(ctx context.Context, idx *vectorstore.Index, doc domain.Document) (int, error) {
	chunks, err := p.chunker.Split(doc)
	if err != nil {
		return 0, err
	}
	vecs := make([][]float64, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i := range chunks {
		g.Go(func() error {
			v, err := p.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return domain.EmbeddingFailure("embed "+chunks[i].ID, err)
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	batch := make([]domain.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		batch[i] = domain.EmbeddedChunk{Chunk: c, Vector: vecs[i]}
	}
	if err := idx.InsertBatch(batch); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Retrieve returns the k nearest chunks for question.
func (p *Pipeline) Retrieve(ctx context.Context, idx *vectorstore.Index, question string, k int) ([]domain.SearchResult, error) {
	return retriever.New(p.embedder, idx).Retrieve(ctx, question, k)
}

// Query retrieves k chunks and answers question from at most budget
// characters of them.
func (p *Pipeline) Query(ctx context.Context, idx *vectorstore.Index, question string, k, budget int) (domain.Answer, error) {
	if budget <= 0 {
		return domain.Answer{}, domain.InvalidConfig("query", budget, "budget must be positive")
	}
	results, err := p.Retrieve(ctx, idx, question, k)
	if err != nil {
		return domain.Answer{}, err
	}
	p.logger.Debug("retrieved", "question", question, "results", len(results))
	return p.answerer.Answer(ctx, question, results, budget)
}

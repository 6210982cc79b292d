package chroma

import (
	"context"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"ragqa/internal/domain"
	"ragqa/internal/embedding"
	"ragqa/internal/vectorstore"
)

type Config struct {
	URL        string
	Collection string
}

// Sink writes chunks into a ChromaDB collection using the v2 API.
type Sink struct {
	client     chromago.Client
	name       string
	collection chromago.Collection
}

func NewSink(cfg Config) (*Sink, error) {
	var opts []chromago.ClientOption
	if cfg.URL != "" {
		opts = append(opts, chromago.WithBaseURL(cfg.URL))
	}
	client, err := chromago.NewHTTPClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chroma client: %w", err)
	}
	if cfg.Collection == "" {
		cfg.Collection = "ragqa"
	}
	return &Sink{client: client, name: cfg.Collection}, nil
}

func (s *Sink) Name() string { return "chroma" }

func (s *Sink) Init(ctx context.Context, metric vectorstore.Metric, dimension int) error {
	if dimension <= 0 {
		return domain.InvalidConfig("chroma init", dimension, "dimension must be positive")
	}
	collection, err := s.client.GetOrCreateCollection(
		ctx,
		s.name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "ragqa export"),
				chromago.NewStringAttribute("metric", string(metric)),
				chromago.NewIntAttribute("dimension", int64(dimension)),
			),
		),
	)
	if err != nil {
		return err
	}
	s.collection = collection
	return nil
}

func (s *Sink) Upsert(ctx context.Context, batch []domain.EmbeddedChunk) error {
	if s.collection == nil {
		return fmt.Errorf("chroma collection %q not initialised", s.name)
	}
	ids := make([]chromago.DocumentID, len(batch))
	texts := make([]string, len(batch))
	vecs := make([]embeddings.Embedding, len(batch))
	metas := make([]chromago.DocumentMetadata, len(batch))
	for i, ec := range batch {
		ids[i] = chromago.DocumentID(ec.ID)
		texts[i] = ec.Text
		vecs[i] = embeddings.NewEmbeddingFromFloat32(embedding.ToFloat32(ec.Vector))
		metas[i] = chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("document_id", ec.DocumentID),
			chromago.NewIntAttribute("seq", int64(ec.Seq)),
			chromago.NewIntAttribute("start", int64(ec.Start)),
			chromago.NewIntAttribute("end", int64(ec.End)),
		)
	}
	return s.collection.Upsert(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(vecs...),
		chromago.WithMetadatas(metas...),
	)
}

// Close releases the underlying HTTP client.
func (s *Sink) Close() error { return s.client.Close() }

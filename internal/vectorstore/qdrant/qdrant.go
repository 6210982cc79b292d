package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ragqa/internal/domain"
	"ragqa/internal/vectorstore"
)

// Sink is a minimal REST client to Qdrant. Point IDs are name-based UUIDs
// derived from chunk IDs, so re-exporting the same index overwrites points.
type Sink struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewSink(cfg Config) *Sink {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = "ragqa"
	}
	return &Sink{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Sink) Name() string { return "qdrant" }

// Init creates the collection. Qdrant answers 200 if it already exists
// with the same schema.
func (s *Sink) Init(ctx context.Context, metric vectorstore.Metric, dimension int) error {
	if dimension <= 0 {
		return domain.InvalidConfig("qdrant init", dimension, "dimension must be positive")
	}
	distance := "Cosine"
	if metric == vectorstore.Euclidean {
		distance = "Euclid"
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance,
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Sink) Upsert(ctx context.Context, batch []domain.EmbeddedChunk) error {
	points := make([]map[string]any, len(batch))
	for i, ec := range batch {
		points[i] = map[string]any{
			"id":     PointID(ec.ID),
			"vector": ec.Vector,
			"payload": map[string]any{
				"document_id": ec.DocumentID,
				"chunk_id":    ec.ID,
				"seq":         ec.Seq,
				"start":       ec.Start,
				"end":         ec.End,
				"text":        ec.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

// PointID maps a chunk ID onto the UUID space Qdrant accepts.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("ragqa:"+chunkID)).String()
}

func (s *Sink) do(ctx context.Context, method, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	return nil
}

package openai

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ragqa/internal/domain"
	"ragqa/internal/embedding"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
// Ollama and other servers exposing /v1/embeddings work through BaseURL.
type Client struct {
	client    *goopenai.Client
	model     string
	requested int
	dimension atomic.Int64
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.InvalidConfig("openai embedder", "api_key", "missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = string(goopenai.SmallEmbedding3)
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: t}
	c := &Client{
		client:    goopenai.NewClientWithConfig(oc),
		model:     cfg.Model,
		requested: cfg.Dimensions,
	}
	c.dimension.Store(int64(cfg.Dimensions))
	return c, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai:" + c.model }

// Dimension returns the dimensionality of the produced embedding vectors.
// Without a configured dimension it is known after the first call.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      []string{text},
		Model:      goopenai.EmbeddingModel(c.model),
		Dimensions: c.requested,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, domain.NewError(domain.ErrEmbeddingUnavailable, "openai embed", nil, errors.New("no embedding returned"))
	}
	v := embedding.FromFloat32(resp.Data[0].Embedding)
	c.dimension.CompareAndSwap(0, int64(len(v)))
	return v, nil
}

// wrapError keeps the HTTP status of API failures as the offending value,
// which separates auth (401) and rate limit (429) failures for the caller.
func wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewError(domain.ErrEmbeddingUnavailable, "openai embed", apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewError(domain.ErrEmbeddingUnavailable, "openai embed", reqErr.HTTPStatusCode, err)
	}
	return domain.NewError(domain.ErrEmbeddingUnavailable, "openai embed", nil, err)
}

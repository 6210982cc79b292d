package gemini

import (
	"context"
	"errors"
	"sync/atomic"

	"google.golang.org/genai"

	"ragqa/internal/domain"
	"ragqa/internal/embedding"
)

// Client embeds text with the Gemini embedding models.
type Client struct {
	client    *genai.Client
	model     string
	dimension atomic.Int64
}

// Config configures the Gemini embeddings client.
type Config struct {
	APIKey string
	Model  string
}

// NewClient creates a Gemini API backed embedder.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.InvalidConfig("gemini embedder", "api_key", "missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.NewError(domain.ErrEmbeddingUnavailable, "gemini client", nil, err)
	}
	return &Client{client: gc, model: cfg.Model}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "gemini:" + c.model }

// Dimension returns the dimensionality seen on the first successful call.
func (c *Client) Dimension() int { return int(c.dimension.Load()) }

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, domain.NewError(domain.ErrEmbeddingUnavailable, "gemini embed", nil, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, domain.NewError(domain.ErrEmbeddingUnavailable, "gemini embed", nil, errors.New("no embedding returned"))
	}
	v := embedding.FromFloat32(resp.Embeddings[0].Values)
	c.dimension.CompareAndSwap(0, int64(len(v)))
	return v, nil
}

package gemini

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"ragqa/internal/domain"
)

// Client generates answers with a Gemini model.
type Client struct {
	client *genai.Client
	model  string
}

type Config struct {
	APIKey string
	Model  string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.InvalidConfig("gemini generator", "api_key", "missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domain.NewError(domain.ErrGenerationFailed, "gemini client", nil, err)
	}
	return &Client{client: gc, model: cfg.Model}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", domain.NewError(domain.ErrGenerationFailed, "gemini generate", nil, err)
	}
	text := resp.Text()
	if text == "" {
		return "", domain.NewError(domain.ErrGenerationFailed, "gemini generate", nil, errors.New("empty response"))
	}
	return text, nil
}

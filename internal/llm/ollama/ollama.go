package ollama

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"

	"ragqa/internal/domain"
)

// Client wraps a langchaingo Ollama model as a domain.Generator.
type Client struct {
	llm   llms.Model
	model string
}

type Config struct {
	ServerURL string
	Model     string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	opts := []lcollama.Option{lcollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, lcollama.WithServerURL(cfg.ServerURL))
	}
	m, err := lcollama.New(opts...)
	if err != nil {
		return nil, domain.InvalidConfig("ollama generator", cfg.ServerURL, err.Error())
	}
	return &Client{llm: m, model: cfg.Model}, nil
}

func (c *Client) Name() string { return "ollama:" + c.model }

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		return "", domain.NewError(domain.ErrGenerationFailed, "ollama generate", c.model, err)
	}
	return out, nil
}

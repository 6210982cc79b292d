package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"ragqa/internal/domain"
)

// Client generates text through an OpenAI-compatible chat completions API.
type Client struct {
	client      *goopenai.Client
	model       string
	temperature float32
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.InvalidConfig("openai generator", "api_key", "missing API key")
	}
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4oMini
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: t}
	return &Client{client: goopenai.NewClientWithConfig(oc), model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (c *Client) Name() string { return "openai:" + c.model }

// Generate sends the prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", domain.NewError(domain.ErrGenerationFailed, "openai generate", apiErr.HTTPStatusCode, err)
		}
		return "", domain.NewError(domain.ErrGenerationFailed, "openai generate", nil, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewError(domain.ErrGenerationFailed, "openai generate", nil, errors.New("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}

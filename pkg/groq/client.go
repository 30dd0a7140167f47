// Package groq provides a client for Groq's OpenAI-compatible chat API,
// used as the secondary generation provider.
package groq

import (
	"context"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"

	"github.com/factlens/factlens/internal/resilience"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
)

// Client generates text via Groq chat completions.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures the client.
type Option func(*chatClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *chatClient) { c.baseURL = u }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *chatClient) { c.model = model }
}

type chatClient struct {
	api     *openai.Client
	baseURL string
	model   string
}

// NewClient creates a Groq client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &chatClient{
		baseURL: defaultBaseURL,
		model:   defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = c.baseURL
	c.api = openai.NewClientWithConfig(cfg)
	return c
}

func (c *chatClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		var apiErr *openai.APIError
		if eris.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", resilience.NewRateLimitError(eris.Wrap(err, "groq: chat completion"))
		}
		return "", eris.Wrap(err, "groq: chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("groq: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

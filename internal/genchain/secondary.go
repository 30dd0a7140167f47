package genchain

import (
	"context"

	"github.com/factlens/factlens/pkg/anthropic"
)

// AnthropicGenerator adapts the Anthropic client to the Generator interface.
type AnthropicGenerator struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
}

// Generate sends the prompt as a single user message.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temp := 0.1
	resp, err := g.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.Model,
		MaxTokens:   g.MaxTokens,
		Prompt:      prompt,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

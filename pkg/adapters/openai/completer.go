// Package openai adapts the OpenAI chat completions API to the
// ports.Completer capability used by agent and decision nodes.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// Completer implements ports.Completer over chat completions.
type Completer struct {
	client      *openai.Client
	model       string
	system      string
	temperature float32
}

// Option configures the Completer.
type Option func(*Completer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Completer) {
		c.model = model
	}
}

// WithSystemPrompt sets a system message prepended to every request.
// This is where the embedding application injects its persona text.
func WithSystemPrompt(system string) Option {
	return func(c *Completer) {
		c.system = system
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *Completer) {
		c.temperature = t
	}
}

// New creates a Completer with the given API key.
func New(apiKey string, opts ...Option) *Completer {
	return NewFromClient(openai.NewClient(apiKey), opts...)
}

// NewFromClient creates a Completer from an existing client, which
// lets callers point it at compatible self-hosted endpoints.
func NewFromClient(client *openai.Client, opts ...Option) *Completer {
	c := &Completer{
		client: client,
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the prompt as a single-turn chat completion.
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

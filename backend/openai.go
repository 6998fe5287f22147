package backend

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI is a Client backed by the go-openai SDK.
type OpenAI struct {
	c *openai.Client
}

// NewOpenAI returns a Client for an OpenAI-compatible endpoint. baseURL may
// be left empty for the default OpenAI URL.
func NewOpenAI(baseURL, apiKey string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{c: openai.NewClientWithConfig(cfg)}
}

// Complete implements Client. The SDK rejects chat-only model names on the
// completions endpoint; set api.completion_model for infill models.
func (o *OpenAI) Complete(ctx context.Context, prompt string, m Model) (string, error) {
	resp, err := o.c.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       m.Name,
		Prompt:      prompt,
		MaxTokens:   m.MaxTokens,
		Temperature: float32(m.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Text, nil
}

// Chat implements Client.
func (o *OpenAI) Chat(ctx context.Context, turns []Turn, m Model) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(turns))
	for i, t := range turns {
		msgs[i] = openai.ChatCompletionMessage{Role: t.Role, Content: t.Content}
	}

	resp, err := o.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.Name,
		Messages:    msgs,
		MaxTokens:   m.MaxTokens,
		Temperature: float32(m.Temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

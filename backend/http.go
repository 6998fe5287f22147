package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP is a Client that speaks the OpenAI wire format directly, honouring
// the configured URL template.
type HTTP struct {
	urlTemplate string
	version     string
	apiKey      string
	client      *http.Client
}

// NewHTTP creates an HTTP client.
func NewHTTP(urlTemplate, version, apiKey string) *HTTP {
	return &HTTP{
		urlTemplate: urlTemplate,
		version:     version,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// --- Completions API ---

type completionsRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type completionsResponse struct {
	Choices []completionChoice `json:"choices"`
	Error   *apiError          `json:"error,omitempty"`
}

type completionChoice struct {
	Text string `json:"text"`
}

// Complete implements Client.
func (h *HTTP) Complete(ctx context.Context, prompt string, m Model) (string, error) {
	reqBody := completionsRequest{
		Model:       m.Name,
		Prompt:      prompt,
		MaxTokens:   m.MaxTokens,
		Temperature: m.Temperature,
	}

	var result completionsResponse
	if err := h.post(ctx, "completions", reqBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Text, nil
}

// --- Chat Completions API ---

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Chat implements Client.
func (h *HTTP) Chat(ctx context.Context, turns []Turn, m Model) (string, error) {
	messages := make([]chatMessage, len(turns))
	for i, t := range turns {
		messages[i] = chatMessage{Role: t.Role, Content: t.Content}
	}
	reqBody := chatCompletionsRequest{
		Model:       m.Name,
		Messages:    messages,
		MaxTokens:   m.MaxTokens,
		Temperature: m.Temperature,
	}

	var result chatCompletionsResponse
	if err := h.post(ctx, "chat/completions", reqBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

func (h *HTTP) post(ctx context.Context, endpoint string, reqBody, result any) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := FormatURL(h.urlTemplate, h.version, endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	h.setHeaders(httpReq)

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}
	return nil
}

// setHeaders sets common headers for API requests.
func (h *HTTP) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
}

package backend

import scribe "github.com/Paranoid-AF/scribe"

// Logical language model names accepted in api.language_model.
const (
	ChatGPTTurbo   = "chatgpt-turbo"
	GPT4           = "gpt4"
	GPT4With32kCtx = "gpt4-32k"
)

// DefaultModelToken is used for unknown logical names.
const DefaultModelToken = "gpt-3.5-turbo"

var modelTokens = map[string]string{
	ChatGPTTurbo:   "gpt-3.5-turbo",
	GPT4:           "gpt-4",
	GPT4With32kCtx: "gpt-4-32k",
}

// ModelToken maps a logical model name to the backend model identifier.
func ModelToken(name string) string {
	if tok, ok := modelTokens[name]; ok {
		return tok
	}
	return DefaultModelToken
}

// ChatModel returns the chat model settings for cfg.
func ChatModel(cfg *scribe.Config) Model {
	return Model{
		Name:        ModelToken(cfg.API.LanguageModel),
		MaxTokens:   cfg.API.MaxTokens,
		Temperature: cfg.API.Temperature,
	}
}

// CompletionModel returns the completion model settings for cfg.
// api.completion_model, when set, is passed through verbatim.
func CompletionModel(cfg *scribe.Config) Model {
	m := ChatModel(cfg)
	if cfg.API.CompletionModel != "" {
		m.Name = cfg.API.CompletionModel
	}
	return m
}

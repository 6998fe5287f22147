// Package backend talks to OpenAI-compatible model APIs. It exposes one
// completion call and one chat call; every failure is returned as a plain
// error and callers do not distinguish transport, HTTP or API failures.
package backend

import (
	"context"
	"log/slog"
	"strings"

	scribe "github.com/Paranoid-AF/scribe"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged chat message.
type Turn struct {
	Role    string
	Content string
}

// Model selects the backend model and generation limits for one request.
type Model struct {
	Name        string
	MaxTokens   int
	Temperature float64
}

// Client is a model backend.
type Client interface {
	// Complete sends a raw prompt to the completions endpoint.
	Complete(ctx context.Context, prompt string, m Model) (string, error)
	// Chat sends an ordered list of turns to the chat endpoint.
	Chat(ctx context.Context, turns []Turn, m Model) (string, error)
}

// New creates the client selected by cfg.API.Client. cfg is expected to
// have environment overrides applied already.
func New(cfg *scribe.Config) Client {
	tmpl := cfg.API.URLTemplate
	switch cfg.API.Client {
	case "openai":
		return NewOpenAI(BaseURL(tmpl, cfg.API.Version), cfg.API.Key)
	case "http", "":
	default:
		slog.Warn("unknown api client, using http", "client", cfg.API.Client)
	}
	return NewHTTP(tmpl, cfg.API.Version, cfg.API.Key)
}

// FormatURL expands the URL template: {0} is the API version and {1} the
// endpoint path (e.g. "chat/completions").
func FormatURL(tmpl, version, endpoint string) string {
	return strings.NewReplacer("{0}", version, "{1}", endpoint).Replace(tmpl)
}

// BaseURL returns the URL prefix the template produces for any endpoint,
// i.e. the template expanded up to the {1} placeholder.
func BaseURL(tmpl, version string) string {
	if i := strings.Index(tmpl, "{1}"); i >= 0 {
		tmpl = tmpl[:i]
	}
	return strings.TrimRight(FormatURL(tmpl, version, ""), "/")
}

package generate

import (
	"context"

	scribe "github.com/Paranoid-AF/scribe"
	"github.com/Paranoid-AF/scribe/backend"
)

// BackendError wraps any failure of the model request.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// ModelResponse is the raw model answer.
type ModelResponse struct {
	Text string
	Mode Mode
	// Submitted is the resolved input text, used to detect echoes.
	Submitted string
}

// Invoke issues exactly one backend request for p. It does not retry.
func Invoke(ctx context.Context, client backend.Client, p *Prompt, submitted string, cfg *scribe.Config) (*ModelResponse, error) {
	var (
		out string
		err error
	)
	switch p.Mode {
	case FillInMiddle:
		out, err = client.Complete(ctx, p.Text, backend.CompletionModel(cfg))
	default:
		out, err = client.Chat(ctx, p.Turns, backend.ChatModel(cfg))
	}
	if err != nil {
		return nil, &BackendError{Message: err.Error()}
	}
	return &ModelResponse{Text: out, Mode: p.Mode, Submitted: submitted}, nil
}

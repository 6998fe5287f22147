package generate

import "github.com/Paranoid-AF/scribe/backend"

// Prompt is what gets sent to the backend: a raw completion string in
// FillInMiddle mode, or ordered chat turns in Chat mode.
type Prompt struct {
	Mode  Mode
	Text  string
	Turns []backend.Turn
}

// BuildPrompt frames the resolved input for the PromptSpec mode.
//
// Chat turns are ordered system, context, user instruction, then every
// example as an assistant turn. The examples trail the user turns; models
// read them as primed answers rather than earlier dialogue.
func BuildPrompt(in *ResolvedInput, spec PromptSpec, contentType string) *Prompt {
	if spec.Mode == FillInMiddle {
		return &Prompt{Mode: FillInMiddle, Text: in.Text}
	}

	turns := make([]backend.Turn, 0, 3+len(spec.Examples))
	if spec.System != "" {
		turns = append(turns, backend.Turn{Role: backend.RoleSystem, Content: spec.System})
	}

	text := in.Text
	if spec.ContentTypePrefix && contentType != "" {
		text = contentType + "\n" + text
	}
	turns = append(turns, backend.Turn{Role: backend.RoleUser, Content: text})

	if spec.UserInput != "" {
		turns = append(turns, backend.Turn{Role: backend.RoleUser, Content: spec.UserInput})
	}
	for _, ex := range spec.Examples {
		turns = append(turns, backend.Turn{Role: backend.RoleAssistant, Content: ex})
	}
	return &Prompt{Mode: Chat, Text: text, Turns: turns}
}

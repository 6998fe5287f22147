package generate

import (
	"fmt"
	"slices"
	"strings"
)

// Mode selects how context is framed for the model.
type Mode int

const (
	// Chat sends role-tagged turns to the chat endpoint.
	Chat Mode = iota
	// FillInMiddle sends a sentinel-delimited prefix/hole/suffix prompt to
	// the completions endpoint.
	FillInMiddle
)

func (m Mode) String() string {
	switch m {
	case Chat:
		return "chat"
	case FillInMiddle:
		return "fill_in_middle"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as written in command presets.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat", "":
		return Chat, nil
	case "fill_in_middle", "fim", "completion":
		return FillInMiddle, nil
	}
	return Chat, fmt.Errorf("unknown mode %q", s)
}

// Behavior selects what happens to the model's answer.
type Behavior int

const (
	// Insert places the answer after the submitted span.
	Insert Behavior = iota
	// Replace overwrites the submitted span with the answer.
	Replace
	// Message shows the answer without touching the document.
	Message
)

func (b Behavior) String() string {
	switch b {
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	case Message:
		return "message"
	default:
		return fmt.Sprintf("Behavior(%d)", int(b))
	}
}

// ParseBehavior parses a behavior name as written in command presets.
func ParseBehavior(s string) (Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert", "":
		return Insert, nil
	case "replace":
		return Replace, nil
	case "message":
		return Message, nil
	}
	return Insert, fmt.Errorf("unknown behavior %q", s)
}

// PromptSpec is the fixed instruction set of one command.
type PromptSpec struct {
	// System is the system turn; empty means none.
	System string
	// UserInput is an extra user turn sent after the context; empty means none.
	UserInput string
	// Examples are assistant turns appended after the user turns, in order.
	Examples []string

	Mode     Mode
	Behavior Behavior

	// ContentTypePrefix prepends the buffer's content type to the context
	// turn (chat only).
	ContentTypePrefix bool
	// StripMarkdown removes code-fence marker lines from the answer.
	StripMarkdown bool
}

// clone returns a copy that shares no mutable state with p.
func (p PromptSpec) clone() PromptSpec {
	p.Examples = slices.Clone(p.Examples)
	return p
}

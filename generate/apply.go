package generate

import (
	"context"
	"fmt"

	"github.com/Paranoid-AF/scribe/editor"
)

// Operation is the document edit actually performed.
type Operation int

const (
	OpNone Operation = iota
	OpInsert
	OpReplace
)

func (o Operation) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpReplace:
		return "replace"
	default:
		return "none"
	}
}

// EditOutcome reports what Apply did. Selection is in post-edit coordinates
// and is the zero span for OpNone.
type EditOutcome struct {
	Text      string
	Op        Operation
	Selection editor.Span
}

// chatSeparator starts chat insertions on their own line.
const chatSeparator = "\n"

// Apply places text according to behavior. span is the resolved input span
// in the coordinates of the snapshot the input was resolved from. Insert and
// Replace select the placed text; Message hands the text to the notifier and
// leaves the document alone.
func Apply(ctx context.Context, host editor.Host, n Notifier, text string, span editor.Span, behavior Behavior, mode Mode) (*EditOutcome, error) {
	out := &EditOutcome{Text: text}

	switch behavior {
	case Message:
		n.ShowMessage(text)
		return out, nil

	case Replace:
		if err := host.Replace(ctx, span, text); err != nil {
			return nil, fmt.Errorf("replace: %w", err)
		}
		out.Op = OpReplace
		out.Selection = editor.Span{Start: span.Start, End: span.Start + len(text)}

	case Insert:
		insert := text
		start := span.End
		if mode == Chat {
			insert = chatSeparator + text
			start += len(chatSeparator)
		}
		if err := host.Insert(ctx, span.End, insert); err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}
		out.Op = OpInsert
		out.Selection = editor.Span{Start: start, End: start + len(text)}

	default:
		return nil, fmt.Errorf("unknown behavior %v", behavior)
	}

	if err := host.SetSelection(ctx, out.Selection); err != nil {
		return nil, fmt.Errorf("select edited text: %w", err)
	}
	return out, nil
}

// ReformatSpan returns the range to reformat after an edit. post must be a
// snapshot taken after the edit; startLine is the line the submitted span
// started on. FillInMiddle reformats exactly the placed text. Chat widens to
// whole lines, from startLine through the line holding the end of the placed
// text.
func ReformatSpan(post *editor.Snapshot, out *EditOutcome, mode Mode, startLine int) editor.Span {
	if mode == FillInMiddle {
		return out.Selection
	}
	endLine := post.LineOf(out.Selection.End)
	if startLine > endLine {
		startLine = endLine
	}
	return editor.Span{Start: post.LineStart(startLine), End: post.LineEnd(endLine)}
}
